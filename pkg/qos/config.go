package qos

import (
	"k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/config"
	qosnet "github.com/nickbroon/vplane-config-qos/pkg/net"
)

// Config is the QoS object graph built from one configuration snapshot. It
// is constructed in dependency order, frozen on return, and discarded as a
// unit when the next snapshot arrives.
type Config struct {
	actionGroups   map[string]*ActionGroup
	markMaps       map[string]*MarkMap
	globalProfiles map[string]*Profile
	policies       map[string]*Policy
	ingressMaps    map[string]*IngressMap
	interfaces     map[string]*Interface

	// ifOrder keeps interfaces in snapshot order for deterministic walks
	ifOrder []string
}

// NewConfig builds the whole object graph from a canonical snapshot.
// Registries are built first, then interfaces, which cross-link themselves
// into policies and ingress-maps. Any dangling name reference aborts the
// build; no partial graph is ever returned.
func NewConfig(cfg *config.Config, resolver qosnet.IfindexResolver, log klog.Logger) (*Config, error) {
	c := &Config{
		actionGroups:   make(map[string]*ActionGroup),
		markMaps:       make(map[string]*MarkMap),
		globalProfiles: make(map[string]*Profile),
		policies:       make(map[string]*Policy),
		ingressMaps:    make(map[string]*IngressMap),
		interfaces:     make(map[string]*Interface),
	}

	for _, agCfg := range cfg.ActionGroups {
		ag := NewActionGroup(agCfg)
		c.actionGroups[ag.Name()] = ag
	}

	for _, mmCfg := range cfg.MarkMaps {
		mm := NewMarkMap(mmCfg)
		c.markMaps[mm.Name()] = mm
	}

	// global profile ids follow declaration order
	for i, profCfg := range cfg.GlobalProfiles {
		prof := NewProfile(uint32(i), profCfg, true)
		c.globalProfiles[prof.Name()] = prof
	}

	for _, imCfg := range cfg.IngressMaps {
		im := NewIngressMap(imCfg)
		c.ingressMaps[im.Name()] = im
	}

	for _, polCfg := range cfg.Policies {
		policy, err := NewPolicy(polCfg, c.globalProfiles, c.markMaps)
		if err != nil {
			return nil, err
		}
		c.policies[policy.Name()] = policy
	}

	for _, ifCfg := range cfg.Interfaces {
		ifc, err := NewInterface(ifCfg, c.policies, c.ingressMaps, resolver, log)
		if err != nil {
			return nil, err
		}
		c.interfaces[ifc.Name()] = ifc
		c.ifOrder = append(c.ifOrder, ifc.Name())
	}

	return c, nil
}

// Interfaces returns every interface in snapshot order
func (c *Config) Interfaces() []*Interface {
	interfaces := make([]*Interface, 0, len(c.ifOrder))
	for _, name := range c.ifOrder {
		interfaces = append(interfaces, c.interfaces[name])
	}
	return interfaces
}

// FindInterface returns the named interface, or nil
func (c *Config) FindInterface(name string) *Interface {
	return c.interfaces[name]
}

// DeferredInterfaces returns the names of interfaces that currently have no
// resolvable ifindex
func (c *Config) DeferredInterfaces() []string {
	var deferred []string
	for _, name := range c.ifOrder {
		if c.interfaces[name].Deferred() {
			deferred = append(deferred, name)
		}
	}
	return deferred
}

// FindGlobalProfile returns the named global profile, or nil
func (c *Config) FindGlobalProfile(name string) *Profile {
	return c.globalProfiles[name]
}

// GetPolicy returns the named policy, or nil
func (c *Config) GetPolicy(name string) *Policy {
	return c.policies[name]
}

// GetMarkMap returns the named mark-map, or nil
func (c *Config) GetMarkMap(name string) *MarkMap {
	return c.markMaps[name]
}

// GetActionGroup returns the named action group, or nil
func (c *Config) GetActionGroup(name string) *ActionGroup {
	return c.actionGroups[name]
}

// GetIngressMap returns the named ingress-map, or nil
func (c *Config) GetIngressMap(name string) *IngressMap {
	return c.ingressMaps[name]
}
