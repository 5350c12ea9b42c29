package qos

import (
	"strconv"
	"sync"

	"k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/config"
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
	qosnet "github.com/nickbroon/vplane-config-qos/pkg/net"
)

// ScopeGlobal is the profile-index scope of globally-declared profiles
const ScopeGlobal = "global"

// ProfileKey identifies one profile within an interface's profile index:
// Scope is either ScopeGlobal or the decimal VLAN tag of the registering
// subport (0 for the trunk).
type ProfileKey struct {
	Scope string
	Name  string
}

// vlanScope renders a VLAN tag as a profile-index scope
func vlanScope(vlan uint16) string {
	return strconv.FormatUint(uint64(vlan), 10)
}

// Interface is one physical/virtual port with QoS configured on it. The
// object graph below an Interface is immutable once built; the cached
// ifindex is the only field populated after construction.
type Interface struct {
	cfg      *config.Interface
	name     string
	ifType   config.InterfaceType
	resolver qosnet.IfindexResolver
	log      klog.Logger

	subports []*Subport
	policies []*Policy
	bindings []*IngressMapBinding

	profileIndex map[ProfileKey]uint32

	// ifindex resolution is lazy and idempotent
	mu              sync.Mutex
	ifindex         int
	ifindexResolved bool
}

// NewInterface builds the Interface for one canonical interface entry,
// resolving its policy and ingress-map attachments against the registries
// and cross-linking both directions. An unresolved name is a fatal
// ReferenceError; an interface or VLAN with no attachment at all is legal.
func NewInterface(cfg *config.Interface, policies map[string]*Policy,
	ingressMaps map[string]*IngressMap, resolver qosnet.IfindexResolver,
	log klog.Logger) (*Interface, error) {
	ifc := &Interface{
		cfg:      cfg,
		name:     cfg.Name,
		ifType:   cfg.Type,
		resolver: resolver,
		log:      log,
	}

	if err := ifc.addSubport(0, 0, cfg.PolicyName, policies); err != nil {
		return nil, err
	}
	if err := ifc.addBinding(0, cfg.IngressMapName, ingressMaps); err != nil {
		return nil, err
	}

	// VLAN subports get ids 1..N in discovery order
	for i, vlan := range cfg.VLANs {
		if err := ifc.addSubport(uint32(i+1), vlan.Tag, vlan.PolicyName, policies); err != nil {
			return nil, err
		}
		if err := ifc.addBinding(vlan.Tag, vlan.IngressMapName, ingressMaps); err != nil {
			return nil, err
		}
	}

	ifc.buildProfileIndex()
	return ifc, nil
}

// addSubport creates one subport, resolving and cross-linking its policy
// when one is named
func (ifc *Interface) addSubport(id uint32, vlan uint16, policyName string,
	policies map[string]*Policy) error {
	subport := &Subport{ifc: ifc, id: id, vlan: vlan}

	if policyName != "" {
		policy, ok := policies[policyName]
		if !ok {
			return newReferenceError("interface "+strconv.Quote(ifc.name), RefKindPolicy, policyName)
		}
		subport.policy = policy
		ifc.policies = append(ifc.policies, policy)
		policy.attachInterface(ifc)
	}

	ifc.subports = append(ifc.subports, subport)
	return nil
}

// addBinding creates one ingress-map binding, cross-linking it into the map,
// when a map is named
func (ifc *Interface) addBinding(vlan uint16, mapName string,
	ingressMaps map[string]*IngressMap) error {
	if mapName == "" {
		return nil
	}

	ingressMap, ok := ingressMaps[mapName]
	if !ok {
		return newReferenceError("interface "+strconv.Quote(ifc.name), RefKindIngressMap, mapName)
	}

	binding := &IngressMapBinding{ifc: ifc, vlan: vlan, ingressMap: ingressMap}
	ifc.bindings = append(ifc.bindings, binding)
	ingressMap.attachBinding(binding)
	return nil
}

// buildProfileIndex assigns a per-interface index to every profile reachable
// from this interface's subports. Subports are walked in ascending id order;
// for each attached policy the referenced global profiles are registered
// first (once across the whole interface), then the policy's local profiles
// under the subport's VLAN-tag scope. Indices are consecutive from 0 in
// first-encounter order and never reassigned, so global profiles always sort
// below any local profile first seen after them.
func (ifc *Interface) buildProfileIndex() {
	ifc.profileIndex = make(map[ProfileKey]uint32)

	for _, subport := range ifc.subports {
		if subport.policy == nil {
			continue
		}
		for _, prof := range subport.policy.ReferencedGlobalProfiles() {
			ifc.registerProfile(ProfileKey{Scope: ScopeGlobal, Name: prof.Name()})
		}
		for _, prof := range subport.policy.LocalProfiles() {
			ifc.registerProfile(ProfileKey{Scope: vlanScope(subport.vlan), Name: prof.Name()})
		}
	}
}

// registerProfile assigns the next free index to key unless it already has one
func (ifc *Interface) registerProfile(key ProfileKey) {
	if _, ok := ifc.profileIndex[key]; ok {
		return
	}
	ifc.profileIndex[key] = uint32(len(ifc.profileIndex))
}

// Name returns the interface name
func (ifc *Interface) Name() string {
	return ifc.name
}

// Type returns the interface type tag
func (ifc *Interface) Type() config.InterfaceType {
	return ifc.ifType
}

// Config returns the canonical configuration this interface was built from
func (ifc *Interface) Config() *config.Interface {
	return ifc.cfg
}

// Equals returns true if both interfaces originate from structurally equal
// configuration subtrees, used for change detection between snapshots
func (ifc *Interface) Equals(other *Interface) bool {
	if ifc == other {
		return true
	}
	if ifc == nil || other == nil {
		return false
	}
	return ifc.cfg.Equals(other.cfg)
}

// Subports returns the subports in ascending id order
func (ifc *Interface) Subports() []*Subport {
	return ifc.subports
}

// Policies returns the policies attached to this interface, trunk and VLANs
func (ifc *Interface) Policies() []*Policy {
	return ifc.policies
}

// IngressMapBindings returns the ingress-map bindings of this interface and
// its VLANs
func (ifc *Interface) IngressMapBindings() []*IngressMapBinding {
	return ifc.bindings
}

// ProfileIndexGet returns the index assigned to key
func (ifc *Interface) ProfileIndexGet(key ProfileKey) (uint32, bool) {
	index, ok := ifc.profileIndex[key]
	return index, ok
}

// ProfileIndexSize returns how many profiles this interface has indexed
func (ifc *Interface) ProfileIndexSize() uint32 {
	return uint32(len(ifc.profileIndex))
}

// Ifindex returns the OS ifindex of this interface, resolving and caching it
// on first use. ok is false while the interface is deferred, i.e. not yet
// present on the system; resolution is retried on the next call.
func (ifc *Interface) Ifindex() (int, bool) {
	ifc.mu.Lock()
	defer ifc.mu.Unlock()

	if ifc.ifindexResolved {
		return ifc.ifindex, true
	}

	ifindex, found, err := ifc.resolver.IfindexFor(ifc.name)
	if err != nil {
		ifc.log.V(2).Info("ifindex lookup failed", "interface", ifc.name, "reason", err.Error())
		return 0, false
	}
	if !found {
		ifc.log.V(5).Info("interface deferred, no ifindex yet", "interface", ifc.name)
		return 0, false
	}

	ifc.ifindex = ifindex
	ifc.ifindexResolved = true
	return ifc.ifindex, true
}

// Deferred returns true while the interface has no resolvable ifindex
func (ifc *Interface) Deferred() bool {
	_, ok := ifc.Ifindex()
	return !ok
}

// MaxPipes folds Policy.MaxPipes over every subport's attached policy
func (ifc *Interface) MaxPipes() uint32 {
	var maxPipes uint32
	for _, subport := range ifc.subports {
		if subport.policy != nil {
			maxPipes = subport.policy.MaxPipes(maxPipes)
		}
	}
	return maxPipes
}

// Commands returns the ordered command sequence configuring this interface's
// shaping hierarchy: the port header first, each subport's pipe bindings in
// ascending subport id order, and the enable command last. The sequence is
// empty when no attached policy has a traffic class. ok is false when the
// interface is deferred and commands cannot be generated yet.
//
// When the trunk carries no policy the port command's overhead is 0: there
// is no trunk shaper whose framing the dataplane must compensate for.
func (ifc *Interface) Commands() ([]types.Command, bool) {
	maxPipes := ifc.MaxPipes()
	if maxPipes == 0 {
		return nil, true
	}

	ifindex, ok := ifc.Ifindex()
	if !ok {
		return nil, false
	}

	var overhead uint32
	if trunkPolicy := ifc.subports[0].policy; trunkPolicy != nil {
		overhead = trunkPolicy.Overhead()
	}

	cmds := []types.Command{
		types.NewPortCommandBuilder().
			WithIfindex(ifindex).
			WithSubports(uint32(len(ifc.subports))).
			WithPipes(maxPipes).
			WithProfiles(ifc.ProfileIndexSize()).
			WithOverhead(overhead).
			Build(),
	}

	for _, subport := range ifc.subports {
		cmds = append(cmds, subport.commands(ifindex)...)
	}

	cmds = append(cmds, types.NewEnableCommand(ifindex))
	return cmds, true
}

// BindingCommands returns the commands realizing this interface's
// ingress-map bindings. They are issued outside the shaping sequence. ok is
// false when the interface is deferred.
func (ifc *Interface) BindingCommands() ([]types.Command, bool) {
	var cmds []types.Command
	for _, binding := range ifc.bindings {
		bindingCmds, ok := binding.Commands()
		if !ok {
			return nil, false
		}
		cmds = append(cmds, bindingCmds...)
	}
	return cmds, true
}
