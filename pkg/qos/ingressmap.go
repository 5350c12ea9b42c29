package qos

import (
	"github.com/nickbroon/vplane-config-qos/pkg/config"
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
)

// IngressMap is a named classification table remarking ingress traffic to an
// internal designation, bindable to interfaces or single VLANs
type IngressMap struct {
	name          string
	systemDefault bool
	pcps          []config.Designation

	// bindings referencing this map; appended only by Interface construction
	bindings []*IngressMapBinding
}

// NewIngressMap creates an IngressMap from its configuration
func NewIngressMap(cfg config.IngressMap) *IngressMap {
	return &IngressMap{
		name:          cfg.Name,
		systemDefault: cfg.SystemDefault,
		pcps:          cfg.PCPs,
	}
}

// Name returns the ingress-map name
func (m *IngressMap) Name() string {
	return m.name
}

// SystemDefault returns true if this map is the system default
func (m *IngressMap) SystemDefault() bool {
	return m.systemDefault
}

// PCPs returns the PCP designation entries
func (m *IngressMap) PCPs() []config.Designation {
	return m.pcps
}

// Bindings returns every binding of this map to an interface or VLAN
func (m *IngressMap) Bindings() []*IngressMapBinding {
	return m.bindings
}

// attachBinding appends a back-reference to a binding. Called only from
// Interface construction.
func (m *IngressMap) attachBinding(binding *IngressMapBinding) {
	m.bindings = append(m.bindings, binding)
}

// IngressMapBinding binds an ingress-map to a whole interface (vlan 0) or to
// one VLAN of it
type IngressMapBinding struct {
	ifc        *Interface
	vlan       uint16
	ingressMap *IngressMap
}

// Interface returns the bound interface
func (b *IngressMapBinding) Interface() *Interface {
	return b.ifc
}

// Vlan returns the bound VLAN tag; 0 means the whole interface
func (b *IngressMapBinding) Vlan() uint16 {
	return b.vlan
}

// IngressMap returns the bound ingress-map
func (b *IngressMapBinding) IngressMap() *IngressMap {
	return b.ingressMap
}

// Commands returns the dataplane commands realizing this binding. ok is
// false when the owning interface's ifindex is not resolvable yet.
func (b *IngressMapBinding) Commands() ([]types.Command, bool) {
	ifindex, ok := b.ifc.Ifindex()
	if !ok {
		return nil, false
	}

	builder := types.NewIngressMapBindCommandBuilder().
		WithIfindex(ifindex).
		WithName(b.ingressMap.Name())
	if b.vlan != 0 {
		builder = builder.WithVlan(b.vlan)
	}
	return []types.Command{builder.Build()}, true
}
