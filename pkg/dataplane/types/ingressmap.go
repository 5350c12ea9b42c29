package types

import "strconv"

const (
	// CommandKindIngressMapBind is the kind of the ingress-map binding command
	CommandKindIngressMapBind CommandKind = "ingress-map-bind"
)

// IngressMapBindCommand binds a named ingress-map to an interface, or to one
// VLAN of it when Vlan is set. It is issued outside the shaping sequence.
type IngressMapBindCommand struct {
	Ifindex int
	Name    string
	Vlan    *uint16
}

// Kind implements Command interface
func (i *IngressMapBindCommand) Kind() CommandKind {
	return CommandKindIngressMapBind
}

// Equals implements Command interface
func (i *IngressMapBindCommand) Equals(other Command) bool {
	otherBind, ok := other.(*IngressMapBindCommand)
	if !ok {
		return false
	}
	if i.Ifindex != otherBind.Ifindex {
		return false
	}
	if i.Name != otherBind.Name {
		return false
	}
	return compare(i.Vlan, otherBind.Vlan)
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (i *IngressMapBindCommand) GenCmdLineArgs() []string {
	args := []string{"qos", strconv.Itoa(i.Ifindex), "ingress-map", i.Name}
	if i.Vlan != nil {
		args = append(args, "vlan", strconv.FormatUint(uint64(*i.Vlan), 10))
	}
	return args
}

// Builders

// NewIngressMapBindCommandBuilder returns a new IngressMapBindCommandBuilder
func NewIngressMapBindCommandBuilder() *IngressMapBindCommandBuilder {
	return &IngressMapBindCommandBuilder{}
}

// IngressMapBindCommandBuilder is an IngressMapBindCommand builder
type IngressMapBindCommandBuilder struct {
	bindCommand IngressMapBindCommand
}

// WithIfindex adds Ifindex to IngressMapBindCommandBuilder
func (bb *IngressMapBindCommandBuilder) WithIfindex(ifindex int) *IngressMapBindCommandBuilder {
	bb.bindCommand.Ifindex = ifindex
	return bb
}

// WithName adds the ingress-map name to IngressMapBindCommandBuilder
func (bb *IngressMapBindCommandBuilder) WithName(name string) *IngressMapBindCommandBuilder {
	bb.bindCommand.Name = name
	return bb
}

// WithVlan adds the VLAN tag to IngressMapBindCommandBuilder
func (bb *IngressMapBindCommandBuilder) WithVlan(vlan uint16) *IngressMapBindCommandBuilder {
	bb.bindCommand.Vlan = &vlan
	return bb
}

// Build builds and returns a new IngressMapBindCommand instance
// Note: calling Build() multiple times will not return a completely
// new object on each call. that is, pointer/slice/map types will not be deep copied.
// to create several objects, different builders should be used.
func (bb *IngressMapBindCommandBuilder) Build() *IngressMapBindCommand {
	return &IngressMapBindCommand{
		Ifindex: bb.bindCommand.Ifindex,
		Name:    bb.bindCommand.Name,
		Vlan:    bb.bindCommand.Vlan,
	}
}
