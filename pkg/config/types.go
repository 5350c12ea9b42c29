package config

import (
	"encoding/json"
	"reflect"
)

const (
	// InterfaceTypeDataplane is a standard virtual-machine dataplane port
	InterfaceTypeDataplane InterfaceType = "dataplane"
	// InterfaceTypeBonding is a bonded port
	InterfaceTypeBonding InterfaceType = "bonding"
	// InterfaceTypeVhost is a vhost port
	InterfaceTypeVhost InterfaceType = "vhost"
)

const (
	// LayoutStandard is the standard VM attachment-point layout
	LayoutStandard Layout = "standard"
	// LayoutSwitchGroup is the hardware-switch attachment-point layout
	LayoutSwitchGroup Layout = "switch-group"
	// LayoutNone means no attachment point was found, which is not an error
	LayoutNone Layout = "none"
)

// InterfaceType tags the configuration namespace variant of an interface
type InterfaceType string

// Layout tags which attachment-point layout an interface entry used
type Layout string

// ActionGroup is a named bundle of policy rule actions
type ActionGroup struct {
	Name  string `json:"id"`
	Rules []Rule `json:"rule"`
}

// Rule is one rule of an action group
type Rule struct {
	Number uint32 `json:"tagnode"`
	Action string `json:"action"`
}

// MarkMap is a named DSCP/PCP remarking table
type MarkMap struct {
	Name       string          `json:"id"`
	DscpGroups []DscpGroupMark `json:"dscp-group"`
}

// DscpGroupMark remarks one DSCP group to a PCP value
type DscpGroupMark struct {
	GroupName string `json:"group-name"`
	PcpMark   uint8  `json:"pcp-mark"`
}

// Profile holds the shaping parameters of one profile, global or policy-local
type Profile struct {
	Name      string `json:"id"`
	Bandwidth string `json:"bandwidth"`
	Burst     uint32 `json:"burst"`
	Period    uint32 `json:"period"`
}

// Policy is one named shaping policy
type Policy struct {
	Name   string `json:"id"`
	Shaper Shaper `json:"shaper"`
}

// Shaper holds the shaper subtree of a policy
type Shaper struct {
	Bandwidth      string    `json:"bandwidth"`
	FrameOverhead  uint32    `json:"frame-overhead"`
	DefaultProfile string    `json:"default"`
	MarkMap        string    `json:"mark-map"`
	Profiles       []Profile `json:"profile"`
	Classes        []Class   `json:"class"`
}

// Class is one traffic class of a policy. An empty Profile means the class
// pipe uses the policy's default profile.
type Class struct {
	ID      uint32 `json:"id"`
	Profile string `json:"profile"`
}

// IngressMap is a named classification table remarking ingress traffic to an
// internal designation
type IngressMap struct {
	Name          string        `json:"id"`
	PCPs          []Designation `json:"pcp"`
	SystemDefault bool          `json:"system-default"`
}

// Designation maps one PCP value to an internal designation
type Designation struct {
	ID          uint8 `json:"id"`
	Designation uint8 `json:"designation"`
}

// VLAN is one VLAN declared on an interface, with its optional QoS attachments
type VLAN struct {
	Tag            uint16
	PolicyName     string
	IngressMapName string
}

// Interface is the canonical, namespace-free form of one interface entry.
// Later stages have zero awareness of which namespace variant produced it.
type Interface struct {
	Name           string
	Type           InterfaceType
	Layout         Layout
	PolicyName     string
	IngressMapName string
	VLANs          []VLAN

	// raw is the originating JSON subtree, kept for structural equality
	raw json.RawMessage
}

// Raw returns the originating JSON subtree for this interface entry
func (i *Interface) Raw() json.RawMessage {
	return i.raw
}

// Equals returns true if this and other Interface originate from structurally
// equal configuration subtrees. It is used for change detection between
// configuration snapshots, not for identity.
func (i *Interface) Equals(other *Interface) bool {
	if i == other {
		return true
	}
	if i == nil || other == nil {
		return false
	}

	var this, that interface{}
	if err := json.Unmarshal(i.raw, &this); err != nil {
		return false
	}
	if err := json.Unmarshal(other.raw, &that); err != nil {
		return false
	}
	return reflect.DeepEqual(this, that)
}

// Config is the canonical form of one configuration snapshot
type Config struct {
	ActionGroups   []ActionGroup
	MarkMaps       []MarkMap
	GlobalProfiles []Profile
	Policies       []Policy
	IngressMaps    []IngressMap
	Interfaces     []*Interface
}
