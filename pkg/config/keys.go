package config

// Vendor-namespaced key names of the configuration snapshot. These are part
// of the wire contract with the configuration system and must match the YANG
// module namespaces bit-exact.
const (
	// top level
	KeyPolicy     = "vyatta-policy-v1:policy"
	KeyInterfaces = "vyatta-interfaces-v1:interfaces"

	// under KeyPolicy
	KeyAction = "vyatta-policy-action-v1:action"
	KeyQos    = "vyatta-policy-qos-v1:qos"

	// standard attachment-point layout
	KeyInterfacePolicy      = "vyatta-interfaces-policy-v1:policy"
	KeyVhostInterfacePolicy = "vyatta-interfaces-vhost-policy-v1:policy"
	KeyVif                  = "vif"
	KeyVhostVif             = "vyatta-interfaces-vhost-vif-v1:vif"

	// hardware-switch attachment-point layout
	KeySwitchGroup     = "vyatta-interfaces-dataplane-switch-v1:switch-group"
	KeyPortParameters  = "port-parameters"
	KeySwitchPolicy    = "vyatta-interfaces-switch-policy-v1:policy"
	KeyVlanParameters  = "vlan-parameters"
	KeyQosParameters   = "qos-parameters"
	KeyVlan            = "vlan"
	KeyVlanID          = "vlan-id"
	KeyTagnode         = "tagnode"
	KeyName            = "name"
	KeyIngressMapentry = "vyatta-policy-qos-v1:ingress-map"
)

// qosAttachmentKey holds, per interface type, the namespace-qualified key
// under which a policy attachment names the QoS policy.
var qosAttachmentKey = map[InterfaceType]string{
	InterfaceTypeDataplane: "vyatta-policy-qos-v1:qos",
	InterfaceTypeBonding:   "vyatta-interfaces-bonding-qos-v1:qos",
	InterfaceTypeVhost:     "vyatta-interfaces-vhost-qos-v1:qos",
}
