package config

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// snapshot mirrors the top level of the vendor-namespaced snapshot
type snapshot struct {
	Policy     *policySubtree             `json:"vyatta-policy-v1:policy"`
	Interfaces map[string]json.RawMessage `json:"vyatta-interfaces-v1:interfaces"`
}

// policySubtree mirrors the policy subtree
type policySubtree struct {
	Action *actionSubtree `json:"vyatta-policy-action-v1:action"`
	Qos    *qosSubtree    `json:"vyatta-policy-qos-v1:qos"`
}

// actionSubtree mirrors the action-group list container
type actionSubtree struct {
	Names []ActionGroup `json:"name"`
}

// qosSubtree mirrors the qos registry container
type qosSubtree struct {
	MarkMaps    []MarkMap    `json:"mark-map"`
	Profiles    []Profile    `json:"profile"`
	Policies    []Policy     `json:"name"`
	IngressMaps []IngressMap `json:"ingress-map"`
}

// attachment is a resolved policy attachment point
type attachment struct {
	policyName     string
	ingressMapName string
}

// layoutExtractor is one (extraction strategy, layout tag) pair. Extractors
// are tried in priority order, first success wins. A nil attachment with a
// nil error means the entry does not use this layout.
type layoutExtractor struct {
	layout  Layout
	extract func(p *parser, ifType InterfaceType, entry map[string]json.RawMessage) (*attachment, []VLAN, error)
}

// layoutExtractors is the fixed priority order: standard VM layout first,
// hardware-switch layout second.
var layoutExtractors = []layoutExtractor{
	{layout: LayoutStandard, extract: (*parser).extractStandard},
	{layout: LayoutSwitchGroup, extract: (*parser).extractSwitchGroup},
}

type parser struct {
	log klog.Logger
}

// Parse decodes one configuration snapshot into its canonical form. Missing
// optional subtrees mean "feature not configured"; malformed JSON is an error.
func Parse(data []byte, log klog.Logger) (*Config, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "malformed configuration snapshot")
	}

	p := &parser{log: log}
	cfg := &Config{}

	if snap.Policy != nil {
		if snap.Policy.Action != nil {
			cfg.ActionGroups = snap.Policy.Action.Names
		}
		if snap.Policy.Qos != nil {
			cfg.MarkMaps = snap.Policy.Qos.MarkMaps
			cfg.GlobalProfiles = snap.Policy.Qos.Profiles
			cfg.Policies = snap.Policy.Qos.Policies
			cfg.IngressMaps = snap.Policy.Qos.IngressMaps
		}
	}

	interfaces, err := p.parseInterfaces(snap.Interfaces)
	if err != nil {
		return nil, err
	}
	cfg.Interfaces = interfaces

	return cfg, nil
}

// parseInterfaces walks the interface lists of every interface type. List
// keys are sorted so a byte-identical snapshot always yields the same
// interface order.
func (p *parser) parseInterfaces(ifTypes map[string]json.RawMessage) ([]*Interface, error) {
	keys := make([]string, 0, len(ifTypes))
	for key := range ifTypes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var interfaces []*Interface
	for _, key := range keys {
		ifType := interfaceTypeFromKey(key)
		if _, known := qosAttachmentKey[ifType]; !known {
			p.log.V(2).Info("skipping unsupported interface type", "key", key)
			continue
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(ifTypes[key], &entries); err != nil {
			return nil, errors.Wrapf(err, "malformed %s interface list", ifType)
		}

		for _, raw := range entries {
			ifc, err := p.parseInterface(ifType, raw)
			if err != nil {
				return nil, err
			}
			interfaces = append(interfaces, ifc)
		}
	}
	return interfaces, nil
}

// interfaceTypeFromKey extracts the interface type from a namespace-qualified
// list key, e.g. "vyatta-interfaces-dataplane-v1:dataplane" -> "dataplane"
func interfaceTypeFromKey(key string) InterfaceType {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return InterfaceType(key)
	}
	return InterfaceType(parts[1])
}

// parseInterface normalizes one raw interface entry
func (p *parser) parseInterface(ifType InterfaceType, raw json.RawMessage) (*Interface, error) {
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrapf(err, "malformed %s interface entry", ifType)
	}

	name, err := p.interfaceName(ifType, entry)
	if err != nil {
		return nil, err
	}

	ifc := &Interface{
		Name:   name,
		Type:   ifType,
		Layout: LayoutNone,
		raw:    raw,
	}

	for _, extractor := range layoutExtractors {
		att, vlans, err := extractor.extract(p, ifType, entry)
		if err != nil {
			return nil, errors.Wrapf(err, "interface %s", name)
		}
		if att == nil {
			continue
		}
		ifc.Layout = extractor.layout
		ifc.PolicyName = att.policyName
		ifc.IngressMapName = att.ingressMapName
		ifc.VLANs = vlans
		break
	}

	if ifc.Layout == LayoutNone {
		p.log.V(5).Info("interface has no QoS attachment point", "interface", name, "type", ifType)
	}
	return ifc, nil
}

// interfaceName returns the identifying key of an entry: vhost interfaces use
// "name", everything else uses "tagnode"
func (p *parser) interfaceName(ifType InterfaceType, entry map[string]json.RawMessage) (string, error) {
	nameKey := KeyTagnode
	if ifType == InterfaceTypeVhost {
		nameKey = KeyName
	}

	raw, ok := entry[nameKey]
	if !ok {
		return "", errors.Errorf("%s interface entry without %q", ifType, nameKey)
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", errors.Wrapf(err, "malformed interface %q", nameKey)
	}
	return name, nil
}

// extractStandard handles the standard VM layout: the trunk policy hangs off
// the interface-policy container and VLANs are "vif" list entries.
func (p *parser) extractStandard(ifType InterfaceType, entry map[string]json.RawMessage) (*attachment, []VLAN, error) {
	policyKey := KeyInterfacePolicy
	vifKey := KeyVif
	if ifType == InterfaceTypeVhost {
		policyKey = KeyVhostInterfacePolicy
		vifKey = KeyVhostVif
	}

	rawPolicy, hasPolicy := entry[policyKey]
	rawVifs, hasVifs := entry[vifKey]
	if !hasPolicy && !hasVifs {
		return nil, nil, nil
	}

	att := &attachment{}
	if hasPolicy {
		trunkAtt, err := p.parseAttachment(ifType, rawPolicy)
		if err != nil {
			return nil, nil, err
		}
		*att = trunkAtt
	}

	var vlans []VLAN
	if hasVifs {
		var vifs []map[string]json.RawMessage
		if err := json.Unmarshal(rawVifs, &vifs); err != nil {
			return nil, nil, errors.Wrap(err, "malformed vif list")
		}
		for _, vif := range vifs {
			vlan := VLAN{}
			if err := unmarshalKey(vif, KeyTagnode, &vlan.Tag); err != nil {
				return nil, nil, errors.Wrap(err, "malformed vif tag")
			}
			if rawVifPolicy, ok := vif[policyKey]; ok {
				vifAtt, err := p.parseAttachment(ifType, rawVifPolicy)
				if err != nil {
					return nil, nil, err
				}
				vlan.PolicyName = vifAtt.policyName
				vlan.IngressMapName = vifAtt.ingressMapName
			}
			vlans = append(vlans, vlan)
		}
	}

	return att, vlans, nil
}

// extractSwitchGroup handles the hardware-switch layout: both the trunk
// policy and the VLANs live under switch-group port-parameters.
func (p *parser) extractSwitchGroup(ifType InterfaceType, entry map[string]json.RawMessage) (*attachment, []VLAN, error) {
	rawGroup, ok := entry[KeySwitchGroup]
	if !ok {
		return nil, nil, nil
	}

	var group map[string]json.RawMessage
	if err := json.Unmarshal(rawGroup, &group); err != nil {
		return nil, nil, errors.Wrap(err, "malformed switch-group")
	}
	rawParams, ok := group[KeyPortParameters]
	if !ok {
		return nil, nil, nil
	}
	var params map[string]json.RawMessage
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return nil, nil, errors.Wrap(err, "malformed port-parameters")
	}

	att := &attachment{}
	if rawPolicy, ok := params[KeySwitchPolicy]; ok {
		trunkAtt, err := p.parseAttachment(ifType, rawPolicy)
		if err != nil {
			return nil, nil, err
		}
		*att = trunkAtt
	}

	vlans, err := p.parseSwitchVlans(ifType, params)
	if err != nil {
		return nil, nil, err
	}

	return att, vlans, nil
}

// parseSwitchVlans extracts the vlan-parameters qos-parameters vlan list,
// any level of which may be absent.
func (p *parser) parseSwitchVlans(ifType InterfaceType, params map[string]json.RawMessage) ([]VLAN, error) {
	rawVlanParams, ok := params[KeyVlanParameters]
	if !ok {
		return nil, nil
	}
	var vlanParams map[string]json.RawMessage
	if err := json.Unmarshal(rawVlanParams, &vlanParams); err != nil {
		return nil, errors.Wrap(err, "malformed vlan-parameters")
	}
	rawQosParams, ok := vlanParams[KeyQosParameters]
	if !ok {
		return nil, nil
	}
	var qosParams map[string]json.RawMessage
	if err := json.Unmarshal(rawQosParams, &qosParams); err != nil {
		return nil, errors.Wrap(err, "malformed qos-parameters")
	}
	rawVlans, ok := qosParams[KeyVlan]
	if !ok {
		return nil, nil
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawVlans, &entries); err != nil {
		return nil, errors.Wrap(err, "malformed vlan list")
	}

	var vlans []VLAN
	for _, entry := range entries {
		vlan := VLAN{}
		if err := unmarshalKey(entry, KeyVlanID, &vlan.Tag); err != nil {
			return nil, errors.Wrap(err, "malformed vlan-id")
		}
		if rawPolicy, ok := entry[KeySwitchPolicy]; ok {
			vlanAtt, err := p.parseAttachment(ifType, rawPolicy)
			if err != nil {
				return nil, err
			}
			vlan.PolicyName = vlanAtt.policyName
			vlan.IngressMapName = vlanAtt.ingressMapName
		}
		vlans = append(vlans, vlan)
	}
	return vlans, nil
}

// parseAttachment reads the policy-attachment container: the attached policy
// name under the type-specific qos key, plus the optional ingress-map name.
func (p *parser) parseAttachment(ifType InterfaceType, raw json.RawMessage) (attachment, error) {
	var container map[string]json.RawMessage
	if err := json.Unmarshal(raw, &container); err != nil {
		return attachment{}, errors.Wrap(err, "malformed policy attachment")
	}

	att := attachment{}
	if rawQos, ok := container[qosAttachmentKey[ifType]]; ok {
		if err := json.Unmarshal(rawQos, &att.policyName); err != nil {
			return attachment{}, errors.Wrap(err, "malformed qos policy name")
		}
	}
	if rawMap, ok := container[KeyIngressMapentry]; ok {
		if err := json.Unmarshal(rawMap, &att.ingressMapName); err != nil {
			return attachment{}, errors.Wrap(err, "malformed ingress-map name")
		}
	}
	return att, nil
}

// unmarshalKey decodes entry[key] into out; a missing key is an error
func unmarshalKey(entry map[string]json.RawMessage, key string, out interface{}) error {
	raw, ok := entry[key]
	if !ok {
		return errors.Errorf("missing %q", key)
	}
	return json.Unmarshal(raw, out)
}
