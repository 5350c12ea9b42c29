package qos

import (
	"fmt"

	"github.com/nickbroon/vplane-config-qos/pkg/config"
)

// Class is one traffic class of a policy. A nil profile means the class pipe
// is shaped by the policy's default profile.
type Class struct {
	id      uint32
	profile *Profile
}

// ID returns the class id
func (c Class) ID() uint32 {
	return c.id
}

// Profile returns the class's explicit profile, or nil if it uses the
// policy default
func (c Class) Profile() *Profile {
	return c.profile
}

// Policy is a named shaper definition. It owns its local profiles and keeps
// non-owning back-references to the interfaces it is attached to.
type Policy struct {
	name           string
	bandwidth      string
	overhead       uint32
	defaultProfile *Profile
	localProfiles  []*Profile
	markMap        *MarkMap
	classes        []Class

	// referencedGlobals are the global profiles this policy references,
	// in resolution order, deduplicated
	referencedGlobals []*Profile

	// interfaces this policy is attached to; appended only by Interface
	// construction, keeping both sides of the cross-link consistent
	interfaces []*Interface
}

// NewPolicy creates a Policy from its configuration, resolving its default
// profile and every class profile against {policy-local U global} profiles,
// and its mark-map against the mark-map registry. Any unresolved name is a
// fatal ReferenceError.
func NewPolicy(cfg config.Policy, globalProfiles map[string]*Profile, markMaps map[string]*MarkMap) (*Policy, error) {
	p := &Policy{
		name:      cfg.Name,
		bandwidth: cfg.Shaper.Bandwidth,
		overhead:  cfg.Shaper.FrameOverhead,
	}
	referrer := fmt.Sprintf("policy %q", cfg.Name)

	local := make(map[string]*Profile, len(cfg.Shaper.Profiles))
	for i, profCfg := range cfg.Shaper.Profiles {
		prof := NewProfile(uint32(i), profCfg, false)
		p.localProfiles = append(p.localProfiles, prof)
		local[prof.Name()] = prof
	}

	// local profiles shadow globals of the same name
	resolve := func(name string) (*Profile, error) {
		if prof, ok := local[name]; ok {
			return prof, nil
		}
		if prof, ok := globalProfiles[name]; ok {
			p.addReferencedGlobal(prof)
			return prof, nil
		}
		return nil, newReferenceError(referrer, RefKindProfile, name)
	}

	if cfg.Shaper.DefaultProfile != "" {
		prof, err := resolve(cfg.Shaper.DefaultProfile)
		if err != nil {
			return nil, err
		}
		p.defaultProfile = prof
	}

	for _, classCfg := range cfg.Shaper.Classes {
		class := Class{id: classCfg.ID}
		if classCfg.Profile != "" {
			prof, err := resolve(classCfg.Profile)
			if err != nil {
				return nil, err
			}
			class.profile = prof
		}
		p.classes = append(p.classes, class)
	}

	if cfg.Shaper.MarkMap != "" {
		markMap, ok := markMaps[cfg.Shaper.MarkMap]
		if !ok {
			return nil, newReferenceError(referrer, RefKindMarkMap, cfg.Shaper.MarkMap)
		}
		p.markMap = markMap
	}

	return p, nil
}

// addReferencedGlobal records a referenced global profile exactly once
func (p *Policy) addReferencedGlobal(prof *Profile) {
	for _, existing := range p.referencedGlobals {
		if existing == prof {
			return
		}
	}
	p.referencedGlobals = append(p.referencedGlobals, prof)
}

// Name returns the policy name
func (p *Policy) Name() string {
	return p.name
}

// Bandwidth returns the shaper bandwidth
func (p *Policy) Bandwidth() string {
	return p.bandwidth
}

// Overhead returns the frame overhead of this policy's shaper
func (p *Policy) Overhead() uint32 {
	return p.overhead
}

// DefaultProfile returns the default profile, or nil if none configured
func (p *Policy) DefaultProfile() *Profile {
	return p.defaultProfile
}

// LocalProfiles returns the policy-local profiles in declaration order
func (p *Policy) LocalProfiles() []*Profile {
	return p.localProfiles
}

// ReferencedGlobalProfiles returns the global profiles referenced by this
// policy, in resolution order, each exactly once
func (p *Policy) ReferencedGlobalProfiles() []*Profile {
	return p.referencedGlobals
}

// MarkMap returns the mark-map of this policy, or nil if none configured
func (p *Policy) MarkMap() *MarkMap {
	return p.markMap
}

// Classes returns the traffic classes in declaration order
func (p *Policy) Classes() []Class {
	return p.classes
}

// MaxPipes returns the greater of cur and the number of traffic classes in
// this policy. Callers fold it over multiple subports to size the port.
func (p *Policy) MaxPipes(cur uint32) uint32 {
	if n := uint32(len(p.classes)); n > cur {
		return n
	}
	return cur
}

// Interfaces returns the interfaces this policy is attached to
func (p *Policy) Interfaces() []*Interface {
	return p.interfaces
}

// attachInterface appends a back-reference to an interface. Called only from
// Interface construction, which appends the forward reference in the same
// step.
func (p *Policy) attachInterface(ifc *Interface) {
	p.interfaces = append(p.interfaces, ifc)
}
