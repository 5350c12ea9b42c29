package qos

import (
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
)

// Subport is one shaping attachment point of an interface: the trunk
// (id 0, vlan 0) or one VLAN. A subport may carry no policy; VLANs without
// QoS are legal and emit no commands.
type Subport struct {
	ifc    *Interface
	id     uint32
	vlan   uint16
	policy *Policy
}

// ID returns the subport id; 0 always denotes the trunk
func (s *Subport) ID() uint32 {
	return s.id
}

// Vlan returns the subport's VLAN tag; 0 for the trunk
func (s *Subport) Vlan() uint16 {
	return s.vlan
}

// Policy returns the policy attached to this subport, or nil
func (s *Subport) Policy() *Policy {
	return s.policy
}

// commands emits this subport's pipe bindings: pipe 0 bound to the policy's
// default profile, then one pipe per class with an explicit profile. Every
// binding addresses the profile by its interface-scoped index.
func (s *Subport) commands(ifindex int) []types.Command {
	if s.policy == nil {
		return nil
	}

	var cmds []types.Command
	if s.policy.DefaultProfile() != nil {
		if index, ok := s.profileIndexOf(s.policy.DefaultProfile()); ok {
			cmds = append(cmds, types.NewPipeCommandBuilder().
				WithIfindex(ifindex).
				WithSubport(s.id).
				WithPipe(0).
				WithProfile(index).
				Build())
		}
	}

	for _, class := range s.policy.Classes() {
		if class.Profile() == nil {
			continue
		}
		if index, ok := s.profileIndexOf(class.Profile()); ok {
			cmds = append(cmds, types.NewPipeCommandBuilder().
				WithIfindex(ifindex).
				WithSubport(s.id).
				WithPipe(class.ID()).
				WithProfile(index).
				Build())
		}
	}
	return cmds
}

// profileIndexOf resolves a profile of this subport's policy to its
// interface-scoped index
func (s *Subport) profileIndexOf(prof *Profile) (uint32, bool) {
	return s.ifc.ProfileIndexGet(profileKeyFor(s, prof))
}

// profileKeyFor forms the index key for a profile as seen from a subport:
// global profiles are scoped "global", local profiles are scoped by the
// subport's VLAN tag (0 for the trunk).
func profileKeyFor(s *Subport, prof *Profile) ProfileKey {
	if prof.Global() {
		return ProfileKey{Scope: ScopeGlobal, Name: prof.Name()}
	}
	return ProfileKey{Scope: vlanScope(s.vlan), Name: prof.Name()}
}
