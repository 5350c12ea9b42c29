package qos

import (
	"github.com/nickbroon/vplane-config-qos/pkg/config"
)

// Profile is a named set of shaping parameters. Its id is scope-relative:
// global profiles are numbered in declaration order across the snapshot,
// policy-local profiles are numbered within their owning policy. The id is
// not what addresses a profile on the dataplane; that is the per-interface
// profile index.
type Profile struct {
	id        uint32
	name      string
	bandwidth string
	burst     uint32
	period    uint32
	global    bool
}

// NewProfile creates a Profile with the given scope-relative id
func NewProfile(id uint32, cfg config.Profile, global bool) *Profile {
	return &Profile{
		id:        id,
		name:      cfg.Name,
		bandwidth: cfg.Bandwidth,
		burst:     cfg.Burst,
		period:    cfg.Period,
		global:    global,
	}
}

// ID returns the scope-relative profile id
func (p *Profile) ID() uint32 {
	return p.id
}

// Name returns the profile name
func (p *Profile) Name() string {
	return p.name
}

// Bandwidth returns the shaping bandwidth
func (p *Profile) Bandwidth() string {
	return p.bandwidth
}

// Burst returns the burst size
func (p *Profile) Burst() uint32 {
	return p.burst
}

// Period returns the shaping period
func (p *Profile) Period() uint32 {
	return p.period
}

// Global returns true if this is a globally-declared profile
func (p *Profile) Global() bool {
	return p.global
}
