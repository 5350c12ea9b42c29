package qos

import (
	"github.com/nickbroon/vplane-config-qos/pkg/config"
)

// MarkMap is a named DSCP/PCP remarking table
type MarkMap struct {
	name       string
	dscpGroups []config.DscpGroupMark
}

// NewMarkMap creates a MarkMap from its configuration
func NewMarkMap(cfg config.MarkMap) *MarkMap {
	return &MarkMap{
		name:       cfg.Name,
		dscpGroups: cfg.DscpGroups,
	}
}

// Name returns the mark-map name
func (m *MarkMap) Name() string {
	return m.name
}

// DscpGroups returns the DSCP-group remark entries of this mark-map
func (m *MarkMap) DscpGroups() []config.DscpGroupMark {
	return m.dscpGroups
}
