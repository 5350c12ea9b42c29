package qos

import (
	"github.com/nickbroon/vplane-config-qos/pkg/config"
)

// ActionGroup is a named bundle of rule actions, referenced by name from
// policy rule sets
type ActionGroup struct {
	name  string
	rules []config.Rule
}

// NewActionGroup creates an ActionGroup from its configuration
func NewActionGroup(cfg config.ActionGroup) *ActionGroup {
	return &ActionGroup{
		name:  cfg.Name,
		rules: cfg.Rules,
	}
}

// Name returns the action group name
func (a *ActionGroup) Name() string {
	return a.name
}

// Rules returns the rules of this action group
func (a *ActionGroup) Rules() []config.Rule {
	return a.rules
}
