package dataplane

import (
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
)

// Actuator is an interface that applies an ordered QoS command sequence for
// one interface. The order of cmds is load-bearing and must be preserved.
type Actuator interface {
	// Actuate applies cmds for the named interface
	Actuate(ifName string, cmds []types.Command) error
}
