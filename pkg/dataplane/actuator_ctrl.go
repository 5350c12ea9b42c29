package dataplane

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
)

// NewActuatorCtrlImpl creates a new ActuatorCtrlImpl
func NewActuatorCtrlImpl(ctrlPath string, log klog.Logger, executor exec.Interface) *ActuatorCtrlImpl {
	return &ActuatorCtrlImpl{
		ctrlPath: ctrlPath,
		log:      log,
		executor: executor,
	}
}

// ActuatorCtrlImpl implements Actuator interface by feeding each command to
// the dataplane ctrl client binary (vplsh), one invocation per command,
// preserving command order. The first failing command aborts the sequence;
// the dataplane discards a partially-configured port on the next port
// command, so no cleanup is attempted here.
type ActuatorCtrlImpl struct {
	ctrlPath string
	log      klog.Logger
	executor exec.Interface
}

// Actuate implements Actuator interface
func (a *ActuatorCtrlImpl) Actuate(ifName string, cmds []types.Command) error {
	for _, c := range cmds {
		cmdStr := types.CommandString(c)
		a.log.V(10).Info("executing", "cmd", a.ctrlPath, "args", cmdStr)
		cmd := a.executor.Command(a.ctrlPath, "-c", cmdStr)
		out, err := cmd.CombinedOutput()
		a.log.V(10).Info("exec result", "err", err, "out", string(out))
		if err != nil {
			return errors.Wrapf(err, "failed to apply qos command %q for %s", cmdStr, ifName)
		}
	}
	return nil
}
