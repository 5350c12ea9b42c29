package dataplane

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
	"github.com/nickbroon/vplane-config-qos/pkg/utils"
)

// NewActuatorFileWriterImpl returns a new ActuatorFileWriterImpl instance
func NewActuatorFileWriterImpl(dir string, log klog.Logger) *ActuatorFileWriterImpl {
	return &ActuatorFileWriterImpl{
		log: log,
		dir: dir,
	}
}

// ActuatorFileWriterImpl implements Actuator interface and saves the command
// sequence of each interface to a file, one file per interface. It is
// intended for troubleshooting and for running without a dataplane.
type ActuatorFileWriterImpl struct {
	log klog.Logger
	dir string
}

// Actuate implements Actuator interface. The file is rewritten only when the
// rendered command sequence changed.
func (a *ActuatorFileWriterImpl) Actuate(ifName string, cmds []types.Command) error {
	path := filepath.Join(a.dir, ifName)

	exist, err := utils.PathExists(path)
	if err != nil {
		return errors.Wrapf(err, "failed to determine if path exist: %s", path)
	}

	currentBuf := bytes.NewBuffer([]byte{})
	if exist {
		data, err := os.ReadFile(path)
		if err != nil {
			a.log.Info("failed to read existing commands file", "path", path, "reason", err.Error())
		} else {
			currentBuf = bytes.NewBuffer(data)
		}
	}

	newBuf := bytes.Buffer{}
	for _, c := range cmds {
		_, _ = newBuf.WriteString(types.CommandString(c))
		_, _ = newBuf.WriteRune('\n')
	}

	if bytes.Equal(currentBuf.Bytes(), newBuf.Bytes()) {
		a.log.V(5).Info("current and new commands are the same - no action needed", "interface", ifName)
		return nil
	}

	a.log.Info("saving commands", "interface", ifName, "path", path)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = newBuf.WriteTo(file)
	return err
}
