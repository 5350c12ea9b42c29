package server

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	"github.com/nickbroon/vplane-config-qos/pkg/config"
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane"
	qosnet "github.com/nickbroon/vplane-config-qos/pkg/net"
	"github.com/nickbroon/vplane-config-qos/pkg/qos"
)

// Server drives provisioning: it reads the configuration snapshot, builds
// the QoS object graph, and actuates the command sequences of every
// interface whose configuration changed since the previous snapshot.
type Server struct {
	Options *Options

	log      klog.Logger
	resolver qosnet.IfindexResolver
	actuator dataplane.Actuator

	// previous successfully-built graph, for change detection
	last *qos.Config
	// interfaces already actuated; an unchanged but deferred interface is
	// retried until it makes it into this set
	provisioned map[string]bool
}

// NewServer creates a Server from opts
func NewServer(opts *Options) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := klog.NewKlogr().WithName("qos-vci")

	var actuator dataplane.Actuator
	if opts.CtrlPath != "" {
		actuator = dataplane.NewActuatorCtrlImpl(opts.CtrlPath, log.WithName("ctrl"), exec.New())
	} else {
		actuator = dataplane.NewActuatorFileWriterImpl(opts.CommandsDir, log.WithName("file-writer"))
	}

	return &Server{
		Options:     opts,
		log:         log,
		resolver:    qosnet.NewIfindexResolverImpl(qosnet.NewNetlinkProviderImpl(), log.WithName("ifindex")),
		actuator:    actuator,
		provisioned: make(map[string]bool),
	}, nil
}

// Run provisions once, then keeps re-provisioning every SyncPeriod until ctx
// is done. A failed sync is logged and retried on the next period; it never
// tears down what a previous snapshot configured.
func (s *Server) Run(ctx context.Context) {
	wait.Until(func() {
		if err := s.Sync(); err != nil {
			s.log.Error(err, "sync failed")
		}
	}, s.Options.SyncPeriod, ctx.Done())
}

// Sync performs one provisioning pass. A reference error while building the
// graph aborts the whole snapshot: no interface from a broken snapshot is
// provisioned.
func (s *Server) Sync() error {
	data, err := os.ReadFile(s.Options.SnapshotPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read snapshot %s", s.Options.SnapshotPath)
	}

	canonical, err := config.Parse(data, s.log.WithName("config"))
	if err != nil {
		return err
	}

	graph, err := qos.NewConfig(canonical, s.resolver, s.log.WithName("qos"))
	if err != nil {
		return errors.Wrap(err, "rejecting snapshot")
	}

	for _, ifc := range graph.Interfaces() {
		if err := s.provisionInterface(ifc); err != nil {
			return err
		}
	}

	if deferred := graph.DeferredInterfaces(); len(deferred) > 0 {
		s.log.V(2).Info("interfaces deferred until present on system", "interfaces", deferred)
	}

	s.last = graph
	return nil
}

// provisionInterface actuates one interface unless its configuration is
// unchanged since the last time it was actually provisioned, or the
// interface is deferred
func (s *Server) provisionInterface(ifc *qos.Interface) error {
	if s.provisioned[ifc.Name()] && s.last != nil && ifc.Equals(s.last.FindInterface(ifc.Name())) {
		s.log.V(5).Info("interface unchanged, skipping", "interface", ifc.Name())
		return nil
	}

	cmds, ok := ifc.Commands()
	if !ok {
		s.log.V(2).Info("interface deferred, not provisioning", "interface", ifc.Name())
		return nil
	}

	// ingress-map bindings go first so the shaping hierarchy can refer to
	// designations from the moment it is enabled
	bindingCmds, ok := ifc.BindingCommands()
	if !ok {
		s.log.V(2).Info("interface deferred, not provisioning", "interface", ifc.Name())
		return nil
	}

	all := append(bindingCmds, cmds...)
	if len(all) == 0 {
		s.log.V(5).Info("interface has no active shaping policy", "interface", ifc.Name())
		s.provisioned[ifc.Name()] = true
		return nil
	}

	if err := s.actuator.Actuate(ifc.Name(), all); err != nil {
		return errors.Wrapf(err, "failed to provision %s", ifc.Name())
	}
	s.provisioned[ifc.Name()] = true
	return nil
}
