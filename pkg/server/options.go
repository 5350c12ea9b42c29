package server

import (
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Options stores options for the command
type Options struct {
	// SnapshotPath is the path of the configuration snapshot JSON file
	SnapshotPath string `mapstructure:"snapshot-path"`
	// CtrlPath is the path of the dataplane ctrl client binary; when empty
	// commands are written to files under CommandsDir instead
	CtrlPath string `mapstructure:"ctrl-path"`
	// CommandsDir is where per-interface command files are written
	CommandsDir string `mapstructure:"commands-dir"`
	// SyncPeriod is how often the snapshot is re-read and re-provisioned
	SyncPeriod time.Duration `mapstructure:"sync-period"`

	configFile string
}

// NewOptions initializes Options
func NewOptions() *Options {
	return &Options{
		CommandsDir: "/run/vyatta/qos",
		SyncPeriod:  30 * time.Second,
	}
}

// AddFlags adds command line flags into command
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	klog.InitFlags(nil)
	fs.SortFlags = false
	fs.StringVar(&o.SnapshotPath, "snapshot-path", o.SnapshotPath, "Path to the configuration snapshot JSON file.")
	fs.StringVar(&o.CtrlPath, "ctrl-path", o.CtrlPath, "Path to the dataplane ctrl client binary. If empty, commands are written to files under commands-dir.")
	fs.StringVar(&o.CommandsDir, "commands-dir", o.CommandsDir, "Directory to store per-interface command files for troubleshooting.")
	fs.DurationVar(&o.SyncPeriod, "sync-period", o.SyncPeriod, "How often the configuration snapshot is re-read and re-provisioned.")
	fs.StringVar(&o.configFile, "config", o.configFile, "Path to an options file. Flags set on the command line take precedence.")
	fs.AddGoFlagSet(flag.CommandLine)
}

// LoadConfigFile overlays options from the file given by --config, if any.
// Values already set by explicit command line flags are kept.
func (o *Options) LoadConfigFile(fs *pflag.FlagSet) error {
	if o.configFile == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(o.configFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read options file %s", o.configFile)
	}

	var fromFile Options
	if err := v.Unmarshal(&fromFile); err != nil {
		return errors.Wrapf(err, "failed to parse options file %s", o.configFile)
	}

	if !fs.Changed("snapshot-path") && fromFile.SnapshotPath != "" {
		o.SnapshotPath = fromFile.SnapshotPath
	}
	if !fs.Changed("ctrl-path") && fromFile.CtrlPath != "" {
		o.CtrlPath = fromFile.CtrlPath
	}
	if !fs.Changed("commands-dir") && fromFile.CommandsDir != "" {
		o.CommandsDir = fromFile.CommandsDir
	}
	if !fs.Changed("sync-period") && fromFile.SyncPeriod != 0 {
		o.SyncPeriod = fromFile.SyncPeriod
	}
	return nil
}

// Validate returns an error when the options cannot form a runnable server
func (o *Options) Validate() error {
	if o.SnapshotPath == "" {
		return errors.New("snapshot-path must be set")
	}
	if o.CtrlPath == "" && o.CommandsDir == "" {
		return errors.New("one of ctrl-path or commands-dir must be set")
	}
	return nil
}
