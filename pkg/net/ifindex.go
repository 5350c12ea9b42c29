package net

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// sysfsNetPath is where the kernel exposes per-netdev attributes
const sysfsNetPath = "/sys/class/net"

// IfindexResolver resolves the OS-level ifindex for a named network interface.
// An interface that is not (yet) present on the system is a normal condition,
// reported as found == false with a nil error.
type IfindexResolver interface {
	// IfindexFor returns the ifindex for the named interface
	IfindexFor(name string) (ifindex int, found bool, err error)
}

// NewIfindexResolverImpl creates a new IfindexResolverImpl
func NewIfindexResolverImpl(provider NetlinkProvider, log klog.Logger) *IfindexResolverImpl {
	return &IfindexResolverImpl{
		provider:  provider,
		log:       log,
		sysfsPath: sysfsNetPath,
	}
}

// IfindexResolverImpl implements IfindexResolver. It asks netlink first and
// falls back to reading the interface's sysfs ifindex attribute, which also
// covers netdevs netlink cannot describe (e.g. links in another namespace
// exposed through a mounted sysfs).
type IfindexResolverImpl struct {
	provider  NetlinkProvider
	log       klog.Logger
	sysfsPath string
}

// IfindexFor implements IfindexResolver interface
func (r *IfindexResolverImpl) IfindexFor(name string) (int, bool, error) {
	link, err := r.provider.LinkByName(name)
	if err == nil {
		return link.Attrs().Index, true, nil
	}
	r.log.V(5).Info("netlink lookup failed, trying sysfs", "interface", name, "reason", err.Error())

	return r.ifindexFromSysfs(name)
}

// ifindexFromSysfs reads /sys/class/net/<name>/ifindex
func (r *IfindexResolverImpl) ifindexFromSysfs(name string) (int, bool, error) {
	filename := fmt.Sprintf("%s/%s/ifindex", r.sysfsPath, name)
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// deferred interface, e.g. a vhost device not instantiated yet
			r.log.V(5).Info("interface not present on system", "interface", name)
			return 0, false, nil
		}
		return 0, false, err
	}

	ifindex, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false, fmt.Errorf("malformed ifindex for %s: %w", name, err)
	}
	return ifindex, true, nil
}

// WithSysfsPath overrides the sysfs mount point, intended for tests
func (r *IfindexResolverImpl) WithSysfsPath(path string) *IfindexResolverImpl {
	r.sysfsPath = path
	return r
}
