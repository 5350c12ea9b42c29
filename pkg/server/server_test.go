package server

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	klog "k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
	"github.com/nickbroon/vplane-config-qos/pkg/qos/testutil"
)

const serverSnapshot = `{
  "vyatta-policy-v1:policy": {
    "vyatta-policy-qos-v1:qos": {
      "profile": [
        {"id": "prof-a", "bandwidth": "10Gbit", "burst": 16000, "period": 10}
      ],
      "ingress-map": [
        {"id": "in-map", "pcp": [{"id": 0, "designation": 0}]}
      ],
      "name": [
        {"id": "P1", "shaper": {
          "frame-overhead": 24, "default": "prof-a",
          "class": [{"id": 1}, {"id": 2}]
        }}
      ]
    }
  },
  "vyatta-interfaces-v1:interfaces": {
    "vyatta-interfaces-dataplane-v1:dataplane": [
      {"tagnode": "dp0p1",
       "vyatta-interfaces-policy-v1:policy": {
         "vyatta-policy-qos-v1:qos": "P1",
         "vyatta-policy-qos-v1:ingress-map": "in-map"
       }},
      {"tagnode": "dp0p2"}
    ]
  }
}`

// actuateCall records one Actuate invocation
type actuateCall struct {
	ifName string
	cmds   []string
}

// fakeActuator implements dataplane.Actuator and records every call
type fakeActuator struct {
	calls []actuateCall
	err   error
}

func (f *fakeActuator) Actuate(ifName string, cmds []types.Command) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, actuateCall{ifName: ifName, cmds: types.CommandStrings(cmds)})
	return nil
}

var _ = Describe("Server sync tests", func() {
	var tempDir string
	var snapshotPath string
	var actuator *fakeActuator
	var resolver *testutil.FakeIfindexResolver
	var srv *Server

	writeSnapshot := func(content string) {
		ExpectWithOffset(1, os.WriteFile(snapshotPath, []byte(content), 0o644)).To(Succeed())
	}

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		snapshotPath = filepath.Join(tempDir, "snapshot.json")
		actuator = &fakeActuator{}
		resolver = testutil.NewFakeIfindexResolver(map[string]int{"dp0p1": 5, "dp0p2": 6})

		opts := NewOptions()
		opts.SnapshotPath = snapshotPath
		opts.CommandsDir = tempDir
		srv = &Server{
			Options:     opts,
			log:         klog.NewKlogr().WithName("server-test"),
			resolver:    resolver,
			actuator:    actuator,
			provisioned: make(map[string]bool),
		}
	})

	It("provisions a configured interface, bindings before shaping", func() {
		writeSnapshot(serverSnapshot)

		Expect(srv.Sync()).To(Succeed())

		Expect(actuator.calls).To(HaveLen(1))
		Expect(actuator.calls[0].ifName).To(Equal("dp0p1"))
		Expect(actuator.calls[0].cmds).To(Equal([]string{
			"qos 5 ingress-map in-map",
			"qos 5 port subports 1 pipes 2 profiles 1 overhead 24",
			"qos 5 pipe 0 0 0",
			"qos 5 enable",
		}))
	})

	It("skips unchanged interfaces on the next sync", func() {
		writeSnapshot(serverSnapshot)

		Expect(srv.Sync()).To(Succeed())
		Expect(srv.Sync()).To(Succeed())

		Expect(actuator.calls).To(HaveLen(1))
	})

	It("re-provisions only the interface whose subtree changed", func() {
		writeSnapshot(serverSnapshot)
		Expect(srv.Sync()).To(Succeed())

		// attach the policy to dp0p2 as well
		writeSnapshot(`{
  "vyatta-policy-v1:policy": {
    "vyatta-policy-qos-v1:qos": {
      "profile": [
        {"id": "prof-a", "bandwidth": "10Gbit", "burst": 16000, "period": 10}
      ],
      "ingress-map": [
        {"id": "in-map", "pcp": [{"id": 0, "designation": 0}]}
      ],
      "name": [
        {"id": "P1", "shaper": {
          "frame-overhead": 24, "default": "prof-a",
          "class": [{"id": 1}, {"id": 2}]
        }}
      ]
    }
  },
  "vyatta-interfaces-v1:interfaces": {
    "vyatta-interfaces-dataplane-v1:dataplane": [
      {"tagnode": "dp0p1",
       "vyatta-interfaces-policy-v1:policy": {
         "vyatta-policy-qos-v1:qos": "P1",
         "vyatta-policy-qos-v1:ingress-map": "in-map"
       }},
      {"tagnode": "dp0p2",
       "vyatta-interfaces-policy-v1:policy": {"vyatta-policy-qos-v1:qos": "P1"}}
    ]
  }
}`)
		Expect(srv.Sync()).To(Succeed())

		Expect(actuator.calls).To(HaveLen(2))
		Expect(actuator.calls[1].ifName).To(Equal("dp0p2"))
		Expect(actuator.calls[1].cmds).To(Equal([]string{
			"qos 6 port subports 1 pipes 2 profiles 1 overhead 24",
			"qos 6 pipe 0 0 0",
			"qos 6 enable",
		}))
	})

	It("rejects a snapshot with a dangling reference and keeps the last graph", func() {
		writeSnapshot(serverSnapshot)
		Expect(srv.Sync()).To(Succeed())
		lastGraph := srv.last

		writeSnapshot(`{
  "vyatta-interfaces-v1:interfaces": {
    "vyatta-interfaces-dataplane-v1:dataplane": [
      {"tagnode": "dp0p1",
       "vyatta-interfaces-policy-v1:policy": {"vyatta-policy-qos-v1:qos": "ghost"}}
    ]
  }
}`)
		err := srv.Sync()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("rejecting snapshot"))
		Expect(srv.last).To(BeIdenticalTo(lastGraph))
		Expect(actuator.calls).To(HaveLen(1))
	})

	It("fails the sync when the snapshot file is missing", func() {
		err := srv.Sync()
		Expect(err).To(HaveOccurred())
	})

	It("fails the sync on malformed snapshot JSON", func() {
		writeSnapshot(`{"vyatta-policy-v1:policy": `)
		Expect(srv.Sync()).ToNot(Succeed())
	})

	It("leaves deferred interfaces for a later sync", func() {
		delete(resolver.Ifindexes, "dp0p1")
		writeSnapshot(serverSnapshot)

		Expect(srv.Sync()).To(Succeed())
		Expect(actuator.calls).To(BeEmpty())

		// the interface shows up, next sync provisions it
		resolver.Ifindexes["dp0p1"] = 5
		Expect(srv.Sync()).To(Succeed())
		Expect(actuator.calls).To(HaveLen(1))
		Expect(actuator.calls[0].ifName).To(Equal("dp0p1"))
	})

	It("wraps actuation failures with the interface name", func() {
		writeSnapshot(serverSnapshot)
		actuator.err = os.ErrPermission

		err := srv.Sync()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("dp0p1"))
	})
})
