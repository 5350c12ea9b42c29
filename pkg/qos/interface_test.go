package qos_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	klog "k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/config"
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
	"github.com/nickbroon/vplane-config-qos/pkg/qos"
	"github.com/nickbroon/vplane-config-qos/pkg/qos/testutil"
)

var _ = Describe("Interface tests", func() {
	log := klog.NewKlogr().WithName("qos-test")

	newGraph := func(cfg *config.Config, ifindexes map[string]int) *qos.Config {
		graph, err := qos.NewConfig(cfg, testutil.NewFakeIfindexResolver(ifindexes), log)
		ExpectWithOffset(1, err).ToNot(HaveOccurred())
		return graph
	}

	baseConfig := func() *config.Config {
		return &config.Config{
			GlobalProfiles: []config.Profile{
				{Name: "prof-a", Bandwidth: "10Gbit"},
				{Name: "prof-b", Bandwidth: "5Gbit"},
			},
			IngressMaps: []config.IngressMap{{Name: "in-map"}},
			Policies: []config.Policy{
				{Name: "P1", Shaper: config.Shaper{
					FrameOverhead:  24,
					DefaultProfile: "prof-a",
					Classes:        []config.Class{{ID: 1}, {ID: 2}},
				}},
				{Name: "P2", Shaper: config.Shaper{
					DefaultProfile: "local-x",
					Profiles:       []config.Profile{{Name: "local-x", Bandwidth: "2Gbit"}},
					Classes:        []config.Class{{ID: 1}},
				}},
			},
		}
	}

	Context("shaping command synthesis", func() {
		It("emits port, pipes and enable for a trunk-only interface", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p1", Type: config.InterfaceTypeDataplane, PolicyName: "P1"},
			}
			graph := newGraph(cfg, map[string]int{"dp0p1": 7})

			cmds, ok := graph.FindInterface("dp0p1").Commands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandStrings(cmds)).To(Equal([]string{
				"qos 7 port subports 1 pipes 2 profiles 1 overhead 24",
				"qos 7 pipe 0 0 0",
				"qos 7 enable",
			}))
		})

		It("creates the trunk subport even when only a VLAN carries a policy", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p2", Type: config.InterfaceTypeDataplane,
					VLANs: []config.VLAN{{Tag: 10, PolicyName: "P2"}}},
			}
			graph := newGraph(cfg, map[string]int{"dp0p2": 9})

			ifc := graph.FindInterface("dp0p2")
			Expect(ifc.Subports()).To(HaveLen(2))
			Expect(ifc.Subports()[0].Policy()).To(BeNil())

			cmds, ok := ifc.Commands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandStrings(cmds)).To(Equal([]string{
				"qos 9 port subports 2 pipes 1 profiles 1 overhead 0",
				"qos 9 pipe 1 0 0",
				"qos 9 enable",
			}))
		})

		It("binds class pipes with explicit profiles", func() {
			cfg := baseConfig()
			cfg.Policies = append(cfg.Policies, config.Policy{
				Name: "P3", Shaper: config.Shaper{
					FrameOverhead:  18,
					DefaultProfile: "prof-a",
					Classes: []config.Class{
						{ID: 1, Profile: "prof-b"},
						{ID: 2},
					},
				}})
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p3", Type: config.InterfaceTypeDataplane, PolicyName: "P3"},
			}
			graph := newGraph(cfg, map[string]int{"dp0p3": 4})

			cmds, ok := graph.FindInterface("dp0p3").Commands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandStrings(cmds)).To(Equal([]string{
				"qos 4 port subports 1 pipes 2 profiles 2 overhead 18",
				"qos 4 pipe 0 0 0",
				"qos 4 pipe 0 1 1",
				"qos 4 enable",
			}))
		})

		It("emits nothing for an interface whose policies have no classes", func() {
			cfg := baseConfig()
			cfg.Policies = append(cfg.Policies, config.Policy{
				Name: "empty", Shaper: config.Shaper{DefaultProfile: "prof-a"}})
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p4", Type: config.InterfaceTypeDataplane, PolicyName: "empty"},
			}
			graph := newGraph(cfg, map[string]int{"dp0p4": 3})

			ifc := graph.FindInterface("dp0p4")
			Expect(ifc.MaxPipes()).To(BeZero())
			cmds, ok := ifc.Commands()
			Expect(ok).To(BeTrue())
			Expect(cmds).To(BeEmpty())
		})

		It("emits nothing for an interface with no policy anywhere", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p5", Type: config.InterfaceTypeDataplane},
			}
			graph := newGraph(cfg, map[string]int{"dp0p5": 2})

			cmds, ok := graph.FindInterface("dp0p5").Commands()
			Expect(ok).To(BeTrue())
			Expect(cmds).To(BeEmpty())
		})
	})

	Context("profile indexing", func() {
		vlanConfig := func() *config.Config {
			cfg := baseConfig()
			// both subports reference global prof-a through P1, and the
			// VLAN adds the local profile of P2 on top
			cfg.Policies[1].Shaper.Classes = []config.Class{{ID: 1, Profile: "prof-a"}}
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p1", Type: config.InterfaceTypeDataplane, PolicyName: "P1",
					VLANs: []config.VLAN{{Tag: 10, PolicyName: "P2"}}},
			}
			return cfg
		}

		It("registers globals once across subports, before later locals", func() {
			graph := newGraph(vlanConfig(), map[string]int{"dp0p1": 7})
			ifc := graph.FindInterface("dp0p1")

			Expect(ifc.ProfileIndexSize()).To(BeEquivalentTo(2))
			index, ok := ifc.ProfileIndexGet(qos.ProfileKey{Scope: qos.ScopeGlobal, Name: "prof-a"})
			Expect(ok).To(BeTrue())
			Expect(index).To(BeZero())
			index, ok = ifc.ProfileIndexGet(qos.ProfileKey{Scope: "10", Name: "local-x"})
			Expect(ok).To(BeTrue())
			Expect(index).To(BeEquivalentTo(1))
		})

		It("assigns identical indices across rebuilds of the same snapshot", func() {
			first := newGraph(vlanConfig(), map[string]int{"dp0p1": 7})
			second := newGraph(vlanConfig(), map[string]int{"dp0p1": 7})

			firstCmds, ok := first.FindInterface("dp0p1").Commands()
			Expect(ok).To(BeTrue())
			secondCmds, ok := second.FindInterface("dp0p1").Commands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandStrings(firstCmds)).To(Equal(types.CommandStrings(secondCmds)))
		})
	})

	Context("deferred interfaces", func() {
		It("reports ok false until the ifindex becomes resolvable", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p9", Type: config.InterfaceTypeDataplane, PolicyName: "P1"},
			}
			resolver := testutil.NewFakeIfindexResolver(map[string]int{})
			graph, err := qos.NewConfig(cfg, resolver, log)
			Expect(err).ToNot(HaveOccurred())

			ifc := graph.FindInterface("dp0p9")
			Expect(ifc.Deferred()).To(BeTrue())
			_, ok := ifc.Commands()
			Expect(ok).To(BeFalse())
			Expect(graph.DeferredInterfaces()).To(Equal([]string{"dp0p9"}))

			resolver.Ifindexes["dp0p9"] = 12
			Expect(ifc.Deferred()).To(BeFalse())
			cmds, ok := ifc.Commands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandString(cmds[0])).To(Equal("qos 12 port subports 1 pipes 2 profiles 1 overhead 24"))
		})
	})

	Context("ingress-map bindings", func() {
		It("emits an interface-wide and a per-VLAN binding command", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p1", Type: config.InterfaceTypeDataplane,
					IngressMapName: "in-map",
					VLANs:          []config.VLAN{{Tag: 10, IngressMapName: "in-map"}}},
			}
			graph := newGraph(cfg, map[string]int{"dp0p1": 5})

			cmds, ok := graph.FindInterface("dp0p1").BindingCommands()
			Expect(ok).To(BeTrue())
			Expect(types.CommandStrings(cmds)).To(Equal([]string{
				"qos 5 ingress-map in-map",
				"qos 5 ingress-map in-map vlan 10",
			}))
		})

		It("cross-links bindings into the map", func() {
			cfg := baseConfig()
			cfg.Interfaces = []*config.Interface{
				{Name: "dp0p1", Type: config.InterfaceTypeDataplane, IngressMapName: "in-map"},
			}
			graph := newGraph(cfg, map[string]int{"dp0p1": 5})

			bindings := graph.GetIngressMap("in-map").Bindings()
			Expect(bindings).To(HaveLen(1))
			Expect(bindings[0].Interface()).To(BeIdenticalTo(graph.FindInterface("dp0p1")))
			Expect(bindings[0].Vlan()).To(BeZero())
		})
	})
})
