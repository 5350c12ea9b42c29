package dataplane_test

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	klog "k8s.io/klog/v2"

	"github.com/nickbroon/vplane-config-qos/pkg/dataplane"
	"github.com/nickbroon/vplane-config-qos/pkg/dataplane/types"
	"github.com/nickbroon/vplane-config-qos/pkg/utils"
)

func getLastModifiedTime(path string) time.Time {
	fInfo, err := os.Lstat(path)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return fInfo.ModTime()
}

var _ = Describe("Actuator file writer tests", Ordered, func() {
	var tempDir string
	var logger klog.Logger
	var actuator dataplane.Actuator

	cmds := []types.Command{
		types.NewPortCommandBuilder().
			WithIfindex(5).WithSubports(1).WithPipes(2).WithProfiles(1).WithOverhead(24).
			Build(),
		types.NewPipeCommandBuilder().
			WithIfindex(5).WithSubport(0).WithPipe(0).WithProfile(0).
			Build(),
		types.NewEnableCommand(5),
	}
	expectedFileContent := `qos 5 port subports 1 pipes 2 profiles 1 overhead 24
qos 5 pipe 0 0 0
qos 5 enable
`

	BeforeAll(func() {
		// init logger
		fs := flag.NewFlagSet("test-flag-set", flag.PanicOnError)
		klog.InitFlags(fs)
		Expect(fs.Set("v", "8")).ToNot(HaveOccurred())
		logger = klog.NewKlogr().WithName("actuator-file-writer-test")
		DeferCleanup(klog.Flush)
		By("Logger initialized")

		// create temp dir
		tempDir = GinkgoT().TempDir()
		By(fmt.Sprintf("Generated temp dir for test: %s", tempDir))
	})

	Context("Actuator file writer with bad path", func() {
		It("fails to actuate on non existent dir", func() {
			nonExistentDir := filepath.Join(tempDir, "does", "not", "exist")
			actuator = dataplane.NewActuatorFileWriterImpl(nonExistentDir, logger)
			err := actuator.Actuate("dp0p1", cmds)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Actuator file writer with valid path", func() {
		var cmdFilePath string

		BeforeEach(func() {
			cmdFilePath = filepath.Join(tempDir, "dp0p1")
			exist, err := utils.PathExists(cmdFilePath)
			Expect(err).ToNot(HaveOccurred())
			Expect(exist).To(BeFalse())
			actuator = dataplane.NewActuatorFileWriterImpl(tempDir, logger)
		})

		AfterEach(func() {
			exist, err := utils.PathExists(cmdFilePath)
			Expect(err).ToNot(HaveOccurred())
			if exist {
				Expect(os.Remove(cmdFilePath)).ToNot(HaveOccurred())
			}
		})

		It("writes commands to a per-interface file when it does not exist", func() {
			err := actuator.Actuate("dp0p1", cmds)
			Expect(err).ToNot(HaveOccurred())

			content, err := os.ReadFile(cmdFilePath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(BeEquivalentTo(expectedFileContent))
		})

		It("updates the file when the command sequence changed", func() {
			err := actuator.Actuate("dp0p1", cmds)
			Expect(err).ToNot(HaveOccurred())

			updated := append(cmds[:len(cmds)-1:len(cmds)-1],
				types.NewPipeCommandBuilder().
					WithIfindex(5).WithSubport(0).WithPipe(1).WithProfile(1).
					Build(),
				types.NewEnableCommand(5))

			err = actuator.Actuate("dp0p1", updated)
			Expect(err).ToNot(HaveOccurred())

			content, err := os.ReadFile(cmdFilePath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(BeEquivalentTo(`qos 5 port subports 1 pipes 2 profiles 1 overhead 24
qos 5 pipe 0 0 0
qos 5 pipe 0 1 1
qos 5 enable
`))
		})

		It("does not rewrite the file when the same commands are provided", func() {
			err := actuator.Actuate("dp0p1", cmds)
			Expect(err).ToNot(HaveOccurred())

			firstModified := getLastModifiedTime(cmdFilePath)

			err = actuator.Actuate("dp0p1", cmds)
			Expect(err).ToNot(HaveOccurred())

			lastModified := getLastModifiedTime(cmdFilePath)

			Expect(firstModified.Equal(lastModified)).To(BeTrue())
		})

		It("keeps interfaces in separate files", func() {
			err := actuator.Actuate("dp0p1", cmds)
			Expect(err).ToNot(HaveOccurred())
			err = actuator.Actuate("dp0p2", []types.Command{types.NewEnableCommand(6)})
			Expect(err).ToNot(HaveOccurred())

			otherPath := filepath.Join(tempDir, "dp0p2")
			content, err := os.ReadFile(otherPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(BeEquivalentTo("qos 6 enable\n"))
			Expect(os.Remove(otherPath)).ToNot(HaveOccurred())
		})
	})
})
