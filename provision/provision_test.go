package provision_test

import (
	"context"

	"code.cloudfoundry.org/lager/lagertest"
	"github.com/cirocosta/debcheck/dpkg"
	"github.com/cirocosta/debcheck/dpkg/dpkgfakes"
	"github.com/cirocosta/debcheck/provision"
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Provisioner", func() {

	var (
		runner  *dpkgfakes.FakeRunner
		command string
		err     error
	)

	BeforeEach(func() {
		runner = dpkgfakes.NewFakeRunner()
		command = "vagrant provision build"
	})

	JustBeforeEach(func() {
		p := provision.New(lagertest.NewTestLogger("provision"), runner, command)
		err = p.Rebuild(context.Background())
	})

	Context("with a succeeding command", func() {
		BeforeEach(func() {
			runner.On("vagrant provision build", dpkg.Result{})
		})

		It("succeeds", func() {
			Expect(err).ToNot(HaveOccurred())
		})

		It("runs it once", func() {
			Expect(runner.Commands()).To(Equal([]string{"vagrant provision build"}))
		})
	})

	Context("with quoted arguments", func() {
		BeforeEach(func() {
			command = `sh -c "make build-debs"`
			runner.On("sh -c make build-debs", dpkg.Result{})
		})

		It("splits them like a shell would", func() {
			Expect(err).ToNot(HaveOccurred())
			Expect(runner.Invocations[0].Args).To(Equal([]string{"-c", "make build-debs"}))
		})
	})

	Context("with a failing command", func() {
		BeforeEach(func() {
			runner.On("vagrant provision build", dpkg.Result{
				Stderr:   "VM not created",
				ExitCode: 1,
			})
		})

		It("fails carrying stderr", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("VM not created"))
		})
	})

	Context("with a command that can't be started", func() {
		BeforeEach(func() {
			runner.Fail("vagrant provision build", errors.New("executable file not found"))
		})

		It("fails", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with an empty command", func() {
		BeforeEach(func() {
			command = "   "
		})

		It("fails without running anything", func() {
			Expect(err).To(HaveOccurred())
			Expect(runner.Invocations).To(BeEmpty())
		})
	})
})
