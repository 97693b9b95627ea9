package report_test

import (
	"bytes"
	"encoding/json"

	"github.com/cirocosta/debcheck/check"
	"github.com/cirocosta/debcheck/osrelease"
	"github.com/cirocosta/debcheck/report"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report", func() {

	const deb = "/tmp/build/securedrop-app-code-0.3.10-amd64.deb"

	var (
		results []check.Result
		r       report.Report
	)

	BeforeEach(func() {
		color.NoColor = true

		results = []check.Result{
			{Check: check.Exists, Package: deb, Status: check.StatusPass},
			{Check: check.Reproducible, Package: deb, Status: check.StatusSkip, Reason: "doesn't match"},
		}
	})

	JustBeforeEach(func() {
		r = report.New(
			osrelease.OsRelease{OS: "ubuntu", Version: "16.04", Codename: "xenial"},
			map[string]string{"securedrop_version": "0.3.10"},
			results,
		)
	})

	Context("with no failures", func() {

		It("passes", func() {
			Expect(r.Passed()).To(BeTrue())
			Expect(r.Failed()).To(BeEmpty())
		})

		It("summarizes", func() {
			var buf bytes.Buffer

			r.Summary(&buf)
			Expect(buf.String()).To(ContainSubstring("PASS exists"))
			Expect(buf.String()).To(ContainSubstring("SKIP reproducible"))
			Expect(buf.String()).To(HaveSuffix("1 passed, 0 failed, 1 skipped\n"))
		})
	})

	Context("with failures", func() {

		BeforeEach(func() {
			results = append(results, check.Result{
				Check:    check.ControlHomepage,
				Package:  deb,
				Status:   check.StatusFail,
				Failures: []string{`expected output to contain "Homepage: https://securedrop.org"`},
			})
		})

		It("doesn't pass", func() {
			Expect(r.Passed()).To(BeFalse())
			Expect(r.Failed()).To(HaveLen(1))
			Expect(r.Totals()).To(HaveKeyWithValue(check.StatusFail, 1))
		})

		It("lists the failures in the summary", func() {
			var buf bytes.Buffer

			r.Summary(&buf)
			Expect(buf.String()).To(ContainSubstring("FAIL control-homepage"))
			Expect(buf.String()).To(ContainSubstring(`     expected output to contain "Homepage: https://securedrop.org"`))
		})
	})

	Describe("serialization", func() {

		It("renders yaml", func() {
			decoded := map[string]interface{}{}
			Expect(yaml.Unmarshal(r.ToYAML(), &decoded)).To(Succeed())
			Expect(decoded).To(HaveKeyWithValue("version", report.Version))
			Expect(decoded["host"]).To(HaveKeyWithValue("codename", "xenial"))
			Expect(decoded["results"]).To(HaveLen(2))
		})

		It("renders json", func() {
			decoded := map[string]interface{}{}
			Expect(json.Unmarshal(r.ToJSON(), &decoded)).To(Succeed())
			Expect(decoded["variables"]).To(HaveKeyWithValue("securedrop_version", "0.3.10"))
		})
	})
})
