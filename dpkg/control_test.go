package dpkg_test

import (
	"github.com/cirocosta/debcheck/dpkg"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("DebControl", func() {

	Describe("ControlString", func() {

		It("does the right thing", func() {
			res := (dpkg.DebControl{
				Name:          "software-properties-common",
				Version:       "0.96.24.32.9",
				SourcePackage: "software-properties",
				Architecture:  "all",
				Maintainer:    "Michael Vogt <michael.vogt@ubuntu.com>",
				Description:   "manage the repositories that you install software from (common)",
			}).ControlString()
			Expect(res).To(Equal(`Package: software-properties-common
Source: software-properties
Architecture: all
Description: manage the repositories that you install software from (common)
Maintainer: Michael Vogt <michael.vogt@ubuntu.com>
Version: 0.96.24.32.9

`))
		})
	})

	Describe("Get", func() {

		It("is case-insensitive", func() {
			c := dpkg.DebControl{Fields: []dpkg.Field{{Key: "Homepage", Value: "https://securedrop.org"}}}

			v, found := c.Get("homepage")
			Expect(found).To(BeTrue())
			Expect(v).To(Equal("https://securedrop.org"))

			_, found = c.Get("Maintainer")
			Expect(found).To(BeFalse())
		})
	})

})
