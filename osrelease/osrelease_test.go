package osrelease_test

import (
	"strings"

	"github.com/cirocosta/debcheck/osrelease"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const sampleOsRelease = `NAME="Ubuntu"
VERSION="18.04.2 LTS (Bionic Beaver)"
ID=ubuntu
ID_LIKE=debian
PRETTY_NAME="Ubuntu 18.04.2 LTS"
VERSION_ID="18.04"

# comment
VERSION_CODENAME=bionic
UBUNTU_CODENAME=bionic`

var _ = Describe("ScanInfo", func() {

	It("retrieves the distribution", func() {
		Expect(osrelease.ScanInfo(strings.NewReader(sampleOsRelease))).To(Equal(osrelease.OsRelease{
			OS:       "ubuntu",
			Version:  "18.04",
			Codename: "bionic",
		}))
	})

	It("returns nothing on empty content", func() {
		Expect(osrelease.ScanInfo(strings.NewReader(""))).To(BeZero())
	})
})

var _ = Describe("GatherOsRelease", func() {

	It("fails on missing files", func() {
		_, err := osrelease.GatherOsRelease("/this/does/not/exist")
		Expect(err).To(HaveOccurred())
	})
})
