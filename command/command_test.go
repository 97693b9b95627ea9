package command

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/cirocosta/debcheck/dpkg"
	"github.com/cirocosta/debcheck/dpkg/dpkgfakes"
	"github.com/cirocosta/debcheck/osrelease"
	"gopkg.in/yaml.v3"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Commands", func() {

	var (
		dir        string
		deb        string
		configFile string
		output     string
		fake       *dpkgfakes.FakeRunner
		original   dpkg.Runner
	)

	BeforeEach(func() {
		var err error

		dir, err = ioutil.TempDir("", "debcheck-command")
		Expect(err).ToNot(HaveOccurred())

		deb = filepath.Join(dir, "securedrop-keyring-0.1.0+0.3.10-amd64.deb")
		Expect(ioutil.WriteFile(deb, []byte("!<arch>\n"), 0644)).To(Succeed())

		configFile = filepath.Join(dir, "debcheck.hcl")
		Expect(ioutil.WriteFile(configFile, []byte(fmt.Sprintf(`
			variables = {
				keyring_version = "0.1.0"
			}

			packages = ["%s/securedrop-keyring-${keyring_version}+${securedrop_version}-amd64.deb"]

			control {
				maintainer   = "SecureDrop Team <securedrop@freedom.press>"
				architecture = "amd64"
			}
		`, dir)), 0644)).To(Succeed())

		output = filepath.Join(dir, "out.yml")

		fake = dpkgfakes.NewFakeRunner()
		fake.On("dpkg --install --dry-run "+deb, dpkg.Result{
			Stdout: "Selecting previously unselected package securedrop-keyring.\n" +
				"Preparing to unpack .../securedrop-keyring-0.1.0+0.3.10-amd64.deb ...\n",
		})
		fake.On("dpkg-deb --field "+deb, dpkg.Result{
			Stdout: "Package: securedrop-keyring\n" +
				"Version: 0.1.0+0.3.10\n" +
				"Architecture: amd64\n" +
				"Maintainer: SecureDrop Team <securedrop@freedom.press>\n",
		})
		fake.On("dpkg-deb --contents "+deb, dpkg.Result{
			Stdout: "drwxr-xr-x root/root 0 2016-06-21 19:05 ./etc/apt/trusted.gpg.d/\n" +
				"-rw-r--r-- root/root 3 2016-06-21 19:05 ./etc/apt/trusted.gpg.d/securedrop-keyring.gpg\n",
		})

		original = runner
		runner = fake
	})

	AfterEach(func() {
		runner = original
		os.RemoveAll(dir)
	})

	Describe("verify", func() {

		var (
			cmd verifyCommand
			err error
		)

		BeforeEach(func() {
			cmd = verifyCommand{
				Config:    configFile,
				Variables: map[string]string{"securedrop_version": "0.3.10"},
				Output:    output,
				Format:    "yaml",
				NoSudo:    true,
				OsRelease: filepath.Join(dir, "os-release"),
			}
		})

		JustBeforeEach(func() {
			err = cmd.Execute(nil)
		})

		Context("with good packages", func() {

			It("succeeds", func() {
				Expect(err).ToNot(HaveOccurred())
			})

			It("writes the report", func() {
				content, err := ioutil.ReadFile(output)
				Expect(err).ToNot(HaveOccurred())

				rep := struct {
					Variables map[string]string        `yaml:"variables"`
					Results   []map[string]interface{} `yaml:"results"`
				}{}
				Expect(yaml.Unmarshal(content, &rep)).To(Succeed())

				Expect(rep.Variables).To(HaveKeyWithValue("keyring_version", "0.1.0"))
				Expect(rep.Results).To(HaveLen(6))

				for _, res := range rep.Results {
					Expect([]interface{}{"pass", "skip"}).To(ContainElement(res["status"]))
				}
			})

			It("doesn't go through sudo", func() {
				Expect(fake.Commands()).To(ContainElement("dpkg --install --dry-run " + deb))
			})
		})

		Context("with a failing check", func() {
			BeforeEach(func() {
				fake.On("dpkg-deb --contents "+deb, dpkg.Result{
					Stdout: "-rw-r--r-- root/root 3 2016-06-21 19:05 ./usr/lib/python2.7/config.py\n",
				})
			})

			It("fails", func() {
				Expect(err).To(HaveOccurred())
			})

			It("still writes the report", func() {
				content, err := ioutil.ReadFile(output)
				Expect(err).ToNot(HaveOccurred())
				Expect(string(content)).To(ContainSubstring("forbidden (config)"))
			})
		})

		Context("missing a variable", func() {
			BeforeEach(func() {
				cmd.Variables = nil
			})

			It("fails before running anything", func() {
				Expect(err).To(HaveOccurred())
				Expect(fake.Invocations).To(BeEmpty())
			})
		})

		Context("with an unknown check", func() {
			BeforeEach(func() {
				cmd.Checks = []string{"lintian"}
			})

			It("fails", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with no os-release file given", func() {
			BeforeEach(func() {
				cmd.OsRelease = ""
			})

			It("identifies the distribution through the default file", func() {
				Expect(err).ToNot(HaveOccurred())
				Expect(cmd.osReleaseFile()).To(Equal(osrelease.DefaultFilename))
			})
		})
	})

	Describe("packages", func() {

		It("lists paths and names", func() {
			cmd := packagesCommand{
				Config:    configFile,
				Variables: map[string]string{"securedrop_version": "0.3.10"},
				Output:    output,
			}

			Expect(cmd.Execute(nil)).To(Succeed())

			content, err := ioutil.ReadFile(output)
			Expect(err).ToNot(HaveOccurred())

			refs := []packageRef{}
			Expect(yaml.Unmarshal(content, &refs)).To(Succeed())
			Expect(refs).To(Equal([]packageRef{{Path: deb, Name: "securedrop-keyring"}}))
		})
	})

	Describe("fields", func() {

		It("writes the parsed control fields", func() {
			cmd := fieldsCommand{Output: output}
			cmd.Args.Package = deb

			Expect(cmd.Execute(nil)).To(Succeed())

			content, err := ioutil.ReadFile(output)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("name: securedrop-keyring"))
		})

		It("writes them back as a control stanza", func() {
			cmd := fieldsCommand{Output: output, Format: "control"}
			cmd.Args.Package = deb

			Expect(cmd.Execute(nil)).To(Succeed())

			content, err := ioutil.ReadFile(output)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal("Package: securedrop-keyring\n" +
				"Architecture: amd64\n" +
				"Maintainer: SecureDrop Team <securedrop@freedom.press>\n" +
				"Version: 0.1.0+0.3.10\n\n"))
		})

		It("fails for packages lacking a name or version", func() {
			fake.On("dpkg-deb --field "+deb, dpkg.Result{Stdout: "Package: securedrop-keyring\n"})

			cmd := fieldsCommand{Output: output}
			cmd.Args.Package = deb

			Expect(cmd.Execute(nil)).ToNot(Succeed())
		})

		It("fails when dpkg-deb does", func() {
			cmd := fieldsCommand{Output: output}
			cmd.Args.Package = filepath.Join(dir, "other-1.deb")

			Expect(cmd.Execute(nil)).ToNot(Succeed())
		})
	})

	Describe("contents", func() {

		It("writes the parsed listing", func() {
			cmd := contentsCommand{Output: output}
			cmd.Args.Package = deb

			Expect(cmd.Execute(nil)).To(Succeed())

			content, err := ioutil.ReadFile(output)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("path: ./etc/apt/trusted.gpg.d/securedrop-keyring.gpg"))
			Expect(string(content)).To(ContainSubstring("path: ./etc/apt/trusted.gpg.d/\n"))
		})

		It("leaves directories out when asked to", func() {
			cmd := contentsCommand{Output: output, FilesOnly: true}
			cmd.Args.Package = deb

			Expect(cmd.Execute(nil)).To(Succeed())

			content, err := ioutil.ReadFile(output)
			Expect(err).ToNot(HaveOccurred())

			entries := []dpkg.Entry{}
			Expect(yaml.Unmarshal(content, &entries)).To(Succeed())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Path).To(Equal("./etc/apt/trusted.gpg.d/securedrop-keyring.gpg"))
		})
	})
})
