package dpkg

import (
	"strings"
)

// Field is a single `Key: value` entry of a control stanza.
//
type Field struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// DebControl is the set of control fields of a debian package, as reported
// by `dpkg-deb --field`.
//
// For more information about each field, check:
// https://www.debian.org/doc/debian-policy/ch-controlfields#list-of-fields
//
type DebControl struct {
	// Name corresponds to the `Package` field, representing the name of
	// the binary package.
	//
	Name string `yaml:"name"`

	// Version is the version of the package in the debian policy format.
	//
	Version string `yaml:"version"`

	SourcePackage string `yaml:"source_package,omitempty"`
	Architecture  string `yaml:"architecture,omitempty"`
	Maintainer    string `yaml:"maintainer,omitempty"`
	Homepage      string `yaml:"homepage,omitempty"`
	Description   string `yaml:"description,omitempty"`

	// Fields holds every field found, in the order they were declared.
	//
	Fields []Field `yaml:"fields,omitempty"`
}

func (c *DebControl) IsFilled() bool {
	return c.Name != "" && c.Version != ""
}

// Get retrieves the value of the field `key` (case-insensitive, as field
// names are in deb-control(5)).
//
func (c *DebControl) Get(key string) (value string, found bool) {
	for _, field := range c.Fields {
		if strings.EqualFold(field.Key, key) {
			value, found = field.Value, true
			return
		}
	}

	return
}

func (c *DebControl) set(key, value string) {
	c.Fields = append(c.Fields, Field{Key: key, Value: value})

	switch key {
	case "Package":
		c.Name = value
	case "Version":
		c.Version = value
	case "Source":
		c.SourcePackage = value
	case "Architecture":
		c.Architecture = value
	case "Maintainer":
		c.Maintainer = value
	case "Homepage":
		c.Homepage = value
	case "Description":
		c.Description = value
	}
}

// appendLine folds a continuation line into the last field seen.
//
func (c *DebControl) appendLine(line string) {
	if len(c.Fields) == 0 {
		return
	}

	last := &c.Fields[len(c.Fields)-1]
	last.Value = last.Value + "\n" + line

	if last.Key == "Description" {
		c.Description = last.Value
	}
}

// ControlString renders the well-known fields in the format of a control
// stanza, terminated by an empty line.
//
func (c DebControl) ControlString() string {
	var b strings.Builder

	write := func(key, value string) {
		if value == "" {
			return
		}

		b.WriteString(key + ": " + value + "\n")
	}

	write("Package", c.Name)
	write("Source", c.SourcePackage)
	write("Architecture", c.Architecture)
	write("Description", c.Description)
	write("Homepage", c.Homepage)
	write("Maintainer", c.Maintainer)
	write("Version", c.Version)

	b.WriteString("\n")

	return b.String()
}
