package config

import (
	"bufio"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hcl/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

var variablesSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "variables"},
	},
}

// ParseFile parses the configuration at `filename`, picking the format from
// its extension: `.yml` and `.yaml` are test-vars files, anything else is
// HCL.
//
func ParseFile(filename string, vars map[string]string) (cfg *Config, err error) {
	var content []byte

	content, err = ioutil.ReadFile(filename)
	if err != nil {
		err = errors.Wrapf(err, "failed reading config file %s", filename)
		return
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yml", ".yaml":
		return ParseVars(content, filename, vars)
	default:
		return Parse(content, filename, vars)
	}
}

// Parse parses the contents of a given HCL file `filename`, interpolating
// variables (both the ones declared in the file and `vars`, which take
// precedence), performing not only syntax, but also semantic checks.
//
func Parse(content []byte, filename string, vars map[string]string) (cfg *Config, err error) {
	f, diags := hclsyntax.ParseConfig(content, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to parse")
		return
	}

	declared, err := declaredVariables(f.Body)
	if err != nil {
		return
	}

	cfg = new(Config)

	diags = gohcl.DecodeBody(f.Body, createEvalContext(merge(declared, vars)), cfg)
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to decode")
		return
	}

	cfg.Variables = merge(declared, vars)
	cfg.setDefaults()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrapf(err, "invalid config %s", filename)
		return
	}

	return
}

// declaredVariables evaluates the `variables` attribute on its own so that
// its values can be referenced by the rest of the body.
//
func declaredVariables(body hcl.Body) (vars map[string]string, err error) {
	content, _, diags := body.PartialContent(variablesSchema)
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to retrieve variables")
		return
	}

	vars = map[string]string{}

	attr, found := content.Attributes["variables"]
	if !found {
		return
	}

	diags = gohcl.DecodeExpression(attr.Expr, nil, &vars)
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to decode variables")
		return
	}

	return
}

// RenderTemplate interpolates `vars` into an HCL template string (e.g.,
// `securedrop-app-code-${securedrop_version}-amd64.deb`).
//
func RenderTemplate(tmpl string, vars map[string]string) (res string, err error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(tmpl), "template", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to parse template `%s`", tmpl)
		return
	}

	val, diags := expr.Value(createEvalContext(vars))
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to render template `%s`", tmpl)
		return
	}

	if val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		err = errors.Errorf("template `%s` didn't render to a string", tmpl)
		return
	}

	res = val.AsString()
	return
}

func merge(maps ...map[string]string) map[string]string {
	res := map[string]string{}

	for _, m := range maps {
		for k, v := range m {
			res[k] = v
		}
	}

	return res
}

type Lines struct {
	lines []string
}

func NewLines(content string) (l *Lines) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	l = new(Lines)

	for scanner.Scan() {
		l.lines = append(l.lines, scanner.Text())
	}

	return
}

func (l *Lines) At(i int) string {
	return l.lines[i]
}

func (l *Lines) AddLineAt(i int, line string) {
	if i > len(l.lines) {
		i = len(l.lines)
	}

	l.lines = append(l.lines[:i], append([]string{line}, l.lines[i:]...)...)
}

func (l *Lines) String() string {
	return strings.Join(l.lines, "\n")
}

func PrettyDiagnosticFile(filename string, diag *hcl.Diagnostic) (res string) {
	file, err := os.Open(filename)
	if err != nil {
		return diag.Error()
	}

	defer file.Close()

	content, err := ioutil.ReadAll(file)
	if err != nil {
		return diag.Error()
	}

	return PrettyDiagnostic(string(content), diag)
}

// PrettyDiagnostic generates a human-readable pretty diagnostic, pointing
// at the offending range with carets right below it.
//
func PrettyDiagnostic(content string, diag *hcl.Diagnostic) (res string) {
	if diag.Subject == nil {
		return diag.Error()
	}

	var (
		lines     = NewLines(content)
		red       = color.New(color.FgRed, color.Bold).SprintFunc()
		lineBytes = []byte{}
	)

	for i := 1; i < diag.Subject.Start.Column; i++ {
		lineBytes = append(lineBytes, ' ')
	}

	for i := diag.Subject.Start.Column; i < diag.Subject.End.Column; i++ {
		lineBytes = append(lineBytes, '^')
	}

	lines.AddLineAt(diag.Subject.End.Line, red(string(lineBytes)))

	res = lines.String() + "\n" + red(diag.Summary+": "+diag.Detail)
	return
}

func createEvalContext(vars map[string]string) *hcl.EvalContext {
	var variables = map[string]cty.Value{}

	for key, value := range vars {
		variables[key] = cty.StringVal(value)
	}

	return &hcl.EvalContext{Variables: variables}
}
