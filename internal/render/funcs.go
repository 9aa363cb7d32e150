package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"text/template"

	shellquote "github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"evalgo.org/hostconf/models"
)

// funcMap returns the helpers available to built-in and directory templates.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"yaml":       yamlScalar,
		"yamlNumber": yamlNumber,
		"xml":        xmlEscape,
		"shq":        shellQuote,
		"netmac":     models.NormalizeMAC,
		"winmac":     windowsMAC,
		"winprefix":  windowsPrefix,
		"pwtype":     passwordType,
		"indent":     indent,
		"default":    defaultString,
		"inc":        func(i int) int { return i + 1 },
	}
}

// escapeFuncMap is the reduced helper set for caller-supplied templates.
func escapeFuncMap() template.FuncMap {
	return template.FuncMap{
		"yaml": yamlScalar,
		"xml":  xmlEscape,
	}
}

// yamlScalar renders s as a YAML scalar that reads back as the same string.
// Multi-line values are double quoted so they stay on one line.
func yamlScalar(s string) (string, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsAny(s, "\r\n") {
		node.Style = yaml.DoubleQuotedStyle
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// yamlNumber renders integer text bare and anything else as a quoted scalar.
func yamlNumber(s string) (string, error) {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s, nil
	}
	return yamlScalar(s)
}

func xmlEscape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shellQuote(s string) string {
	return shellquote.Join(s)
}

// windowsMAC formats a MAC the way Windows setup identifies interfaces
// (AA-BB-CC-DD-EE-FF).
func windowsMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, ":", "-"))
}

func windowsPrefix(to string) string {
	if to == "default" {
		return "0.0.0.0/0"
	}
	return to
}

// passwordType tells cloud-init whether a password is a crypt(3) hash.
func passwordType(pw string) string {
	if strings.HasPrefix(pw, "$") {
		return "hash"
	}
	return "text"
}

func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

func defaultString(def, s string) string {
	if s == "" {
		return def
	}
	return s
}
