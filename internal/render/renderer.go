// Package render executes the output templates for each projection kind.
//
// The templates ship embedded in the binary and may be replaced wholesale by
// pointing Options.Dir at a directory holding files with the same names:
//
//	osconfig.tmpl
//	network-config.tmpl
//	user-data.tmpl
//	meta-data.tmpl
//	unattend.xml.tmpl
//
// Templates are parsed once by New. Rendering is buffered, so a failing
// execution returns an error and no bytes.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"evalgo.org/hostconf/internal/projection"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var (
	// ErrTemplateMissing is returned by New when a kind has no template.
	ErrTemplateMissing = errors.New("template missing")

	// ErrRender wraps template execution failures.
	ErrRender = errors.New("render failed")
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeYAML = "text/yaml; charset=utf-8"
	ContentTypeXML  = "application/xml; charset=utf-8"
)

var templateFiles = map[projection.Kind]string{
	projection.KindOSConfig:      "osconfig.tmpl",
	projection.KindNetworkConfig: "network-config.tmpl",
	projection.KindUserData:      "user-data.tmpl",
	projection.KindMetaData:      "meta-data.tmpl",
	projection.KindUnattend:      "unattend.xml.tmpl",
}

var contentTypes = map[projection.Kind]string{
	projection.KindOSConfig:      ContentTypeText,
	projection.KindNetworkConfig: ContentTypeYAML,
	projection.KindUserData:      ContentTypeYAML,
	projection.KindMetaData:      ContentTypeYAML,
	projection.KindUnattend:      ContentTypeXML,
}

// ContentType returns the media type served for kind.
func ContentType(kind projection.Kind) (string, error) {
	ct, ok := contentTypes[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", projection.ErrUnknownKind, kind)
	}
	return ct, nil
}

// Options configures a Renderer.
type Options struct {
	// Dir overrides the embedded templates when set
	Dir string
}

// Renderer holds one parsed template per kind. It is safe for concurrent use.
type Renderer struct {
	templates map[projection.Kind]*template.Template
	source    string
}

// New parses the template of every kind.
func New(opts Options) (*Renderer, error) {
	var fsys fs.FS
	source := "embedded"
	if opts.Dir != "" {
		info, err := os.Stat(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("templates directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("templates directory: %s is not a directory", opts.Dir)
		}
		fsys = os.DirFS(opts.Dir)
		source = opts.Dir
	} else {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	r := &Renderer{
		templates: make(map[projection.Kind]*template.Template, len(templateFiles)),
		source:    source,
	}
	for _, kind := range projection.Kinds() {
		name := templateFiles[kind]
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s in %s", ErrTemplateMissing, name, source)
			}
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tmpl, err := template.New(name).
			Funcs(funcMap()).
			Option("missingkey=error").
			Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[kind] = tmpl
	}

	return r, nil
}

// Source describes where the templates were loaded from.
func (r *Renderer) Source() string {
	return r.source
}

// Render executes the template for kind against view and returns the
// document with its content type.
func (r *Renderer) Render(kind projection.Kind, view projection.View) ([]byte, string, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", projection.ErrUnknownKind, kind)
	}
	if view == nil || view.Kind() != kind {
		return nil, "", fmt.Errorf("%w: %s template given %s view", ErrRender, kind, kindOf(view))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrRender, kind, err)
	}
	return buf.Bytes(), contentTypes[kind], nil
}

func kindOf(view projection.View) string {
	if view == nil {
		return "nil"
	}
	return string(view.Kind())
}
