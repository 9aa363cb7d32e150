// Package provision resolves a client MAC address to its rendered
// provisioning document.
//
// A Service is built once from a validated inventory and is then read-only:
// every method is safe for concurrent use and no call mutates shared state.
// The HTTP layer and the CLI both go through a Service, so a document served
// over the network and one printed by `hostconf render` are identical.
package provision

import (
	"context"
	"errors"
	"fmt"

	"evalgo.org/hostconf/internal/config"
	"evalgo.org/hostconf/internal/inventory"
	"evalgo.org/hostconf/internal/projection"
	"evalgo.org/hostconf/internal/render"
	"evalgo.org/hostconf/models"
)

var (
	// ErrInvalidMAC is returned when the requested address is not a MAC.
	ErrInvalidMAC = errors.New("invalid MAC address")

	// ErrHostNotFound is returned when no interface declares the MAC.
	ErrHostNotFound = errors.New("host not found")

	// ErrUnknownField is returned by Field for names outside RawFields.
	ErrUnknownField = errors.New("unknown field")

	// ErrCustomDisabled is returned by LookupCustom unless custom templates
	// are enabled.
	ErrCustomDisabled = errors.New("custom templates are disabled")
)

// RawFields are the host fields served verbatim by Field.
var RawFields = []string{"install", "install_to", "config"}

// Options configures a Service.
type Options struct {
	// MACPolicy selects how request MACs are matched against the inventory
	MACPolicy inventory.MACPolicy

	// Projection is passed to every projection
	Projection projection.Options

	// Render locates the templates
	Render render.Options

	// AllowCustomTemplates enables LookupCustom
	AllowCustomTemplates bool

	// Custom bounds caller-supplied templates
	Custom render.CustomOptions
}

// OptionsFromConfig maps the render and inventory settings onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := inventory.ParseMACPolicy(cfg.Inventory.MACPolicy)
	if err != nil {
		return Options{}, err
	}

	return Options{
		MACPolicy:            policy,
		Projection:           projection.Options{ExposeIsRouter: cfg.Render.ExposeIsRouter},
		Render:               render.Options{Dir: cfg.Render.TemplatesDir},
		AllowCustomTemplates: cfg.Render.AllowCustomTemplates,
		Custom: render.CustomOptions{
			MaxTemplateBytes: cfg.Render.CustomTemplateMaxBytes,
			MaxOutputBytes:   cfg.Render.CustomOutputMaxBytes,
			Timeout:          cfg.Render.CustomTimeout,
		},
	}, nil
}

// Result is a rendered document.
type Result struct {
	Hostname    string
	Body        []byte
	ContentType string
}

// Stats summarizes the loaded inventory.
type Stats struct {
	Hosts      int `json:"hosts"`
	Interfaces int `json:"interfaces"`
	MACs       int `json:"macs"`
	Conflicts  int `json:"conflicts"`
}

// Service ties the index, projector and renderer together.
type Service struct {
	doc      *models.Document
	index    *inventory.Index
	renderer *render.Renderer
	opts     Options
}

// New builds the index and parses the templates. Template errors are
// returned here so a broken deployment fails at startup.
func New(doc *models.Document, opts Options) (*Service, error) {
	if doc == nil {
		return nil, errors.New("provision: nil inventory")
	}

	renderer, err := render.New(opts.Render)
	if err != nil {
		return nil, err
	}

	return &Service{
		doc:      doc,
		index:    inventory.NewIndex(doc, opts.MACPolicy),
		renderer: renderer,
		opts:     opts,
	}, nil
}

// Lookup renders the document of kind for the host owning mac.
func (s *Service) Lookup(ctx context.Context, kind projection.Kind, mac string) (*Result, error) {
	host, err := s.resolve(ctx, mac)
	if err != nil {
		return nil, err
	}

	view, err := projection.Project(kind, host, s.opts.Projection)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, contentType, err := s.renderer.Render(kind, view)
	if err != nil {
		return nil, err
	}

	return &Result{Hostname: host.Name, Body: body, ContentType: contentType}, nil
}

// Field returns one raw host field as plain text.
func (s *Service) Field(ctx context.Context, name, mac string) (*Result, error) {
	var get func(*models.Host) string
	switch name {
	case "install":
		get = func(h *models.Host) string { return h.Install }
	case "install_to":
		get = func(h *models.Host) string { return h.InstallTo }
	case "config":
		get = func(h *models.Host) string { return h.Config }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	host, err := s.resolve(ctx, mac)
	if err != nil {
		return nil, err
	}

	return &Result{
		Hostname:    host.Name,
		Body:        []byte(get(host)),
		ContentType: render.ContentTypeText,
	}, nil
}

// LookupCustom renders a caller-supplied template against the unattend view
// of the host owning mac.
func (s *Service) LookupCustom(ctx context.Context, mac string, body []byte) (*Result, error) {
	if !s.opts.AllowCustomTemplates {
		return nil, ErrCustomDisabled
	}

	host, err := s.resolve(ctx, mac)
	if err != nil {
		return nil, err
	}

	view, err := projection.Project(projection.KindUnattend, host, s.opts.Projection)
	if err != nil {
		return nil, err
	}

	out, err := render.RenderCustom(ctx, body, view, s.opts.Custom)
	if err != nil {
		return nil, err
	}

	return &Result{Hostname: host.Name, Body: out, ContentType: render.ContentTypeXML}, nil
}

// CustomTemplatesEnabled reports whether LookupCustom is available.
func (s *Service) CustomTemplatesEnabled() bool {
	return s.opts.AllowCustomTemplates
}

// Index returns the MAC index.
func (s *Service) Index() *inventory.Index {
	return s.index
}

// Document returns the inventory. Callers must not modify it.
func (s *Service) Document() *models.Document {
	return s.doc
}

// TemplateSource describes where the templates were loaded from.
func (s *Service) TemplateSource() string {
	return s.renderer.Source()
}

// Stats returns inventory counts.
func (s *Service) Stats() Stats {
	return Stats{
		Hosts:      len(s.doc.Hosts),
		Interfaces: s.doc.InterfaceCount(),
		MACs:       s.index.Len(),
		Conflicts:  len(s.index.Conflicts()),
	}
}

func (s *Service) resolve(ctx context.Context, mac string) (*models.Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !models.ValidMAC(mac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	host, ok := s.index.Resolve(mac)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, mac)
	}
	return host, nil
}
