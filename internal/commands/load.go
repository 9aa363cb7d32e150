package commands

import (
	"evalgo.org/hostconf/internal/config"
	"evalgo.org/hostconf/internal/inventory"
	"evalgo.org/hostconf/internal/provision"
	"evalgo.org/hostconf/models"
)

// loadService reads and validates the inventory named by cfg and builds a
// provisioning service over it. adjust, when set, may change the options
// derived from cfg.
func loadService(cfg *config.Config, adjust func(*provision.Options)) (*provision.Service, *models.Document, error) {
	doc, err := inventory.Load(cfg.Inventory.Path)
	if err != nil {
		return nil, nil, err
	}

	opts, err := provision.OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if adjust != nil {
		adjust(&opts)
	}

	svc, err := provision.New(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	return svc, doc, nil
}
