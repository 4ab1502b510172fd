package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/vdmx/riskintel/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Catalog is one immutable snapshot of the package catalog and its
// requirement sets. Snapshots are swapped whole; lookups never see a
// partially applied override.
type Catalog struct {
	Packages     []Package
	Requirements map[string]RequirementSet
}

// Holder serves catalog lookups and supports hot-reloading overrides from a
// yaml file. Without a file it serves the compiled-in defaults.
type Holder struct {
	current atomic.Value // holds Catalog
	log     *zap.Logger
}

type fileCatalog struct {
	Packages     []Package                 `mapstructure:"packages"`
	Requirements map[string]RequirementSet `mapstructure:"requirements"`
}

func Default() Catalog {
	return Catalog{
		Packages:     defaultPackages(),
		Requirements: defaultRequirements(),
	}
}

// NewHolder loads the catalog, applying overrides from path when present.
// Invalid override files are ignored with a log line; the previous snapshot
// keeps serving.
func NewHolder(path string, log *zap.Logger) (*Holder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Holder{log: log.Named("catalog")}
	h.current.Store(Default())

	path = strings.TrimSpace(path)
	if path == "" {
		return h, nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return h, nil
	}

	if err := h.apply(v); err != nil {
		return nil, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := h.apply(v); err != nil {
			h.log.Warn("catalog reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		h.log.Info("catalog reloaded", zap.String("file", e.Name))
	})

	return h, nil
}

func (h *Holder) apply(v *viper.Viper) error {
	var overrides fileCatalog
	if err := v.Unmarshal(&overrides); err != nil {
		return err
	}

	next := Default()
	if len(overrides.Packages) > 0 {
		next.Packages = overrides.Packages
	}
	for id, reqs := range overrides.Requirements {
		reqs.PackageID = id
		next.Requirements[id] = reqs
	}
	if err := validateCatalog(next); err != nil {
		return err
	}

	h.current.Store(next)
	return nil
}

func validateCatalog(c Catalog) error {
	seen := make(map[string]bool, len(c.Packages))
	for _, p := range c.Packages {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return errors.New("package with empty id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate package id %q", id)
		}
		seen[id] = true
		if p.Price <= 0 {
			return fmt.Errorf("package %q has non-positive price", id)
		}
		if _, ok := c.Requirements[id]; !ok {
			return fmt.Errorf("package %q has no requirement set", id)
		}
	}
	for id, reqs := range c.Requirements {
		if reqs.SkipUpload && len(reqs.Documents) > 0 {
			return fmt.Errorf("requirement set %q skips upload but lists documents", id)
		}
		fieldNames := make(map[string]bool, len(reqs.Fields))
		for _, f := range reqs.Fields {
			if fieldNames[f.Name] {
				return fmt.Errorf("requirement set %q has duplicate field %q", id, f.Name)
			}
			fieldNames[f.Name] = true
			if f.Type == "select" && len(f.Options) == 0 {
				return fmt.Errorf("requirement set %q field %q is a select without options", id, f.Name)
			}
		}
		docIDs := make(map[string]bool, len(reqs.Documents))
		for _, d := range reqs.Documents {
			if docIDs[d.ID] {
				return fmt.Errorf("requirement set %q has duplicate document %q", id, d.ID)
			}
			docIDs[d.ID] = true
		}
	}
	return nil
}

func (h *Holder) snapshot() Catalog {
	return h.current.Load().(Catalog)
}

// List returns the publicly purchasable packages in catalog order.
func (h *Holder) List() []Package {
	var out []Package
	for _, p := range h.snapshot().Packages {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

func (h *Holder) GetPackage(id string) (Package, error) {
	for _, p := range h.snapshot().Packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, ErrPackageNotFound
}

// Price returns the expected charge for a package in minor units.
func (h *Holder) Price(id string) (int64, error) {
	pkg, err := h.GetPackage(id)
	if err != nil {
		return 0, err
	}
	return pkg.Price, nil
}

func (h *Holder) GetRequirements(id string) (RequirementSet, error) {
	reqs, ok := h.snapshot().Requirements[id]
	if !ok {
		return RequirementSet{}, ErrPackageNotFound
	}
	return reqs, nil
}

// IsUploadRequired reports whether the documents step exists for a package.
func (h *Holder) IsUploadRequired(id string) (bool, error) {
	reqs, err := h.GetRequirements(id)
	if err != nil {
		return false, err
	}
	return !reqs.SkipUpload && len(reqs.Documents) > 0, nil
}

// ExtraRequiredDocuments returns document ids that are mandatory for the
// package beyond the per-document Required flags.
func (h *Holder) ExtraRequiredDocuments(id string) []string {
	return extraRequiredDocuments[id]
}

var Module = fx.Module("catalog",
	fx.Provide(provideHolder),
)

func provideHolder(cfg config.Config, log *zap.Logger) (*Holder, error) {
	return NewHolder(cfg.CatalogPath, log)
}
