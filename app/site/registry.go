package site

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lysyi3m/html-comb/app/document"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yml", ".yaml", ".json"}

var ErrSiteNotFound = errors.New("site config not found")

type rawSpec struct {
	URL     string   `yaml:"url"`
	Refresh *int     `yaml:"refresh"`
	Alias   string   `yaml:"alias"`
	Items   ItemSpec `yaml:"items"`
}

// Registry loads site configurations from a directory and looks them up by
// alias or URL.
type Registry struct {
	sitesDir string
	sites    map[string]*Spec
	mu       sync.RWMutex
}

func NewRegistry(sitesDir string) *Registry {
	return &Registry{
		sitesDir: sitesDir,
		sites:    make(map[string]*Spec),
	}
}

func (r *Registry) Run() error {
	if _, err := os.Stat(r.sitesDir); os.IsNotExist(err) {
		return nil
	}

	var files []string
	for _, ext := range extensions {
		matches, err := filepath.Glob(filepath.Join(r.sitesDir, "*"+ext))
		if err != nil {
			return fmt.Errorf("failed to find %s files: %w", ext, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, file := range files {
		spec, err := r.LoadFile(file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Site configuration loaded", "site", spec.Name(), "url", spec.URL, "refresh", spec.Refresh)
	}

	return nil
}

// LoadFile parses, resolves and validates one configuration file and stores
// the result, replacing the site previously loaded from the same file. A name
// already taken by another file is an error.
func (r *Registry) LoadFile(file string) (*Spec, error) {
	spec, err := parseSpec(file)
	if err != nil {
		return nil, err
	}

	if err := Validate(spec); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", file, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sites[spec.Name()]; ok && existing.File != file {
		return nil, fmt.Errorf("site name '%s' in %s is already defined in %s", spec.Name(), file, existing.File)
	}
	for name, existing := range r.sites {
		if existing.File == file && name != spec.Name() {
			delete(r.sites, name)
		}
	}
	r.sites[spec.Name()] = spec

	return spec, nil
}

// Reload re-reads the configuration file of an already loaded site, found
// the same way as Find.
func (r *Registry) Reload(aliasOrURL string) (*Spec, error) {
	existing, ok := r.Find(aliasOrURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSiteNotFound, aliasOrURL)
	}
	return r.LoadFile(existing.File)
}

// Find returns the site whose alias or URL equals aliasOrURL. Aliases win
// over URLs.
func (r *Registry) Find(aliasOrURL string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if spec, ok := r.sites[aliasOrURL]; ok {
		return spec, true
	}
	for _, spec := range r.sites {
		if spec.URL == aliasOrURL {
			return spec, true
		}
	}
	return nil, false
}

func (r *Registry) GetSites() map[string]*Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sitesCopy := make(map[string]*Spec, len(r.sites))
	for k, v := range r.sites {
		sitesCopy[k] = v
	}
	return sitesCopy
}

func (r *Registry) GetSiteCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sites)
}

func parseSpec(file string) (*Spec, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// JSON documents are valid YAML, so one decoder covers both formats.
	var raw rawSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	spec := &Spec{
		URL:     strings.TrimSpace(raw.URL),
		Refresh: DefaultRefresh,
		Alias:   raw.Alias,
		Items:   raw.Items,
		File:    file,
	}
	if raw.Refresh != nil {
		spec.Refresh = *raw.Refresh
	}
	if spec.Alias == "" {
		base := filepath.Base(file)
		spec.Alias = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return spec, nil
}

// Validate checks a resolved Spec: URL and the required item paths must be
// set, refresh must be non-negative and every path must compile.
func Validate(spec *Spec) error {
	if spec == nil {
		return fmt.Errorf("spec is nil")
	}
	if spec.URL == "" {
		return fmt.Errorf("site URL is required")
	}
	if spec.Refresh < 0 {
		return fmt.Errorf("refresh must be non-negative")
	}

	required := []struct{ field, path string }{
		{"title", spec.Items.Title},
		{"description", spec.Items.Description},
		{"url", spec.Items.URL},
	}
	for _, r := range required {
		if r.path == "" {
			return fmt.Errorf("items.%s is required", r.field)
		}
	}

	paths := map[string]string{
		"title":       spec.Items.Title,
		"description": spec.Items.Description,
		"url":         spec.Items.URL,
		"pub_date":    spec.Items.PubDate,
		"guid":        spec.Items.GUID,
	}
	if enc := spec.Items.Enclosure; enc != nil {
		if enc.URL == "" {
			return fmt.Errorf("items.enclosure.url is required when enclosure is set")
		}
		paths["enclosure.url"] = enc.URL
		paths["enclosure.length"] = enc.Length
		paths["enclosure.type"] = enc.Type
	}

	for field, path := range paths {
		if path == "" {
			continue
		}
		if _, err := document.Compile(path); err != nil {
			return fmt.Errorf("items.%s: %w", field, err)
		}
	}

	return nil
}
