// Package catalog loads the role to destination mapping from YAML.
//
//	roles:
//	  agent:
//	    - name: Agency App
//	      description: Manage agency details and orders
//	      url: https://agency.example.com
//	      icon: building
//	      color: from-blue-600 to-indigo-600
package catalog

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

type file struct {
	Roles map[string][]domain.Destination `yaml:"roles"`
}

// Load returns the built-in catalog when path is empty, otherwise the
// catalog parsed from path.
func Load(path string) (domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and checks a YAML catalog. Roles outside the closed set and
// destinations without a name or an absolute URL are rejected.
func Parse(raw []byte) (domain.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	out := make(domain.Catalog, len(f.Roles))
	for name, dests := range f.Roles {
		role := domain.Role(name)
		if !role.Known() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidCatalog, name)
		}
		for i, d := range dests {
			if d.Name == "" {
				return nil, fmt.Errorf("%w: %s[%d]: name is required", domain.ErrInvalidCatalog, name, i)
			}
			u, err := url.Parse(d.URL)
			if err != nil || !u.IsAbs() || u.Host == "" {
				return nil, fmt.Errorf("%w: %s[%d]: url must be absolute", domain.ErrInvalidCatalog, name, i)
			}
		}
		out[role] = dests
	}
	return out, nil
}
