package catalog

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

type catalogFile struct {
	Modules []Module   `yaml:"modules"`
	Roles   []roleFile `yaml:"roles"`
}

type roleFile struct {
	Name           string   `yaml:"name"`
	DisplayName    string   `yaml:"display_name"`
	Description    string   `yaml:"description"`
	Color          string   `yaml:"color"`
	System         bool     `yaml:"system"`
	AllPermissions bool     `yaml:"all_permissions"`
	Permissions    []string `yaml:"permissions"`
}

// Load decodes a YAML catalog and validates it. Unknown keys are rejected.
//
//	modules:
//	  - name: news
//	    display_name: News
//	    permissions:
//	      - {name: news.view, display_name: View news}
//	roles:
//	  - {name: super-admin, display_name: Super Admin, system: true, all_permissions: true}
//	  - {name: viewer, display_name: Viewer, permissions: [news.view]}
func Load(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(domain.ErrInvalidCatalog, "catalog file is empty")
		}
		return nil, errors.Wrap(domain.ErrInvalidCatalog, err.Error())
	}

	roles := make([]RoleDef, 0, len(file.Roles))
	for _, rf := range file.Roles {
		if rf.AllPermissions && len(rf.Permissions) > 0 {
			return nil, errors.Wrapf(
				domain.ErrInvalidCatalog,
				"role %q sets both all_permissions and permissions",
				rf.Name,
			)
		}
		grant := ExplicitPermissions(rf.Permissions...)
		if rf.AllPermissions {
			grant = AllKnownPermissions()
		}
		roles = append(roles, RoleDef{
			Name:        rf.Name,
			DisplayName: rf.DisplayName,
			Description: rf.Description,
			Color:       rf.Color,
			IsSystem:    rf.System,
			Grant:       grant,
		})
	}

	c := New(NewRegistry(file.Modules...), roles...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads and validates the YAML catalog at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}
	return Load(bytes.NewReader(data))
}
