package matrix

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"quill/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the role → allowed-actions matrix, loaded once from the
// embedded YAML file. It is immutable after construction, so lookups need
// no synchronization.
type Registry struct {
	allowed map[models.Role]map[Action]struct{}
}

// NewRegistry loads the embedded role matrix
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("read role matrix: %w", err)
	}

	var doc roleMatrix
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal role matrix: %w", err)
	}

	r := &Registry{
		allowed: make(map[models.Role]map[Action]struct{}, len(doc.Roles)),
	}

	for _, entry := range doc.Roles {
		role, err := models.ParseRole(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("role matrix: %w", err)
		}
		if _, dup := r.allowed[role]; dup {
			return nil, fmt.Errorf("role matrix: duplicate role %q", entry.Name)
		}

		actions := make(map[Action]struct{}, len(entry.Actions))
		for _, a := range entry.Actions {
			actions[Action(a)] = struct{}{}
		}
		r.allowed[role] = actions
	}

	// Every concrete role must be declared, otherwise gates would silently
	// deny everything for the missing role.
	for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleEditor, models.RoleViewer} {
		if _, ok := r.allowed[role]; !ok {
			return nil, fmt.Errorf("role matrix: missing role %q", role)
		}
	}

	return r, nil
}

// Allows reports whether role may perform action. RoleNone allows nothing.
func (r *Registry) Allows(role models.Role, action Action) bool {
	actions, ok := r.allowed[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}
