// Package admin exposes a small, explicit registry of entities for the
// moderation endpoints: each entry names its table, the columns shown in
// listings and the columns searched. The list is built once at process
// start; nothing is discovered at runtime.
package admin

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Entity describes one administered table.
type Entity struct {
	Name          string
	Table         string
	DisplayFields []string
	SearchFields  []string
}

// Registry holds the administered entities in declaration order.
type Registry struct {
	db       *gorm.DB
	entities []Entity
	byName   map[string]Entity
}

// New builds the registry over the given database handle.
func New(db *gorm.DB) *Registry {
	entities := []Entity{
		{
			Name:          "users",
			Table:         "users",
			DisplayFields: []string{"id", "username", "email", "first_name", "last_name", "role"},
			SearchFields:  []string{"username", "email"},
		},
		{
			Name:          "tags",
			Table:         "tags",
			DisplayFields: []string{"id", "name", "color", "slug"},
			SearchFields:  []string{"name", "slug"},
		},
		{
			Name:          "ingredients",
			Table:         "ingredients",
			DisplayFields: []string{"id", "name", "measurement_unit"},
			SearchFields:  []string{"name"},
		},
		{
			Name:          "recipes",
			Table:         "recipes",
			DisplayFields: []string{"id", "name", "author_id", "cooking_time", "created_at"},
			SearchFields:  []string{"name"},
		},
		{
			Name:          "favorites",
			Table:         "favorites",
			DisplayFields: []string{"id", "user_id", "recipe_id"},
		},
		{
			Name:          "shopping_carts",
			Table:         "shopping_carts",
			DisplayFields: []string{"id", "user_id", "recipe_id"},
		},
		{
			Name:          "subscriptions",
			Table:         "subscriptions",
			DisplayFields: []string{"id", "user_id", "author_id"},
		},
	}

	byName := make(map[string]Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}

	return &Registry{db: db, entities: entities, byName: byName}
}

// Entities returns the registered entities in declaration order.
func (r *Registry) Entities() []Entity {
	return r.entities
}

// Lookup finds an entity by its public name.
func (r *Registry) Lookup(name string) (Entity, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// List returns the entity's rows restricted to its display fields, filtered
// by a case-insensitive substring match over its search fields when a term
// is given.
func (r *Registry) List(ctx context.Context, entity Entity, search string) ([]map[string]interface{}, error) {
	query := r.db.WithContext(ctx).
		Table(entity.Table).
		Select(entity.DisplayFields).
		Order("id")

	if search != "" && len(entity.SearchFields) > 0 {
		conds := make([]string, 0, len(entity.SearchFields))
		args := make([]interface{}, 0, len(entity.SearchFields))
		for _, field := range entity.SearchFields {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", field))
			args = append(args, "%"+search+"%")
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	rows := []map[string]interface{}{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", entity.Name, err)
	}
	return rows, nil
}
