// Package recipes manages the component edges of the BOM graph.
package recipes

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a missing edge or parent product.
	ErrNotFound = errors.New("recipe component not found")
	// ErrUnknownChild indicates an edge pointing at a product that does not exist.
	ErrUnknownChild = errors.New("component references unknown product")
	// ErrBadQuantity indicates a non-positive or non-finite quantity in a kit payload.
	ErrBadQuantity = errors.New("component quantity must be a positive number")
	// ErrSelfReference indicates a product listed as its own component.
	ErrSelfReference = errors.New("product cannot be a component of itself")
)

// ComponentEdge is a stored (parent, child, quantity) row.
type ComponentEdge struct {
	ParentID  int64     `json:"parent_id"`
	ChildID   int64     `json:"child_id"`
	Quantity  float64   `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KitLine is the edge joined with the child product, as the costing grid
// displays it.
type KitLine struct {
	ParentID       int64   `json:"parent_id"`
	ChildID        int64   `json:"child_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	RecipeCategory string  `json:"recipe_category,omitempty"`
	InventoryUnit  string  `json:"inventory_unit,omitempty"`
	Quantity       float64 `json:"quantity"`
}

// KitItemInput is one component of a kit upsert payload.
type KitItemInput struct {
	ChildID  int64   `json:"child_id" validate:"required,gt=0"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}
