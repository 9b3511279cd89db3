package costing

import (
	"fmt"
	"strconv"
	"strings"
)

// CyclicRecipeError reports a component graph that loops back onto an
// ancestor. Chain holds the offending product ids in walk order, ending with
// the repeated id.
type CyclicRecipeError struct {
	Chain []int64
}

func (e *CyclicRecipeError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, id := range e.Chain {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "recipe cycle detected: " + strings.Join(parts, " -> ")
}

// DanglingReferenceError reports a component edge pointing at a product that
// is missing from the snapshot.
type DanglingReferenceError struct {
	ParentID  int64
	ProductID int64
}

func (e *DanglingReferenceError) Error() string {
	if e.ParentID == 0 {
		return fmt.Sprintf("product %d not found in snapshot", e.ProductID)
	}
	return fmt.Sprintf("component of product %d references missing product %d", e.ParentID, e.ProductID)
}

// InvalidQuantityError reports a negative or non-finite component quantity.
type InvalidQuantityError struct {
	ParentID int64
	ChildID  int64
	Quantity float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v on component %d of product %d", e.Quantity, e.ChildID, e.ParentID)
}
