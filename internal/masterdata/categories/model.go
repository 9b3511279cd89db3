package categories

// Category represents a recipe category used to group breakdown lines
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
