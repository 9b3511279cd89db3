package units

// Unit represents a presentation unit (how a product is purchased or stocked)
type Unit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
