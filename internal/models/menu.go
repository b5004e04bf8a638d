package models

// Category is one of the fixed menu sections
type Category string

const (
	CategoryHot     Category = "hot"
	CategorySalad   Category = "salad"
	CategoryDessert Category = "dessert"
	CategoryDrink   Category = "drink"
)

// Categories lists every category in menu display order
var Categories = []Category{CategoryHot, CategorySalad, CategoryDessert, CategoryDrink}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryHot, CategorySalad, CategoryDessert, CategoryDrink:
		return true
	}
	return false
}

// MenuEntry is an orderable dish. Entries are immutable once loaded.
type MenuEntry struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Price       int64    `json:"price" db:"price"`
	Category    Category `json:"category" db:"category"`
	Image       string   `json:"image" db:"image"`
}
