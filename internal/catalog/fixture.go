package catalog

import "southern-night/internal/models"

const imageBase = "https://cdn.poehali.dev/projects/82cd6d2c-4139-4a8b-a275-721598aed948/files/"

// DefaultEntries is the house menu served when no database source is configured
var DefaultEntries = []models.MenuEntry{
	{ID: "1", Name: "Adjarian khachapuri", Description: "Dough boat with suluguni cheese and egg", Price: 450, Category: models.CategoryHot, Image: imageBase + "5e6a0ebb-e481-43f1-a4bb-7fad5a041639.jpg"},
	{ID: "2", Name: "Lamb shashlik", Description: "Marinated lamb grilled over coals with herbs", Price: 650, Category: models.CategoryHot, Image: imageBase + "46dbb62a-f164-4acb-a26e-3f9d56543937.jpg"},
	{ID: "3", Name: "Dolma", Description: "Vine leaves stuffed with rice and meat", Price: 380, Category: models.CategoryHot, Image: "/placeholder.svg"},
	{ID: "4", Name: "Uzbek plov", Description: "Rice with lamb, carrots and spices", Price: 420, Category: models.CategoryHot, Image: "/placeholder.svg"},
	{ID: "5", Name: "Choban salad", Description: "Fresh tomatoes, cucumbers and peppers with greens", Price: 280, Category: models.CategorySalad, Image: "/placeholder.svg"},
	{ID: "6", Name: "Pkhali assortment", Description: "Spinach, beetroot and bean pastes with walnuts", Price: 350, Category: models.CategorySalad, Image: "/placeholder.svg"},
	{ID: "7", Name: "Baklava", Description: "Layered pastry with nuts and honey", Price: 250, Category: models.CategoryDessert, Image: imageBase + "35d54c29-4b3a-460d-832d-2ff4803d98db.jpg"},
	{ID: "8", Name: "Churchkhela", Description: "Walnuts in thickened grape juice", Price: 180, Category: models.CategoryDessert, Image: "/placeholder.svg"},
	{ID: "9", Name: "Turkish tea", Description: "Black tea in a traditional glass", Price: 120, Category: models.CategoryDrink, Image: "/placeholder.svg"},
	{ID: "10", Name: "Ayran", Description: "Refreshing fermented milk drink", Price: 150, Category: models.CategoryDrink, Image: "/placeholder.svg"},
}

// Default returns the built-in menu
func Default() *Catalog {
	c, err := New(DefaultEntries)
	if err != nil {
		panic("catalog: invalid built-in menu: " + err.Error())
	}
	return c
}
