package models

// TemplateEntry is one starter item: a name and its category.
type TemplateEntry struct {
	Name     string
	Category string
}

// Templates are starter menus a new restaurant can import. Imported items
// start at a zero price for the admin to fill in.
var Templates = map[string][]TemplateEntry{
	"cafe": {
		{"Masala Chai", "Beverages"},
		{"Filter Coffee", "Beverages"},
		{"Cold Coffee", "Beverages"},
		{"Lemon Iced Tea", "Beverages"},
		{"Veg Sandwich", "Snacks"},
		{"Paneer Sandwich", "Snacks"},
		{"French Fries", "Snacks"},
		{"Veg Puff", "Bakery"},
		{"Chocolate Brownie", "Desserts"},
		{"Blueberry Muffin", "Bakery"},
	},
	"restaurant": {
		{"Tomato Soup", "Starters"},
		{"Paneer Tikka", "Starters"},
		{"Veg Manchurian", "Starters"},
		{"Dal Makhani", "Main Course"},
		{"Paneer Butter Masala", "Main Course"},
		{"Veg Biryani", "Rice"},
		{"Jeera Rice", "Rice"},
		{"Butter Naan", "Breads"},
		{"Tandoori Roti", "Breads"},
		{"Gulab Jamun", "Desserts"},
		{"Sweet Lassi", "Beverages"},
	},
}
