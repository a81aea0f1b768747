package domain

// TravelPackage is a purchasable travel offering. Price is kept as the decimal
// string the admin entered.
type TravelPackage struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
	CreatedAt   string `json:"createdAt,omitempty"`
}
