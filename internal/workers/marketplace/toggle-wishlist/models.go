package togglewishlist

type Input struct {
	UserID    string `json:"userId"`
	ListingID string `json:"listingId"`
}

type Output struct {
	ListingID  string `json:"listingId"`
	Wishlisted bool   `json:"wishlisted"`
	Count      int64  `json:"wishlistCount"`
}
