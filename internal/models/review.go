// internal/models/review.go
package models

// Review is a dealership review left by a signed-in user.
type Review struct {
	ID           string `json:"reviewId"`
	DealershipID string `json:"dealershipId"`
	UserID       string `json:"userId"`
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

// RatingLabel returns the star label shown next to a rating.
func RatingLabel(rating int) string {
	switch rating {
	case 1:
		return "Poor"
	case 2:
		return "Fair"
	case 3:
		return "Good"
	case 4:
		return "Very Good"
	case 5:
		return "Excellent"
	default:
		return ""
	}
}
