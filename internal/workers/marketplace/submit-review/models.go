package submitreview

type Input struct {
	DealershipID string `json:"dealershipId"`
	UserID       string `json:"userId"`
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

type Output struct {
	ReviewID    string `json:"reviewId"`
	RatingLabel string `json:"ratingLabel"`
	SubmittedAt string `json:"submittedAt"`
}
