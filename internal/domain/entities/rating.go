package entities

// CreateRatingRequest is the body of POST rating/create.
type CreateRatingRequest struct {
	RequestID string `json:"request_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

// UpdateRatingRequest is the body of PUT rating/{rating_id}.
type UpdateRatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Rating is a single poster-to-deliverer rating.
type Rating struct {
	RatingID     string `json:"rating_id"`
	RequestID    string `json:"request_id"`
	PosterUID    string `json:"poster_uid"`
	DelivererUID string `json:"deliverer_uid"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// RatingStats summarises a deliverer's ratings.
type RatingStats struct {
	AverageRating      float64        `json:"average_rating"`
	TotalRatings       int            `json:"total_ratings"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	RatingBadge        string         `json:"rating_badge,omitempty"`
}

// UserRatings is a deliverer's stats plus the raw rating records.
type UserRatings struct {
	Stats   RatingStats              `json:"stats"`
	Ratings []map[string]interface{} `json:"ratings"`
}
