package dto

import "time"

type ReviewCreateDTO struct {
	Rating  int    `json:"rating" minimum:"1" maximum:"5"`
	Comment string `json:"comment,omitempty" maxLength:"2000"`
}

type ReviewResponseDTO struct {
	ReviewID  string    `json:"review_id"`
	CourseID  string    `json:"course_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewCreatedResponseDTO struct {
	Review       ReviewResponseDTO `json:"review"`
	CourseRating float64           `json:"course_rating"`
}
