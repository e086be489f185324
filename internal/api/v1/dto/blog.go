package dto

import "time"

type BlogCreateDTO struct {
	Slug     string   `json:"slug,omitempty" maxLength:"80" doc:"Derived from the title when omitted"`
	Title    string   `json:"title" minLength:"1" maxLength:"300"`
	Content  string   `json:"content" minLength:"1"`
	Excerpt  string   `json:"excerpt,omitempty" maxLength:"1000"`
	Category string   `json:"category,omitempty" maxLength:"100"`
	Tags     []string `json:"tags,omitempty" maxItems:"20"`
	Publish  bool     `json:"publish,omitempty" doc:"Publish immediately instead of saving a draft"`
}

// BlogUpdateDTO holds the fields to change. Omitted fields are left as they are.
type BlogUpdateDTO struct {
	Title    *string   `json:"title,omitempty" minLength:"1" maxLength:"300"`
	Content  *string   `json:"content,omitempty" minLength:"1"`
	Excerpt  *string   `json:"excerpt,omitempty" maxLength:"1000"`
	Category *string   `json:"category,omitempty" maxLength:"100"`
	Tags     *[]string `json:"tags,omitempty" maxItems:"20"`
}

type BlogResponseDTO struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	AuthorID    string     `json:"author_id,omitempty"`
	Status      string     `json:"status" enum:"draft,published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type StatsResponseDTO struct {
	TotalUsers    int `json:"totalUsers"`
	ActiveCourses int `json:"activeCourses"`
}
