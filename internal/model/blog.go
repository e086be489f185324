package model

import "time"

// BlogStatus is the publication state of a blog post.
type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

// Blog is an article on the site blog, addressed by its slug.
type Blog struct {
	ID       string     `db:"id" json:"id"`
	Slug     string     `db:"slug" json:"slug"`
	Title    string     `db:"title" json:"title" validate:"notblank"`
	Content  string     `db:"content" json:"content" validate:"notblank"`
	Excerpt  string     `db:"excerpt" json:"excerpt"`
	Category string     `db:"category" json:"category"`
	Tags     StringList `db:"tags" json:"tags"`
	AuthorID string     `db:"author_id" json:"author_id"`
	Status   BlogStatus `db:"status" json:"status"`

	// PublishedAt is set on every publish and kept when a post goes back to draft.
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (b *Blog) IsPublished() bool {
	return b.Status == BlogPublished
}

// BlogFilter narrows a blog listing. Empty fields match everything.
type BlogFilter struct {
	Category string
	Tag      string
	Search   string
	Status   BlogStatus
}
