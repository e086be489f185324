package operation

import "courseai/internal/api/v1/dto"

// Blog Operations

type ListBlogsInput struct {
	Category string `query:"category" doc:"Only posts in this category"`
	Tag      string `query:"tag" doc:"Only posts with this tag"`
	Search   string `query:"q" doc:"Text to look for in the title, excerpt and content"`
}

type ListBlogsOutput struct {
	Body []dto.BlogResponseDTO `json:"body"`
}

type GetBlogInput struct {
	Slug string `path:"slug" doc:"Blog slug"`
}

type GetBlogOutput struct {
	Body dto.BlogResponseDTO `json:"body"`
}

type ListBlogTermsInput struct{}

type ListBlogTermsOutput struct {
	Body []string `json:"body"`
}

// Admin Blog Operations

type AdminListBlogsInput struct {
	Category string `query:"category" doc:"Only posts in this category"`
	Tag      string `query:"tag" doc:"Only posts with this tag"`
	Search   string `query:"q" doc:"Text to look for in the title, excerpt and content"`
	Status   string `query:"status" enum:"draft,published" doc:"Only posts in this state"`
}

type CreateBlogInput struct {
	Body dto.BlogCreateDTO `json:"body"`
}

type CreateBlogOutput struct {
	Body dto.BlogResponseDTO `json:"body"`
}

type UpdateBlogInput struct {
	Slug string            `path:"slug" doc:"Blog slug"`
	Body dto.BlogUpdateDTO `json:"body"`
}

type DeleteBlogInput struct {
	Slug string `path:"slug" doc:"Blog slug"`
}

type DeleteBlogOutput struct{}

type GetStatsInput struct{}

type GetStatsOutput struct {
	Body dto.StatsResponseDTO `json:"body"`
}
