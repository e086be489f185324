package handler

import (
	"context"

	"courseai/internal/api/v1/dto"
	"courseai/internal/api/v1/operation"
	"courseai/internal/middleware"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/rs/zerolog"
)

// BlogHandler serves the public blog and its admin management routes.
type BlogHandler struct {
	blogService service.BlogService
	logger      zerolog.Logger
}

func NewBlogHandler(blogService service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{blogService: blogService, logger: logger}
}

// ListBlogs lists published posts only
func (h *BlogHandler) ListBlogs(ctx context.Context, input *operation.ListBlogsInput) (*operation.ListBlogsOutput, error) {
	blogs, err := h.blogService.List(ctx, model.BlogFilter{
		Category: input.Category,
		Tag:      input.Tag,
		Search:   input.Search,
		Status:   model.BlogPublished,
	})
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list blogs")
	}
	return &operation.ListBlogsOutput{Body: toBlogDTOs(blogs)}, nil
}

// GetBlog returns a published post. Admins can also read drafts.
func (h *BlogHandler) GetBlog(ctx context.Context, input *operation.GetBlogInput) (*operation.GetBlogOutput, error) {
	includeDrafts := middleware.SessionFromContext(ctx).IsAdmin()
	blog, err := h.blogService.Get(ctx, input.Slug, includeDrafts)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to get blog")
	}
	return &operation.GetBlogOutput{Body: toBlogDTO(blog)}, nil
}

func (h *BlogHandler) ListCategories(ctx context.Context, _ *operation.ListBlogTermsInput) (*operation.ListBlogTermsOutput, error) {
	categories, err := h.blogService.Categories(ctx, true)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list blog categories")
	}
	return &operation.ListBlogTermsOutput{Body: categories}, nil
}

func (h *BlogHandler) ListTags(ctx context.Context, _ *operation.ListBlogTermsInput) (*operation.ListBlogTermsOutput, error) {
	tags, err := h.blogService.Tags(ctx, true)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list blog tags")
	}
	return &operation.ListBlogTermsOutput{Body: tags}, nil
}

// AdminListBlogs lists drafts and published posts. Admin only.
func (h *BlogHandler) AdminListBlogs(ctx context.Context, input *operation.AdminListBlogsInput) (*operation.ListBlogsOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	blogs, err := h.blogService.List(ctx, model.BlogFilter{
		Category: input.Category,
		Tag:      input.Tag,
		Search:   input.Search,
		Status:   model.BlogStatus(input.Status),
	})
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list blogs")
	}
	return &operation.ListBlogsOutput{Body: toBlogDTOs(blogs)}, nil
}

func (h *BlogHandler) CreateBlog(ctx context.Context, input *operation.CreateBlogInput) (*operation.CreateBlogOutput, error) {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	body := input.Body
	blog, err := h.blogService.Create(ctx, sess.UserID, service.BlogInput{
		Slug:     body.Slug,
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Category: body.Category,
		Tags:     body.Tags,
		Publish:  body.Publish,
	})
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to create blog")
	}
	return &operation.CreateBlogOutput{Body: toBlogDTO(blog)}, nil
}

func (h *BlogHandler) UpdateBlog(ctx context.Context, input *operation.UpdateBlogInput) (*operation.GetBlogOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	body := input.Body
	blog, err := h.blogService.Update(ctx, input.Slug, service.BlogPatch{
		Title:    body.Title,
		Content:  body.Content,
		Excerpt:  body.Excerpt,
		Category: body.Category,
		Tags:     body.Tags,
	})
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to update blog")
	}
	return &operation.GetBlogOutput{Body: toBlogDTO(blog)}, nil
}

func (h *BlogHandler) DeleteBlog(ctx context.Context, input *operation.DeleteBlogInput) (*operation.DeleteBlogOutput, error) {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.blogService.Delete(ctx, input.Slug); err != nil {
		return nil, toHumaError(err, h.logger, "Failed to delete blog")
	}
	h.logger.Info().Str("slug", input.Slug).Str("admin_id", sess.UserID).Msg("Blog deleted by admin")
	return &operation.DeleteBlogOutput{}, nil
}

func (h *BlogHandler) PublishBlog(ctx context.Context, input *operation.GetBlogInput) (*operation.GetBlogOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	blog, err := h.blogService.Publish(ctx, input.Slug)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to publish blog")
	}
	return &operation.GetBlogOutput{Body: toBlogDTO(blog)}, nil
}

func (h *BlogHandler) UnpublishBlog(ctx context.Context, input *operation.GetBlogInput) (*operation.GetBlogOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	blog, err := h.blogService.Unpublish(ctx, input.Slug)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to unpublish blog")
	}
	return &operation.GetBlogOutput{Body: toBlogDTO(blog)}, nil
}

// StatsHandler serves the admin dashboard totals.
type StatsHandler struct {
	statsService service.StatsService
	logger       zerolog.Logger
}

func NewStatsHandler(statsService service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, logger: logger}
}

// GetStats is admin only
func (h *StatsHandler) GetStats(ctx context.Context, _ *operation.GetStatsInput) (*operation.GetStatsOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	stats, err := h.statsService.Get(ctx)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to get statistics")
	}
	return &operation.GetStatsOutput{Body: dto.StatsResponseDTO{
		TotalUsers:    stats.TotalUsers,
		ActiveCourses: stats.ActiveCourses,
	}}, nil
}
