package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"courseai/internal/model"
	"courseai/internal/repository"
	"courseai/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxSlugAttempts bounds how many numbered variants of a generated slug are tried.
const maxSlugAttempts = 20

// BlogInput holds a new post. Slug is optional and derived from Title when empty.
type BlogInput struct {
	Slug     string
	Title    string
	Content  string
	Excerpt  string
	Category string
	Tags     []string
	Publish  bool
}

// BlogPatch holds the fields of a post update. Nil fields are left unchanged.
type BlogPatch struct {
	Title    *string
	Content  *string
	Excerpt  *string
	Category *string
	Tags     *[]string
}

type BlogService interface {
	Create(ctx context.Context, authorID string, in BlogInput) (*model.Blog, error)
	// Get looks a post up by slug. Drafts are reported as not found unless
	// includeDrafts is set.
	Get(ctx context.Context, slug string, includeDrafts bool) (*model.Blog, error)
	List(ctx context.Context, filter model.BlogFilter) ([]model.Blog, error)
	Update(ctx context.Context, slug string, patch BlogPatch) (*model.Blog, error)
	Delete(ctx context.Context, slug string) error
	// Publish marks the post published and stamps published_at with the
	// current time, also when it was already published.
	Publish(ctx context.Context, slug string) (*model.Blog, error)
	// Unpublish returns the post to draft. published_at keeps the last publish time.
	Unpublish(ctx context.Context, slug string) (*model.Blog, error)
	Categories(ctx context.Context, publishedOnly bool) ([]string, error)
	Tags(ctx context.Context, publishedOnly bool) ([]string, error)
}

type blogService struct {
	repo     repository.BlogRepository
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

func NewBlogService(repo repository.BlogRepository, logger zerolog.Logger) BlogService {
	return &blogService{
		repo:     repo,
		validate: newFieldValidator(),
		now:      time.Now,
		logger:   logger.With().Str("service", "BlogService").Logger(),
	}
}

func (s *blogService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// touch moves b's updated_at forward and returns the new value.
func (s *blogService) touch(b *model.Blog) time.Time {
	now := s.timestamp()
	if !now.After(b.UpdatedAt) {
		now = b.UpdatedAt.Add(time.Microsecond)
	}
	b.UpdatedAt = now
	return now
}

func (s *blogService) Create(ctx context.Context, authorID string, in BlogInput) (*model.Blog, error) {
	blog := &model.Blog{
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		Excerpt:  strings.TrimSpace(in.Excerpt),
		Category: strings.TrimSpace(in.Category),
		Tags:     normalizeTags(in.Tags),
		AuthorID: authorID,
		Status:   model.BlogDraft,
	}
	if err := validateFields(s.validate, blog); err != nil {
		return nil, err
	}

	explicit := strings.TrimSpace(in.Slug) != ""
	base := util.Slugify(in.Slug)
	if !explicit {
		base = util.Slugify(blog.Title)
	}
	if base == "" {
		return nil, &ValidationError{Field: "slug"}
	}

	now := s.timestamp()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	if in.Publish {
		blog.Status = model.BlogPublished
		blog.PublishedAt = &now
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		blog.Slug = base
		if attempt > 1 {
			blog.Slug = base + "-" + strconv.Itoa(attempt)
		}
		err := s.repo.CreateBlog(ctx, blog)
		if err == nil {
			s.logger.Info().Str("slug", blog.Slug).Str("author_id", authorID).Msg("Blog created")
			return blog, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			s.logger.Error().Err(err).Str("slug", blog.Slug).Msg("Failed to create blog")
			return nil, &StoreError{Op: "create blog", Err: err}
		}
		if explicit {
			return nil, ErrSlugTaken
		}
	}
	return nil, ErrSlugTaken
}

func (s *blogService) Get(ctx context.Context, slug string, includeDrafts bool) (*model.Blog, error) {
	blog, err := s.repo.GetBlogBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to get blog")
		return nil, &StoreError{Op: "get blog", Err: err}
	}
	if blog == nil || (!includeDrafts && !blog.IsPublished()) {
		return nil, &NotFoundError{Resource: "blog", ID: slug}
	}
	return blog, nil
}

func (s *blogService) List(ctx context.Context, filter model.BlogFilter) ([]model.Blog, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	filter.Search = strings.TrimSpace(filter.Search)
	blogs, err := s.repo.ListBlogs(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list blogs")
		return nil, &StoreError{Op: "list blogs", Err: err}
	}
	return blogs, nil
}

// Update merges patch into the post. The slug does not change with the title.
func (s *blogService) Update(ctx context.Context, slug string, patch BlogPatch) (*model.Blog, error) {
	blog, err := s.Get(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		blog.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		blog.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Excerpt != nil {
		blog.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Category != nil {
		blog.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Tags != nil {
		blog.Tags = normalizeTags(*patch.Tags)
	}
	if err := validateFields(s.validate, blog); err != nil {
		return nil, err
	}
	s.touch(blog)
	return s.save(ctx, blog, "update blog")
}

func (s *blogService) Publish(ctx context.Context, slug string) (*model.Blog, error) {
	blog, err := s.Get(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	now := s.touch(blog)
	blog.Status = model.BlogPublished
	blog.PublishedAt = &now
	return s.save(ctx, blog, "publish blog")
}

func (s *blogService) Unpublish(ctx context.Context, slug string) (*model.Blog, error) {
	blog, err := s.Get(ctx, slug, true)
	if err != nil {
		return nil, err
	}
	s.touch(blog)
	blog.Status = model.BlogDraft
	return s.save(ctx, blog, "unpublish blog")
}

func (s *blogService) save(ctx context.Context, blog *model.Blog, op string) (*model.Blog, error) {
	found, err := s.repo.UpdateBlog(ctx, blog)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", blog.Slug).Msg("Failed to " + op)
		return nil, &StoreError{Op: op, Err: err}
	}
	if !found {
		return nil, &NotFoundError{Resource: "blog", ID: blog.Slug}
	}
	s.logger.Info().Str("slug", blog.Slug).Str("status", string(blog.Status)).Msg("Blog saved")
	return blog, nil
}

func (s *blogService) Delete(ctx context.Context, slug string) error {
	deleted, err := s.repo.DeleteBlog(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("Failed to delete blog")
		return &StoreError{Op: "delete blog", Err: err}
	}
	if !deleted {
		return &NotFoundError{Resource: "blog", ID: slug}
	}
	s.logger.Info().Str("slug", slug).Msg("Blog deleted")
	return nil
}

func (s *blogService) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx, publishedOnly)
	if err != nil {
		return nil, &StoreError{Op: "list blog categories", Err: err}
	}
	return categories, nil
}

func (s *blogService) Tags(ctx context.Context, publishedOnly bool) ([]string, error) {
	tags, err := s.repo.ListTags(ctx, publishedOnly)
	if err != nil {
		return nil, &StoreError{Op: "list blog tags", Err: err}
	}
	return tags, nil
}

// normalizeTags lowercases and trims tags, dropping blanks and repeats.
func normalizeTags(tags []string) model.StringList {
	out := model.StringList{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
