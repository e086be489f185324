package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"courseai/internal/model"
	"courseai/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

// fakeCourseRepo is an in-memory CourseRepository. It hands out copies so
// callers cannot mutate stored rows.
type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]model.Course
	creates int
	updates int
	deletes int
	failAll bool
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]model.Course{}}
}

func cloneCourse(c model.Course) model.Course {
	if c.Objectives != nil {
		c.Objectives = append(model.StringList{}, c.Objectives...)
	}
	if c.Modules != nil {
		c.Modules = append(model.ModuleList{}, c.Modules...)
	}
	return c
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	r.creates++
	c.ID = uuid.NewString()
	r.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(_ context.Context, id string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	c, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	c = cloneCourse(c)
	return &c, nil
}

func (r *fakeCourseRepo) ListCourses(_ context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	out := []model.Course{}
	for _, c := range r.courses {
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCourseRepo) GetCoursesByUserID(_ context.Context, userID string) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Course{}
	for _, c := range r.courses {
		if c.CreatedBy == userID {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) UpdateCourse(_ context.Context, c *model.Course) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errStoreDown
	}
	if _, ok := r.courses[c.ID]; !ok {
		return false, nil
	}
	r.updates++
	r.courses[c.ID] = cloneCourse(*c)
	return true, nil
}

func (r *fakeCourseRepo) DeleteCourse(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errStoreDown
	}
	if _, ok := r.courses[id]; !ok {
		return false, nil
	}
	r.deletes++
	delete(r.courses, id)
	return true, nil
}

func (r *fakeCourseRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.courses)
}

// fakeUserRepo keeps users in memory. With courses set, DeleteUser also
// drops the user's courses the way the foreign key cascade does.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]model.User
	courses *fakeCourseRepo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.UserID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.UserID] = *u
	return nil
}

func (r *fakeUserRepo) EnsureAdmin(_ context.Context, email, name string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if existing.Email == email {
			existing.Role = model.RoleAdmin
			r.users[id] = existing
			return &existing, nil
		}
	}
	u := model.User{UserID: uuid.NewString(), Name: name, Email: email, Role: model.RoleAdmin}
	r.users[u.UserID] = u
	return &u, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	if r.courses != nil {
		r.courses.mu.Lock()
		for cid, c := range r.courses.courses {
			if c.CreatedBy == id {
				delete(r.courses.courses, cid)
			}
		}
		r.courses.mu.Unlock()
	}
	return true, nil
}

type enrollmentKey struct{ userID, courseID string }

type fakeEnrollmentRepo struct {
	mu      sync.Mutex
	courses *fakeCourseRepo
	rows    map[enrollmentKey]bool
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{courses: courses, rows: map[enrollmentKey]bool{}}
}

func (r *fakeEnrollmentRepo) Enroll(_ context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[enrollmentKey{userID, courseID}] = true
	return nil
}

func (r *fakeEnrollmentRepo) Unenroll(_ context.Context, userID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := enrollmentKey{userID, courseID}
	if !r.rows[k] {
		return false, nil
	}
	delete(r.rows, k)
	return true, nil
}

func (r *fakeEnrollmentRepo) GetEnrolledCourses(ctx context.Context, userID string) ([]model.Course, error) {
	r.mu.Lock()
	var ids []string
	for k := range r.rows {
		if k.userID == userID {
			ids = append(ids, k.courseID)
		}
	}
	r.mu.Unlock()

	out := []model.Course{}
	for _, id := range ids {
		c, err := r.courses.GetCourseByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeReviewRepo stores reviews in memory. With courses set it also writes
// the new rating and updated_at back to the course, as the SQL store does.
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []model.Review
	courses *fakeCourseRepo
}

func (r *fakeReviewRepo) AddReview(_ context.Context, rv *model.Review) (*repository.CourseRating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv.ReviewID = uuid.NewString()
	rv.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *rv)

	var sum, n int
	for _, existing := range r.reviews {
		if existing.CourseID == rv.CourseID {
			sum += existing.Rating
			n++
		}
	}
	result := &repository.CourseRating{Rating: float64(sum) / float64(n), UpdatedAt: time.Now().UTC()}
	if r.courses != nil {
		r.courses.mu.Lock()
		defer r.courses.mu.Unlock()
		c, ok := r.courses.courses[rv.CourseID]
		if !ok {
			return nil, repository.ErrMissingReference
		}
		if !result.UpdatedAt.After(c.UpdatedAt) {
			result.UpdatedAt = c.UpdatedAt.Add(time.Microsecond)
		}
		c.Rating = result.Rating
		c.UpdatedAt = result.UpdatedAt
		r.courses.courses[rv.CourseID] = c
	}
	return result, nil
}

func (r *fakeReviewRepo) GetReviewsByCourseID(_ context.Context, courseID string) ([]model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Review{}
	for _, rv := range r.reviews {
		if rv.CourseID == courseID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	mu      sync.Mutex
	jobs    map[string]model.GenerationJob
	history map[string][]model.GenerationState
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]model.GenerationJob{}, history: map[string][]model.GenerationState{}}
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *model.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job.JobID = uuid.NewString()
	r.jobs[job.JobID] = *job
	r.history[job.JobID] = []model.GenerationState{job.State}
	return nil
}

func (r *fakeJobRepo) GetJobByID(_ context.Context, id string) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (r *fakeJobRepo) UpdateJob(_ context.Context, job *model.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobID] = *job
	r.history[job.JobID] = append(r.history[job.JobID], job.State)
	return nil
}

// fakeGenerator returns a canned response and counts calls.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
	// block, if set, is waited on before returning.
	block chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	block := g.block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.response, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeQueue struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (q *fakeQueue) Send(_ context.Context, _ string, payload []byte) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return 0, q.err
	}
	q.messages = append(q.messages, payload)
	return int64(len(q.messages)), nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads []string
}

func (p *fakePublisher) Publish(_ context.Context, _ string, payload []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, string(payload))
	return "msg", nil
}

type fakeArchive struct {
	mu       sync.Mutex
	archived []model.FailedGeneration
}

func (a *fakeArchive) Archive(_ context.Context, failed model.FailedGeneration) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, failed)
	return "key", nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (f *fakeRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

// fakeBlogRepo keeps posts in memory keyed by slug. Filters match the way
// the SQL store applies them.
type fakeBlogRepo struct {
	mu      sync.Mutex
	blogs   map[string]model.Blog
	updates int
	failAll bool
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{blogs: map[string]model.Blog{}}
}

func cloneBlog(b model.Blog) model.Blog {
	b.Tags = append(model.StringList{}, b.Tags...)
	if b.PublishedAt != nil {
		at := *b.PublishedAt
		b.PublishedAt = &at
	}
	return b
}

func (r *fakeBlogRepo) CreateBlog(_ context.Context, b *model.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errStoreDown
	}
	if _, taken := r.blogs[b.Slug]; taken {
		return repository.ErrDuplicate
	}
	b.ID = uuid.NewString()
	r.blogs[b.Slug] = cloneBlog(*b)
	return nil
}

func (r *fakeBlogRepo) GetBlogBySlug(_ context.Context, slug string) (*model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	b, ok := r.blogs[slug]
	if !ok {
		return nil, nil
	}
	b = cloneBlog(b)
	return &b, nil
}

func (r *fakeBlogRepo) ListBlogs(_ context.Context, f model.BlogFilter) ([]model.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	out := []model.Blog{}
	for _, b := range r.blogs {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Category != "" && !strings.EqualFold(b.Category, f.Category) {
			continue
		}
		if f.Tag != "" && !slices.Contains(b.Tags, f.Tag) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(b.Title+"\n"+b.Excerpt+"\n"+b.Content), q) {
				continue
			}
		}
		out = append(out, cloneBlog(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBlogRepo) UpdateBlog(_ context.Context, b *model.Blog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errStoreDown
	}
	existing, ok := r.blogs[b.Slug]
	if !ok || existing.ID != b.ID {
		return false, nil
	}
	r.updates++
	r.blogs[b.Slug] = cloneBlog(*b)
	return true, nil
}

func (r *fakeBlogRepo) DeleteBlog(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return false, errStoreDown
	}
	if _, ok := r.blogs[slug]; !ok {
		return false, nil
	}
	delete(r.blogs, slug)
	return true, nil
}

func (r *fakeBlogRepo) ListCategories(_ context.Context, publishedOnly bool) ([]string, error) {
	return r.distinct(publishedOnly, func(b model.Blog) []string {
		if b.Category == "" {
			return nil
		}
		return []string{b.Category}
	})
}

func (r *fakeBlogRepo) ListTags(_ context.Context, publishedOnly bool) ([]string, error) {
	return r.distinct(publishedOnly, func(b model.Blog) []string { return b.Tags })
}

func (r *fakeBlogRepo) distinct(publishedOnly bool, values func(model.Blog) []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errStoreDown
	}
	seen := map[string]bool{}
	out := []string{}
	for _, b := range r.blogs {
		if publishedOnly && !b.IsPublished() {
			continue
		}
		for _, v := range values(b) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
