package handler

import (
	"courseai/internal/api/v1/dto"
	"courseai/internal/model"
)

func toModuleDTOs(modules []model.Module) []dto.ModuleDTO {
	out := make([]dto.ModuleDTO, 0, len(modules))
	for _, m := range modules {
		d := dto.ModuleDTO{Title: m.Title, Description: m.Description}
		if m.Content != nil {
			d.Content = &dto.ModuleContentDTO{
				Concepts:  m.Content.Concepts,
				Examples:  m.Content.Examples,
				Exercises: m.Content.Exercises,
				Resources: m.Content.Resources,
			}
		}
		out = append(out, d)
	}
	return out
}

func fromModuleDTOs(modules []dto.ModuleDTO) []model.Module {
	out := make([]model.Module, 0, len(modules))
	for _, d := range modules {
		m := model.Module{Title: d.Title, Description: d.Description}
		if d.Content != nil {
			m.Content = &model.ModuleContent{
				Concepts:  d.Content.Concepts,
				Examples:  d.Content.Examples,
				Exercises: d.Content.Exercises,
				Resources: d.Content.Resources,
			}
		}
		out = append(out, m)
	}
	return out
}

func toOutlineDTO(o model.CourseOutline) dto.CourseOutlineDTO {
	return dto.CourseOutlineDTO{
		Title:       o.Title,
		Description: o.Description,
		Duration:    o.Duration,
		Level:       string(o.Level),
		Objectives:  o.Objectives,
		Modules:     toModuleDTOs(o.Modules),
	}
}

func fromOutlineDTO(d dto.CourseOutlineDTO) *model.CourseOutline {
	return &model.CourseOutline{
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Level:       model.Level(d.Level),
		Objectives:  d.Objectives,
		Modules:     fromModuleDTOs(d.Modules),
	}
}

func toCourseDTO(c *model.Course) dto.CourseResponseDTO {
	objectives := []string(c.Objectives)
	if objectives == nil {
		objectives = []string{}
	}
	return dto.CourseResponseDTO{
		CourseID:    c.ID,
		CreatedBy:   c.CreatedBy,
		Title:       c.Title,
		Description: c.Description,
		Duration:    c.Duration,
		Level:       string(c.Level),
		Objectives:  objectives,
		Modules:     toModuleDTOs(c.Modules),
		Rating:      c.Rating,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCourseDTOs(courses []model.Course) []dto.CourseResponseDTO {
	out := make([]dto.CourseResponseDTO, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseDTO(&courses[i]))
	}
	return out
}

func toUserDTO(u *model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toJobDTO(job *model.GenerationJob) dto.GenerationJobDTO {
	out := dto.GenerationJobDTO{
		JobID:        job.JobID,
		Topic:        job.Topic,
		State:        string(job.State),
		ErrorKind:    job.ErrorKind,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
	if job.Outline != nil {
		outline := toOutlineDTO(*job.Outline)
		out.Outline = &outline
	}
	return out
}

func toReviewDTO(r *model.Review) dto.ReviewResponseDTO {
	return dto.ReviewResponseDTO{
		ReviewID:  r.ReviewID,
		CourseID:  r.CourseID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toBlogDTO(b *model.Blog) dto.BlogResponseDTO {
	tags := []string(b.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.BlogResponseDTO{
		ID:          b.ID,
		Slug:        b.Slug,
		Title:       b.Title,
		Content:     b.Content,
		Excerpt:     b.Excerpt,
		Category:    b.Category,
		Tags:        tags,
		AuthorID:    b.AuthorID,
		Status:      string(b.Status),
		PublishedAt: b.PublishedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBlogDTOs(blogs []model.Blog) []dto.BlogResponseDTO {
	out := make([]dto.BlogResponseDTO, 0, len(blogs))
	for i := range blogs {
		out = append(out, toBlogDTO(&blogs[i]))
	}
	return out
}
