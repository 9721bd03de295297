package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

const (
	courseCachePrefix  = "course:"
	allCoursesCacheKey = "allCourses"
)

type CourseService struct {
	courses       CourseStore
	cache         SessionCache
	objects       ObjectStore
	notifications NotificationStore
}

func NewCourseService(courses CourseStore, cache SessionCache, objects ObjectStore, notifications NotificationStore) *CourseService {
	return &CourseService{courses: courses, cache: cache, objects: objects, notifications: notifications}
}

func (s *CourseService) Create(ctx context.Context, payload model.CoursePayload) (model.Course, error) {
	now := time.Now().UTC()
	course := model.Course{
		ID:             uuid.NewString(),
		Name:           payload.Name,
		Description:    payload.Description,
		Price:          payload.Price,
		EstimatedPrice: payload.EstimatedPrice,
		Tags:           payload.Tags,
		Level:          payload.Level,
		DemoURL:        payload.DemoURL,
		Benefits:       payload.Benefits,
		Prerequisites:  payload.Prerequisites,
		Sections:       payload.Sections,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if payload.Thumbnail != "" {
		thumb, err := s.uploadThumbnail(ctx, payload.Thumbnail)
		if err != nil {
			return model.Course{}, err
		}
		course.Thumbnail = thumb
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

func (s *CourseService) Edit(ctx context.Context, id string, payload model.EditCoursePayload) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return model.Course{}, err
	}

	if payload.Name != "" {
		course.Name = payload.Name
	}
	if payload.Description != "" {
		course.Description = payload.Description
	}
	if payload.Price > 0 {
		course.Price = payload.Price
	}
	if payload.EstimatedPrice > 0 {
		course.EstimatedPrice = payload.EstimatedPrice
	}
	if payload.Tags != "" {
		course.Tags = payload.Tags
	}
	if payload.Level != "" {
		course.Level = payload.Level
	}
	if payload.DemoURL != "" {
		course.DemoURL = payload.DemoURL
	}
	if payload.Benefits != nil {
		course.Benefits = payload.Benefits
	}
	if payload.Prerequisites != nil {
		course.Prerequisites = payload.Prerequisites
	}
	if payload.Sections != nil {
		course.Sections = payload.Sections
	}

	if payload.Thumbnail != "" {
		if course.Thumbnail.Key != "" {
			if err := s.objects.Delete(ctx, course.Thumbnail.Key); err != nil {
				return model.Course{}, apierror.Dependency("could not replace thumbnail", err)
			}
		}
		thumb, err := s.uploadThumbnail(ctx, payload.Thumbnail)
		if err != nil {
			return model.Course{}, err
		}
		course.Thumbnail = thumb
	}

	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// GetPublic is the unauthenticated single-course read: cache first, store
// on miss, always sanitized.
func (s *CourseService) GetPublic(ctx context.Context, id string) (model.Course, error) {
	key := courseCachePrefix + id

	if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
		var course model.Course
		if err := json.Unmarshal([]byte(raw), &course); err == nil {
			return course, nil
		}
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return model.Course{}, err
	}

	sanitized := course.Sanitized()
	if raw, err := json.Marshal(sanitized); err == nil {
		_ = s.cache.Set(ctx, key, string(raw), 0)
	}

	return sanitized, nil
}

// ListPublic mirrors GetPublic for the catalog listing.
func (s *CourseService) ListPublic(ctx context.Context) ([]model.Course, error) {
	if raw, found, err := s.cache.Get(ctx, allCoursesCacheKey); err == nil && found {
		var courses []model.Course
		if err := json.Unmarshal([]byte(raw), &courses); err == nil {
			return courses, nil
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]model.Course, len(courses))
	for i, course := range courses {
		sanitized[i] = course.Sanitized()
	}

	if raw, err := json.Marshal(sanitized); err == nil {
		_ = s.cache.Set(ctx, allCoursesCacheKey, string(raw), 0)
	}

	return sanitized, nil
}

// ContentFor returns the full sections, video URLs included, but only for a
// user whose enrollments contain the course.
func (s *CourseService) ContentFor(ctx context.Context, user model.User, courseID string) ([]model.CourseSection, error) {
	if !user.Enrolled(courseID) {
		return nil, apierror.NotFound("You are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return course.Sections, nil
}

func (s *CourseService) AddQuestion(ctx context.Context, user model.User, req model.AddQuestionRequest) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Course{}, err
	}

	idx := sectionIndex(course.Sections, req.ContentID)
	if idx < 0 {
		return model.Course{}, apierror.BadRequest("Invalid contentId")
	}

	course.Sections[idx].Questions = append(course.Sections[idx].Questions, model.Question{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Question:  req.Question,
		Replies:   []model.QuestionReply{},
		CreatedAt: time.Now().UTC(),
	})

	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

func (s *CourseService) AddAnswer(ctx context.Context, user model.User, req model.AddAnswerRequest) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Course{}, err
	}

	idx := sectionIndex(course.Sections, req.ContentID)
	if idx < 0 {
		return model.Course{}, apierror.BadRequest("Invalid contentId")
	}

	questions := course.Sections[idx].Questions
	qIdx := -1
	for i, q := range questions {
		if q.ID == req.QuestionID {
			qIdx = i
			break
		}
	}
	if qIdx < 0 {
		return model.Course{}, apierror.BadRequest("Invalid questionId")
	}

	questions[qIdx].Replies = append(questions[qIdx].Replies, model.QuestionReply{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Answer:    req.Answer,
		CreatedAt: time.Now().UTC(),
	})

	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// AddReview lets an enrolled user rate a course. The course average is
// recomputed from every review so far, and the admin dashboard gets an
// unread notification.
func (s *CourseService) AddReview(ctx context.Context, user model.User, courseID string, req model.AddReviewRequest) (model.Course, error) {
	if !user.Enrolled(courseID) {
		return model.Course{}, apierror.NotFound("You are not eligible to access this course")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return model.Course{}, err
	}

	now := time.Now().UTC()
	course.Reviews = append(course.Reviews, model.Review{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Review,
		Replies:   []model.ReviewReply{},
		CreatedAt: now,
	})

	var total float64
	for _, review := range course.Reviews {
		total += review.Rating
	}
	course.Ratings = total / float64(len(course.Reviews))

	course.UpdatedAt = now
	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	if err := s.notifications.Create(ctx, model.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     "New Review Received",
		Message:   fmt.Sprintf("%s has given a review in %s", user.Name, course.Name),
		Status:    model.NotificationUnread,
		CreatedAt: now,
	}); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// AddReply attaches an admin reply to an existing review.
func (s *CourseService) AddReply(ctx context.Context, user model.User, req model.AddReviewReplyRequest) (model.Course, error) {
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return model.Course{}, err
	}

	rIdx := -1
	for i, review := range course.Reviews {
		if review.ID == req.ReviewID {
			rIdx = i
			break
		}
	}
	if rIdx < 0 {
		return model.Course{}, apierror.NotFound("Review not found")
	}

	course.Reviews[rIdx].Replies = append(course.Reviews[rIdx].Replies, model.ReviewReply{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserName:  user.Name,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	})

	course.UpdatedAt = time.Now().UTC()
	if err := s.courses.Update(ctx, course); err != nil {
		return model.Course{}, err
	}

	s.invalidate(ctx, course.ID)
	return course, nil
}

// ListAll is the admin view: nothing stripped.
func (s *CourseService) ListAll(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *CourseService) uploadThumbnail(ctx context.Context, payload string) (model.Thumbnail, error) {
	data, err := decodeImagePayload(payload)
	if err != nil {
		return model.Thumbnail{}, apierror.BadRequest("invalid thumbnail payload")
	}

	key := "courses/" + uuid.NewString()
	url, err := s.objects.Put(ctx, key, data, http.DetectContentType(data))
	if err != nil {
		return model.Thumbnail{}, apierror.Dependency("could not upload thumbnail", err)
	}

	return model.Thumbnail{Key: key, URL: url}, nil
}

// Cached reads are acceleration only; eviction failures just mean one
// stale read window, so they are not surfaced.
func (s *CourseService) invalidate(ctx context.Context, id string) {
	_ = s.cache.Del(ctx, courseCachePrefix+id)
	_ = s.cache.Del(ctx, allCoursesCacheKey)
}

func sectionIndex(sections []model.CourseSection, contentID string) int {
	for i, section := range sections {
		if section.ID == contentID {
			return i
		}
	}
	return -1
}
