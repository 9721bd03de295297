package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

const courseColumns = `id, name, description, price, estimated_price, thumbnail_key, thumbnail_url,
	tags, level, demo_url, benefits, prerequisites, sections, reviews, ratings, purchased, created_at, updated_at`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

func (r *CourseRepository) Create(ctx context.Context, c model.Course) error {
	benefits, prerequisites, sections, reviews, err := marshalCourseJSON(c)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO courses (id, name, description, price, estimated_price, thumbnail_key, thumbnail_url,
		        tags, level, demo_url, benefits, prerequisites, sections, reviews, ratings, purchased, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, c.Thumbnail.Key, c.Thumbnail.URL,
		c.Tags, c.Level, c.DemoURL, benefits, prerequisites, sections, reviews, c.Ratings, c.Purchased, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, c model.Course) error {
	benefits, prerequisites, sections, reviews, err := marshalCourseJSON(c)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET name = $2, description = $3, price = $4, estimated_price = $5,
		        thumbnail_key = $6, thumbnail_url = $7, tags = $8, level = $9, demo_url = $10,
		        benefits = $11, prerequisites = $12, sections = $13, reviews = $14, ratings = $15, purchased = $16, updated_at = $17
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, c.Thumbnail.Key, c.Thumbnail.URL,
		c.Tags, c.Level, c.DemoURL, benefits, prerequisites, sections, reviews, c.Ratings, c.Purchased, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("Course not found")
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("Course not found")
	}
	return nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) IncrementPurchased(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET purchased = purchased + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment purchased: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("Course not found")
	}
	return nil
}

func marshalCourseJSON(c model.Course) (benefits, prerequisites, sections, reviews []byte, err error) {
	if benefits, err = json.Marshal(orEmptyList(c.Benefits)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal benefits: %w", err)
	}
	if prerequisites, err = json.Marshal(orEmptyList(c.Prerequisites)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal prerequisites: %w", err)
	}
	if sections, err = json.Marshal(orEmptySections(c.Sections)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal sections: %w", err)
	}
	if reviews, err = json.Marshal(orEmptyReviews(c.Reviews)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal reviews: %w", err)
	}
	return benefits, prerequisites, sections, reviews, nil
}

func orEmptyList(items []model.ListItem) []model.ListItem {
	if items == nil {
		return []model.ListItem{}
	}
	return items
}

func orEmptySections(sections []model.CourseSection) []model.CourseSection {
	if sections == nil {
		return []model.CourseSection{}
	}
	return sections
}

func orEmptyReviews(reviews []model.Review) []model.Review {
	if reviews == nil {
		return []model.Review{}
	}
	return reviews
}

func scanCourse(row pgx.Row) (model.Course, error) {
	var (
		c                                          model.Course
		benefits, prerequisites, sections, reviews []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.EstimatedPrice,
		&c.Thumbnail.Key, &c.Thumbnail.URL, &c.Tags, &c.Level, &c.DemoURL,
		&benefits, &prerequisites, &sections, &reviews, &c.Ratings, &c.Purchased, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Course{}, apierror.NotFound("Course not found")
	}
	if err != nil {
		return model.Course{}, fmt.Errorf("find course: %w", err)
	}

	if err := json.Unmarshal(benefits, &c.Benefits); err != nil {
		return model.Course{}, fmt.Errorf("decode benefits: %w", err)
	}
	if err := json.Unmarshal(prerequisites, &c.Prerequisites); err != nil {
		return model.Course{}, fmt.Errorf("decode prerequisites: %w", err)
	}
	if err := json.Unmarshal(sections, &c.Sections); err != nil {
		return model.Course{}, fmt.Errorf("decode sections: %w", err)
	}
	if err := json.Unmarshal(reviews, &c.Reviews); err != nil {
		return model.Course{}, fmt.Errorf("decode reviews: %w", err)
	}
	return c, nil
}
