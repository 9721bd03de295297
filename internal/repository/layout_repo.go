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

type LayoutRepository struct {
	pool *pgxpool.Pool
}

func NewLayoutRepository(pool *pgxpool.Pool) *LayoutRepository {
	return &LayoutRepository{pool: pool}
}

func (r *LayoutRepository) FindByKind(ctx context.Context, kind string) (model.Layout, error) {
	var (
		l               model.Layout
		banner          []byte
		faq, categories []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, banner, faq, categories, created_at, updated_at FROM layouts WHERE kind = $1`, kind).
		Scan(&l.ID, &l.Kind, &banner, &faq, &categories, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Layout{}, apierror.NotFound(fmt.Sprintf("%s not found", kind))
	}
	if err != nil {
		return model.Layout{}, fmt.Errorf("find layout: %w", err)
	}

	if len(banner) > 0 {
		if err := json.Unmarshal(banner, &l.Banner); err != nil {
			return model.Layout{}, fmt.Errorf("decode banner: %w", err)
		}
	}
	if err := json.Unmarshal(faq, &l.FAQ); err != nil {
		return model.Layout{}, fmt.Errorf("decode faq: %w", err)
	}
	if err := json.Unmarshal(categories, &l.Categories); err != nil {
		return model.Layout{}, fmt.Errorf("decode categories: %w", err)
	}
	return l, nil
}

func (r *LayoutRepository) Create(ctx context.Context, l model.Layout) error {
	banner, faq, categories, err := marshalLayoutJSON(l)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO layouts (id, kind, banner, faq, categories, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.Kind, banner, faq, categories, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create layout: %w", err)
	}
	return nil
}

func (r *LayoutRepository) Update(ctx context.Context, l model.Layout) error {
	banner, faq, categories, err := marshalLayoutJSON(l)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE layouts SET banner = $2, faq = $3, categories = $4, updated_at = $5 WHERE kind = $1`,
		l.Kind, banner, faq, categories, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update layout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound(fmt.Sprintf("%s not found", l.Kind))
	}
	return nil
}

func marshalLayoutJSON(l model.Layout) (banner, faq, categories []byte, err error) {
	if l.Banner != nil {
		if banner, err = json.Marshal(l.Banner); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal banner: %w", err)
		}
	}
	faqItems := l.FAQ
	if faqItems == nil {
		faqItems = []model.FAQItem{}
	}
	if faq, err = json.Marshal(faqItems); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal faq: %w", err)
	}
	cats := l.Categories
	if cats == nil {
		cats = []model.ListItem{}
	}
	if categories, err = json.Marshal(cats); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal categories: %w", err)
	}
	return banner, faq, categories, nil
}
