package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

type LayoutService struct {
	layouts LayoutStore
	objects ObjectStore
}

func NewLayoutService(layouts LayoutStore, objects ObjectStore) *LayoutService {
	return &LayoutService{layouts: layouts, objects: objects}
}

func (s *LayoutService) Create(ctx context.Context, req model.LayoutRequest) (model.Layout, error) {
	if _, err := s.layouts.FindByKind(ctx, req.Kind); err == nil {
		return model.Layout{}, apierror.BadRequest(fmt.Sprintf("%s already exist", req.Kind))
	} else if !isNotFound(err) {
		return model.Layout{}, err
	}

	now := time.Now().UTC()
	layout := model.Layout{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.populate(ctx, &layout, req, model.Layout{}); err != nil {
		return model.Layout{}, err
	}

	if err := s.layouts.Create(ctx, layout); err != nil {
		return model.Layout{}, err
	}

	return layout, nil
}

func (s *LayoutService) Update(ctx context.Context, req model.LayoutRequest) (model.Layout, error) {
	existing, err := s.layouts.FindByKind(ctx, req.Kind)
	if err != nil {
		return model.Layout{}, err
	}

	layout := model.Layout{
		ID:        existing.ID,
		Kind:      existing.Kind,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.populate(ctx, &layout, req, existing); err != nil {
		return model.Layout{}, err
	}

	if err := s.layouts.Update(ctx, layout); err != nil {
		return model.Layout{}, err
	}

	return layout, nil
}

func (s *LayoutService) Get(ctx context.Context, kind string) (model.Layout, error) {
	switch kind {
	case model.LayoutBanner, model.LayoutFAQ, model.LayoutCategories:
	default:
		return model.Layout{}, apierror.BadRequest("invalid layout type")
	}

	return s.layouts.FindByKind(ctx, kind)
}

func (s *LayoutService) populate(ctx context.Context, layout *model.Layout, req model.LayoutRequest, prior model.Layout) error {
	switch req.Kind {
	case model.LayoutBanner:
		banner := model.Banner{Title: req.Title, SubTitle: req.SubTitle}
		if req.Image != "" {
			if prior.Banner != nil && prior.Banner.Image.Key != "" {
				if err := s.objects.Delete(ctx, prior.Banner.Image.Key); err != nil {
					return apierror.Dependency("could not replace banner image", err)
				}
			}

			data, err := decodeImagePayload(req.Image)
			if err != nil {
				return apierror.BadRequest("invalid banner image payload")
			}

			key := "layout/" + uuid.NewString()
			url, err := s.objects.Put(ctx, key, data, http.DetectContentType(data))
			if err != nil {
				return apierror.Dependency("could not upload banner image", err)
			}
			banner.Image = model.BannerImage{Key: key, URL: url}
		} else if prior.Banner != nil {
			banner.Image = prior.Banner.Image
		}
		layout.Banner = &banner
	case model.LayoutFAQ:
		layout.FAQ = req.FAQ
	case model.LayoutCategories:
		layout.Categories = req.Categories
	}

	return nil
}
