package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"lms-backend/internal/model"
	"lms-backend/internal/repository"
)

func newLayoutService(t *testing.T) (*LayoutService, *fakeObjectStore) {
	t.Helper()
	objects := newFakeObjectStore()
	return NewLayoutService(repository.NewMemoryLayoutStore(), objects), objects
}

func TestLayoutLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("banner layout uploads its image", func(t *testing.T) {
		svc, _ := newLayoutService(t)

		layout, err := svc.Create(ctx, model.LayoutRequest{
			Kind:     model.LayoutBanner,
			Image:    "data:image/png;base64,aGVsbG8=",
			Title:    "Learn Go",
			SubTitle: "From zero to production",
		})
		require.NoError(t, err)
		require.NotNil(t, layout.Banner)
		require.Equal(t, "Learn Go", layout.Banner.Title)
		require.NotEmpty(t, layout.Banner.Image.Key)

		got, err := svc.Get(ctx, model.LayoutBanner)
		require.NoError(t, err)
		require.Equal(t, layout.Banner.Image.URL, got.Banner.Image.URL)
	})

	t.Run("each kind is a singleton", func(t *testing.T) {
		svc, _ := newLayoutService(t)

		_, err := svc.Create(ctx, model.LayoutRequest{Kind: model.LayoutFAQ})
		require.NoError(t, err)

		_, err = svc.Create(ctx, model.LayoutRequest{Kind: model.LayoutFAQ})
		requireAPIError(t, err, http.StatusBadRequest, "FAQ already exist")
	})

	t.Run("update replaces the banner image", func(t *testing.T) {
		svc, objects := newLayoutService(t)

		created, err := svc.Create(ctx, model.LayoutRequest{
			Kind:  model.LayoutBanner,
			Image: "data:image/png;base64,aGVsbG8=",
			Title: "Old",
		})
		require.NoError(t, err)
		firstKey := created.Banner.Image.Key

		updated, err := svc.Update(ctx, model.LayoutRequest{
			Kind:  model.LayoutBanner,
			Image: "data:image/png;base64,d29ybGQ=",
			Title: "New",
		})
		require.NoError(t, err)
		require.Equal(t, "New", updated.Banner.Title)
		require.NotEqual(t, firstKey, updated.Banner.Image.Key)
		require.Contains(t, objects.deleted, firstKey)
	})

	t.Run("update without an image keeps the old one", func(t *testing.T) {
		svc, _ := newLayoutService(t)

		created, err := svc.Create(ctx, model.LayoutRequest{
			Kind:  model.LayoutBanner,
			Image: "data:image/png;base64,aGVsbG8=",
			Title: "Old",
		})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, model.LayoutRequest{Kind: model.LayoutBanner, Title: "New"})
		require.NoError(t, err)
		require.Equal(t, created.Banner.Image.Key, updated.Banner.Image.Key)
	})

	t.Run("faq and categories round trip", func(t *testing.T) {
		svc, _ := newLayoutService(t)

		_, err := svc.Create(ctx, model.LayoutRequest{
			Kind: model.LayoutFAQ,
			FAQ:  []model.FAQItem{{Question: "Q", Answer: "A"}},
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, model.LayoutFAQ)
		require.NoError(t, err)
		require.Len(t, got.FAQ, 1)

		_, err = svc.Create(ctx, model.LayoutRequest{
			Kind:       model.LayoutCategories,
			Categories: []model.ListItem{{Title: "Programming"}},
		})
		require.NoError(t, err)

		got, err = svc.Get(ctx, model.LayoutCategories)
		require.NoError(t, err)
		require.Len(t, got.Categories, 1)
	})

	t.Run("unknown kind and missing layout are rejected", func(t *testing.T) {
		svc, _ := newLayoutService(t)

		_, err := svc.Get(ctx, "Sidebar")
		requireAPIError(t, err, http.StatusBadRequest, "invalid layout type")

		_, err = svc.Get(ctx, model.LayoutBanner)
		requireAPIError(t, err, http.StatusNotFound, "Banner not found")

		_, err = svc.Update(ctx, model.LayoutRequest{Kind: model.LayoutBanner})
		requireAPIError(t, err, http.StatusNotFound, "Banner not found")
	})
}
