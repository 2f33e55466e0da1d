// Package blog serves the public blog listing and single posts.
package blog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
)

type Store interface {
	List(ctx context.Context, f services.PostFilter) (*services.Page[models.BlogPost], error)
	GetPublic(ctx context.Context, id string) (*models.BlogPost, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// GET /api/blog
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	page, err := h.store.List(ctx, services.PostFilter{
		Search:     q.Search,
		Category:   q.Category,
		Tag:        q.Tag,
		PublicOnly: true,
		Page:       q.Page,
	})
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Msg("list posts")
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	// listings never carry the full body
	for i := range page.Items {
		page.Items[i].Content = ""
	}
	utils.Success(w, http.StatusOK, utils.M{"data": page})
}

// GET /api/blog/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	post, err := h.store.GetPublic(ctx, ps.ByName("id"))
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidID):
		utils.Fail(w, http.StatusNotFound, "Post not found")
	case err != nil:
		logx.FromContext(ctx).Error().Err(err).Msg("get post")
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch post")
	default:
		utils.Success(w, http.StatusOK, utils.M{"data": post})
	}
}
