// Package packages serves the public package catalogue and the admin
// package update endpoint.
package packages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/brochure"
	"wanderlust/logx"
	"wanderlust/models"
	"wanderlust/rdx"
	"wanderlust/services"
	"wanderlust/utils"
	"wanderlust/validation"
)

const (
	featuredLimit = 6
	dbTimeout     = 5 * time.Second
)

type Store interface {
	List(ctx context.Context, f services.PackageFilter) (*services.Page[models.Package], error)
	Get(ctx context.Context, id string) (*models.Package, error)
	Featured(ctx context.Context, limit int) ([]models.Package, error)
	Update(ctx context.Context, id string, in *validation.PackageUpdateInput) (services.Outcome, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
}

type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type Handler struct {
	store     Store
	cache     Cache
	rv        Revalidator
	publicURL string
}

func NewHandler(store Store, cache Cache, rv Revalidator, publicURL string) *Handler {
	return &Handler{store: store, cache: cache, rv: rv, publicURL: publicURL}
}

// GET /api/packages
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	page, err := h.store.List(ctx, services.PackageFilter{
		Search:      q.Search,
		Category:    q.Category,
		VisibleOnly: true,
		Page:        q.Page,
	})
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Msg("list packages")
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch packages")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": page})
}

// GET /api/packages/:id
//
// "featured" shares the route because httprouter cannot hold a static
// segment beside :id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "featured" {
		h.Featured(w, r, ps)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	h.cached(w, r.WithContext(ctx), rdx.PackageKey(id), func() (any, error) {
		return h.store.Get(ctx, id)
	})
}

// GET /api/packages/featured
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	h.cached(w, r.WithContext(ctx), rdx.FeaturedPackagesKey, func() (any, error) {
		return h.store.Featured(ctx, featuredLimit)
	})
}

// cached serves key from the cache, falling back to load and storing the
// encoded {success, data} body. Cache failures only cost a database read.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, key string, load func() (any, error)) {
	ctx := r.Context()
	log := logx.FromContext(ctx)

	if body, ok, err := h.cache.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read")
	} else if ok {
		w.Header().Set("X-Cache", "HIT")
		utils.RespondWithRaw(w, http.StatusOK, body)
		return
	}

	data, err := load()
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidID):
		utils.Fail(w, http.StatusNotFound, "Package not found")
		return
	case err != nil:
		log.Error().Err(err).Str("key", key).Msg("load packages")
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch package data")
		return
	}

	body, err := json.Marshal(utils.M{"success": true, "data": data})
	if err != nil {
		log.Error().Err(err).Msg("encode packages")
		utils.Fail(w, http.StatusInternalServerError, "Failed to fetch package data")
		return
	}
	if err := h.cache.Set(ctx, key, body); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write")
	}
	w.Header().Set("X-Cache", "MISS")
	utils.RespondWithRaw(w, http.StatusOK, body)
}

// PUT /api/packages/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in validation.PackageUpdateInput
	if err := validation.Decode(r, &in); err != nil {
		utils.Fail(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	id := ps.ByName("id")
	outcome, err := h.store.Update(ctx, id, &in)
	if err != nil && !errors.Is(err, services.ErrInvalidID) {
		logx.FromContext(ctx).Error().Err(err).Str("package_id", id).Msg("update package")
		utils.Fail(w, http.StatusInternalServerError, "Failed to update package")
		return
	}
	if !outcome.Changed() {
		utils.Fail(w, http.StatusNotFound, "Package not found or unchanged")
		return
	}

	h.rv.Revalidate(ctx, "/packages", "/packages/"+id, "/admin/packages")
	utils.Success(w, http.StatusOK, utils.M{"message": "Package updated successfully"})
}

// GET /api/packages/:id/brochure
func (h *Handler) Brochure(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), dbTimeout)
	defer cancel()

	pkg, err := h.store.Get(ctx, ps.ByName("id"))
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidID):
		utils.Fail(w, http.StatusNotFound, "Package not found")
		return
	case err != nil:
		logx.FromContext(ctx).Error().Err(err).Msg("brochure: load package")
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate brochure")
		return
	}
	if !pkg.Visible() {
		utils.Fail(w, http.StatusNotFound, "Package not found")
		return
	}

	var buf bytes.Buffer
	if err := brochure.Render(&buf, pkg, h.publicURL+"/packages/"+pkg.ID.Hex()); err != nil {
		logx.FromContext(ctx).Error().Err(err).Msg("brochure: render")
		utils.Fail(w, http.StatusInternalServerError, "Failed to generate brochure")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+brochure.Filename(pkg)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
