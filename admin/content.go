package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/validation"
)

// ContentStore is implemented by the package and blog services: T is the
// model, C the create payload and U the partial update payload.
type ContentStore[T, C, U any] interface {
	Create(ctx context.Context, in *C) (*T, error)
	Update(ctx context.Context, id string, in *U) (services.Outcome, error)
	Delete(ctx context.Context, id string) error
	ToggleVisibility(ctx context.Context, id string, visible bool) (services.Outcome, error)
	UpdateOrder(ctx context.Context, items []services.OrderItem) (int64, error)
}

// Content serves create, update, delete, visibility and reorder for one kind
// of listed content.
type Content[T, C, U any] struct {
	store  ContentStore[T, C, U]
	rv     Revalidator
	entity string
	// public listing path, e.g. /packages; item pages live below it
	publicPath string
	adminPath  string
}

type (
	PackageActions = Content[models.Package, validation.PackageInput, validation.PackageUpdateInput]
	PostActions    = Content[models.BlogPost, validation.PostInput, validation.PostUpdateInput]
)

func NewPackageActions(store ContentStore[models.Package, validation.PackageInput, validation.PackageUpdateInput], rv Revalidator) *PackageActions {
	return &PackageActions{store: store, rv: rv, entity: "Package", publicPath: "/packages", adminPath: "/admin/packages"}
}

func NewPostActions(store ContentStore[models.BlogPost, validation.PostInput, validation.PostUpdateInput], rv Revalidator) *PostActions {
	return &PostActions{store: store, rv: rv, entity: "Post", publicPath: "/blog", adminPath: "/admin/posts"}
}

// revalidate marks the listings stale plus the item page of every id.
func (c *Content[T, C, U]) revalidate(ctx context.Context, ids ...string) {
	paths := []string{"/", c.publicPath, c.adminPath}
	for _, id := range ids {
		paths = append(paths, c.publicPath+"/"+id)
	}
	c.rv.Revalidate(ctx, paths...)
}

func (c *Content[T, C, U]) noun() string {
	return strings.ToLower(c.entity)
}

// Create handles POST /api/admin/{packages,posts}.
func (c *Content[T, C, U]) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	var in C
	if err := validation.Decode(r, &in); err != nil {
		failed(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	created, err := c.store.Create(ctx, &in)
	if errors.Is(err, services.ErrDuplicate) {
		failed(w, http.StatusConflict, "A "+c.noun()+" with this title already exists")
		return
	}
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Str("entity", c.entity).Msg("create")
		failed(w, http.StatusInternalServerError, "Failed to create "+c.noun())
		return
	}

	c.revalidate(ctx)
	respond(w, http.StatusCreated, Result{Success: true, Message: c.entity + " created successfully", Data: created})
}

// Update handles PUT /api/admin/{packages,posts}/:id.
func (c *Content[T, C, U]) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	var in U
	if err := validation.Decode(r, &in); err != nil {
		failed(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	o, err := c.store.Update(ctx, id, &in)
	if c.storeFailed(ctx, w, err, "update", id) {
		return
	}
	if o.Changed() {
		c.revalidate(ctx, id)
	}
	outcome(w, c.entity, o, c.entity+" updated successfully")
}

// Delete handles DELETE /api/admin/{packages,posts}/:id.
func (c *Content[T, C, U]) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	err := c.store.Delete(ctx, id)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidID) {
		respond(w, http.StatusNotFound, Result{Message: c.entity + " not found", Reason: services.NotFound.Reason()})
		return
	}
	if c.storeFailed(ctx, w, err, "delete", id) {
		return
	}

	c.revalidate(ctx, id)
	respond(w, http.StatusOK, Result{Success: true, Message: c.entity + " deleted successfully"})
}

// Visibility handles POST /api/admin/{packages,posts}/:id/visibility.
func (c *Content[T, C, U]) Visibility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	var in validation.VisibilityInput
	if err := validation.Decode(r, &in); err != nil {
		failed(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := ps.ByName("id")
	o, err := c.store.ToggleVisibility(ctx, id, *in.IsVisible)
	if c.storeFailed(ctx, w, err, "toggle visibility", id) {
		return
	}
	if o.Changed() {
		c.revalidate(ctx, id)
	}
	state := "hidden"
	if *in.IsVisible {
		state = "visible"
	}
	outcome(w, c.entity, o, c.entity+" is now "+state)
}

// Reorder handles POST /api/admin/reorder/{packages,posts}. Items are
// applied one by one; the response reports how many documents changed even
// when a later write fails.
func (c *Content[T, C, U]) Reorder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}
	var in validation.ReorderInput
	if err := validation.Decode(r, &in); err != nil {
		failed(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	items := make([]services.OrderItem, len(in.Items))
	ids := make([]string, len(in.Items))
	for i, it := range in.Items {
		items[i] = services.OrderItem{ID: it.ID, Order: it.Order}
		ids[i] = it.ID
	}

	modified, err := c.store.UpdateOrder(ctx, items)
	if modified > 0 {
		// cached item bodies carry the order too
		c.revalidate(ctx, ids...)
	}
	data := map[string]int64{"modified": modified}
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Str("entity", c.entity).Int64("modified", modified).Msg("reorder")
		respond(w, http.StatusInternalServerError, Result{Message: "Failed to update order", Data: data})
		return
	}
	respond(w, http.StatusOK, Result{Success: true, Message: "Order updated", Data: data})
}

// storeFailed handles unexpected errors. ErrInvalidID is left to the
// outcome, which is NotFound in that case.
func (c *Content[T, C, U]) storeFailed(ctx context.Context, w http.ResponseWriter, err error, op, id string) bool {
	if err == nil || errors.Is(err, services.ErrInvalidID) {
		return false
	}
	logx.FromContext(ctx).Error().Err(err).Str("entity", c.entity).Str("id", id).Msg(op)
	failed(w, http.StatusInternalServerError, "Failed to "+op+" "+c.noun())
	return true
}
