// Package pages assembles the data each site page needs in a single call.
package pages

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/sync/errgroup"

	"wanderlust/logx"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/services"
	"wanderlust/utils"
)

type PackageStore interface {
	List(ctx context.Context, f services.PackageFilter) (*services.Page[models.Package], error)
	Featured(ctx context.Context, limit int) ([]models.Package, error)
	ByIDs(ctx context.Context, ids []string) ([]models.Package, error)
	Count(ctx context.Context, visibleOnly bool) (int64, error)
}

type PostStore interface {
	List(ctx context.Context, f services.PostFilter) (*services.Page[models.BlogPost], error)
	Count(ctx context.Context, publicOnly bool) (int64, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Counter counts submissions in one status; "" counts all.
type Counter interface {
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type Handler struct {
	packages    PackageStore
	posts       PostStore
	users       UserStore
	contacts    Counter
	itineraries Counter
	bookings    Counter
}

func NewHandler(packages PackageStore, posts PostStore, users UserStore, contacts, itineraries, bookings Counter) *Handler {
	return &Handler{
		packages:    packages,
		posts:       posts,
		users:       users,
		contacts:    contacts,
		itineraries: itineraries,
		bookings:    bookings,
	}
}

type PackagesPage struct {
	Featured []models.Package               `json:"featured"`
	Packages *services.Page[models.Package] `json:"packages"`
	Search   string                         `json:"search"`
	Category string                         `json:"category"`
}

type BlogPage struct {
	Posts    *services.Page[models.BlogPost] `json:"posts"`
	Search   string                          `json:"search"`
	Category string                          `json:"category"`
	Tag      string                          `json:"tag"`
}

type Dashboard struct {
	Packages        int64 `json:"packages"`
	VisiblePackages int64 `json:"visiblePackages"`
	Posts           int64 `json:"posts"`
	PublishedPosts  int64 `json:"publishedPosts"`
	Users           int64 `json:"users"`
	NewContacts     int64 `json:"newContacts"`
	NewItineraries  int64 `json:"newItineraries"`
	PendingBookings int64 `json:"pendingBookings"`
}

type AccountPage struct {
	User     *models.User     `json:"user"`
	Wishlist []models.Package `json:"wishlist"`
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error, page string) {
	logx.FromContext(ctx).Error().Err(err).Str("page", page).Msg("load page data")
	utils.Fail(w, http.StatusInternalServerError, "Failed to load page")
}

// GET /api/pages/packages
func (h *Handler) Packages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	view := PackagesPage{Search: q.Search, Category: q.Category}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.Packages, err = h.packages.List(gctx, services.PackageFilter{
			Search: q.Search, Category: q.Category, VisibleOnly: true, Page: q.Page,
		})
		return err
	})
	g.Go(func() (err error) {
		view.Featured, err = h.packages.Featured(gctx, 3)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(ctx, w, err, "packages")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": view})
}

// GET /api/pages/blog
func (h *Handler) Blog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	posts, err := h.posts.List(ctx, services.PostFilter{
		Search: q.Search, Category: q.Category, Tag: q.Tag, PublicOnly: true, Page: q.Page,
	})
	if err != nil {
		h.fail(ctx, w, err, "blog")
		return
	}
	for i := range posts.Items {
		posts.Items[i].Content = ""
	}
	utils.Success(w, http.StatusOK, utils.M{"data": BlogPage{Posts: posts, Search: q.Search, Category: q.Category, Tag: q.Tag}})
}

// GET /api/pages/admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() (err error) {
			*dst, err = fn(gctx)
			return err
		})
	}
	count(&d.Packages, func(c context.Context) (int64, error) { return h.packages.Count(c, false) })
	count(&d.VisiblePackages, func(c context.Context) (int64, error) { return h.packages.Count(c, true) })
	count(&d.Posts, func(c context.Context) (int64, error) { return h.posts.Count(c, false) })
	count(&d.PublishedPosts, func(c context.Context) (int64, error) { return h.posts.Count(c, true) })
	count(&d.Users, h.users.Count)
	count(&d.NewContacts, func(c context.Context) (int64, error) { return h.contacts.CountByStatus(c, models.ContactNew) })
	count(&d.NewItineraries, func(c context.Context) (int64, error) { return h.itineraries.CountByStatus(c, models.ItineraryNew) })
	count(&d.PendingBookings, func(c context.Context) (int64, error) { return h.bookings.CountByStatus(c, models.BookingPending) })

	if err := g.Wait(); err != nil {
		h.fail(ctx, w, err, "dashboard")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": d})
}

// GET /api/pages/admin/packages lists every package, hidden ones included.
func (h *Handler) AdminPackages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	page, err := h.packages.List(ctx, services.PackageFilter{
		Search: q.Search, Category: q.Category, Page: q.Page, PageSize: services.AdminPageSize,
	})
	if err != nil {
		h.fail(ctx, w, err, "admin packages")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": page})
}

// GET /api/pages/admin/posts lists drafts and hidden posts too.
func (h *Handler) AdminPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := utils.ParseQueryOptions(r)
	page, err := h.posts.List(ctx, services.PostFilter{
		Search: q.Search, Category: q.Category, Tag: q.Tag, Page: q.Page, PageSize: services.AdminPageSize,
	})
	if err != nil {
		h.fail(ctx, w, err, "admin posts")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": page})
}

// GET /api/pages/account
func (h *Handler) Account(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.RespondWithJSON(w, http.StatusUnauthorized, utils.M{"success": false, "message": "Unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.Get(ctx, claims.UserID)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidID) {
		utils.RespondWithJSON(w, http.StatusUnauthorized, utils.M{"success": false, "message": "Unauthorized"})
		return
	}
	if err != nil {
		h.fail(ctx, w, err, "account")
		return
	}
	wishlist, err := h.packages.ByIDs(ctx, u.Wishlist)
	if err != nil {
		h.fail(ctx, w, err, "account")
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"data": AccountPage{User: u, Wishlist: wishlist}})
}
