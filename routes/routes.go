package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/admin"
	"wanderlust/auth"
	"wanderlust/blog"
	"wanderlust/booking"
	"wanderlust/contact"
	"wanderlust/itinerary"
	"wanderlust/live"
	"wanderlust/logx"
	"wanderlust/middleware"
	"wanderlust/models"
	"wanderlust/packages"
	"wanderlust/pages"
	"wanderlust/profile"
	"wanderlust/ratelim"
	"wanderlust/utils"
)

// Handlers bundles everything the router dispatches to. main builds it once.
type Handlers struct {
	Sessions *middleware.Sessions
	Limiter  *ratelim.RateLimiter

	Packages  *packages.Handler
	Blog      *blog.Handler
	Contact   *contact.Handler
	Itinerary *itinerary.Handler
	Booking   *booking.Handler
	Auth      *auth.Handler
	Profile   *profile.Handler
	Pages     *pages.Handler

	PackageActions *admin.PackageActions
	PostActions    *admin.PostActions
	Contacts       *admin.Inbox[models.Contact]
	Itineraries    *admin.Inbox[models.CustomItinerary]
	Bookings       *admin.Inbox[models.Booking]
	Uploads        *admin.Uploads

	Hub         *live.Hub
	LiveOrigins []string

	// Health is pinged by GET /health; nil entries are skipped.
	Health []Pinger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func AddHealthRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, p := range h.Health {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				logx.FromContext(ctx).Warn().Err(err).Msg("health check failed")
				utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.M{"status": "unavailable"})
				return
			}
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}

func AddPackageRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/api/packages", h.Packages.List)
	// also serves /api/packages/featured
	router.GET("/api/packages/:id", h.Packages.Get)
	router.PUT("/api/packages/:id", h.Sessions.RequireAdmin(h.Packages.Update))
	router.GET("/api/packages/:id/brochure", h.Packages.Brochure)
}

func AddBlogRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/api/blog", h.Blog.List)
	router.GET("/api/blog/:id", h.Blog.Get)
}

func AddInquiryRoutes(router *httprouter.Router, h *Handlers) {
	router.POST("/api/contact", h.Limiter.Limit(h.Contact.Submit))
	router.POST("/api/itinerary-request", h.Limiter.Limit(h.Itinerary.Request))
	router.POST("/api/bookings", h.Limiter.Limit(h.Sessions.OptionalAuth(h.Booking.Create)))
}

func AddAuthRoutes(router *httprouter.Router, h *Handlers) {
	router.POST("/api/auth/register", h.Limiter.Limit(h.Auth.Register))
	router.POST("/api/auth/login", h.Limiter.Limit(h.Auth.Login))
	router.POST("/api/auth/logout", h.Auth.Logout)
	router.POST("/api/auth/forgot-password", h.Limiter.Limit(h.Auth.ForgotPassword))
	router.POST("/api/auth/reset-password", h.Limiter.Limit(h.Auth.ResetPassword))
}

func AddPageRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/api/pages/packages", h.Pages.Packages)
	router.GET("/api/pages/blog", h.Pages.Blog)
	router.GET("/api/pages/account", h.Sessions.Authenticate(h.Pages.Account))

	router.GET("/api/pages/admin/dashboard", h.Sessions.RequireAdmin(h.Pages.Dashboard))
	router.GET("/api/pages/admin/packages", h.Sessions.RequireAdmin(h.Pages.AdminPackages))
	router.GET("/api/pages/admin/posts", h.Sessions.RequireAdmin(h.Pages.AdminPosts))
}

func AddAccountRoutes(router *httprouter.Router, h *Handlers) {
	signedIn := h.Sessions.Authenticate
	router.POST("/api/account/password", signedIn(h.Profile.ChangePassword))
	router.PUT("/api/account/profile", signedIn(h.Profile.UpdateProfile))
	router.PUT("/api/account/preferences", signedIn(h.Profile.UpdatePreferences))
	router.GET("/api/account/wishlist", signedIn(h.Profile.Wishlist))
	router.POST("/api/account/wishlist/:packageId", signedIn(h.Profile.AddToWishlist))
	router.DELETE("/api/account/wishlist/:packageId", signedIn(h.Profile.RemoveFromWishlist))
}
