package routes

import (
	"github.com/julienschmidt/httprouter"

	"wanderlust/live"
)

func AddAdminRoutes(router *httprouter.Router, h *Handlers) {
	admin := h.Sessions.RequireAdmin

	router.POST("/api/admin/packages", admin(h.PackageActions.Create))
	router.PUT("/api/admin/packages/:id", admin(h.PackageActions.Update))
	router.DELETE("/api/admin/packages/:id", admin(h.PackageActions.Delete))
	router.POST("/api/admin/packages/:id/visibility", admin(h.PackageActions.Visibility))
	router.POST("/api/admin/reorder/packages", admin(h.PackageActions.Reorder))

	router.POST("/api/admin/posts", admin(h.PostActions.Create))
	router.PUT("/api/admin/posts/:id", admin(h.PostActions.Update))
	router.DELETE("/api/admin/posts/:id", admin(h.PostActions.Delete))
	router.POST("/api/admin/posts/:id/visibility", admin(h.PostActions.Visibility))
	router.POST("/api/admin/reorder/posts", admin(h.PostActions.Reorder))

	router.GET("/api/admin/contacts", admin(h.Contacts.List))
	router.POST("/api/admin/contacts/:id/status", admin(h.Contacts.UpdateStatus))
	router.GET("/api/admin/itineraries", admin(h.Itineraries.List))
	router.POST("/api/admin/itineraries/:id/status", admin(h.Itineraries.UpdateStatus))
	router.GET("/api/admin/bookings", admin(h.Bookings.List))
	router.POST("/api/admin/bookings/:id/status", admin(h.Bookings.UpdateStatus))

	router.POST("/api/admin/uploads", admin(h.Uploads.Upload))
}

// AddLiveRoutes serves the admin activity feed over a websocket.
func AddLiveRoutes(router *httprouter.Router, h *Handlers) {
	router.GET("/api/admin/live", h.Sessions.RequireAdmin(live.Handler(h.Hub, h.LiveOrigins)))
}
