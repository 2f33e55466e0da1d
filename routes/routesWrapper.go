package routes

import (
	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, h *Handlers) {
	AddHealthRoutes(router, h)
	AddPackageRoutes(router, h)
	AddBlogRoutes(router, h)
	AddInquiryRoutes(router, h)
	AddAuthRoutes(router, h)
	AddPageRoutes(router, h)
	AddAccountRoutes(router, h)
	AddAdminRoutes(router, h)
	AddLiveRoutes(router, h)
}
