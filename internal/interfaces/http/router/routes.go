package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/interfaces/http/handler"
	"github.com/jewelry/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers mounted under the API prefix
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Lookup    *handler.LookupHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Review    *handler.ReviewHandler
	Contact   *handler.ContactHandler
	Dashboard *handler.DashboardHandler
	Realtime  *handler.RealtimeHandler
	System    *handler.SystemHandler
}

// RouteOptions holds middleware attached to individual groups
type RouteOptions struct {
	// ContactLimit throttles POST /contact; nil disables it
	ContactLimit gin.HandlerFunc
	// Admin guards /admin; defaults to middleware.RequireAdmin
	Admin gin.HandlerFunc
}

// APIGroups returns the storefront and back-office route groups
func APIGroups(h Handlers, opts RouteOptions) []*DomainGroup {
	if opts.Admin == nil {
		opts.Admin = middleware.RequireAdmin()
	}

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", h.Auth.Register)
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.RefreshToken)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/session", h.Auth.Session)
	authRoutes.GET("/me", h.Auth.GetCurrentUser)
	authRoutes.PUT("/me", h.Auth.UpdateCurrentUser)
	authRoutes.PUT("/password", h.Auth.ChangePassword)

	catalogRoutes := NewDomainGroup("catalog", "")
	catalogRoutes.GET("/products", h.Product.List)
	catalogRoutes.GET("/products/:id", h.Product.Get)
	catalogRoutes.GET("/products/:id/related", h.Product.Related)
	catalogRoutes.GET("/products/:id/reviews", h.Review.ListForProduct)
	catalogRoutes.POST("/products/:id/reviews", h.Review.Submit)
	catalogRoutes.GET("/categories", h.Category.List)
	catalogRoutes.GET("/metal-types", h.Lookup.ListKind(catalog.LookupMetalType))
	catalogRoutes.GET("/stone-types", h.Lookup.ListKind(catalog.LookupStoneType))
	catalogRoutes.GET("/occasions", h.Lookup.ListKind(catalog.LookupOccasion))

	cartRoutes := NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", h.Cart.Get)
	cartRoutes.DELETE("", h.Cart.Clear)
	cartRoutes.POST("/items", h.Cart.AddItem)
	cartRoutes.PUT("/items/:productId", h.Cart.UpdateItem)
	cartRoutes.DELETE("/items/:productId", h.Cart.RemoveItem)

	orderRoutes := NewDomainGroup("orders", "")
	orderRoutes.POST("/checkout", h.Order.Checkout)
	orderRoutes.GET("/orders", h.Order.ListMine)
	orderRoutes.GET("/orders/:id", h.Order.GetMine)
	orderRoutes.POST("/orders/:id/cancel", h.Order.CancelMine)
	orderRoutes.GET("/orders/:id/invoice", h.Order.InvoiceMine)

	contactRoutes := NewDomainGroup("contact", "/contact")
	if opts.ContactLimit != nil {
		contactRoutes.POST("", opts.ContactLimit, h.Contact.Submit)
	} else {
		contactRoutes.POST("", h.Contact.Submit)
	}

	realtimeRoutes := NewDomainGroup("realtime", "/realtime")
	realtimeRoutes.GET("/stream", h.Realtime.Stream)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/ping", h.System.Ping)

	return []*DomainGroup{
		authRoutes,
		catalogRoutes,
		cartRoutes,
		orderRoutes,
		contactRoutes,
		realtimeRoutes,
		systemRoutes,
		adminGroup(h, opts.Admin),
	}
}

func adminGroup(h Handlers, guard gin.HandlerFunc) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(guard)

	admin.GET("/dashboard", h.Dashboard.Stats)

	products := admin.Group("products", "/products")
	products.GET("", h.Product.AdminList)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.AdminGet)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PUT("/:id/stock", h.Product.SetStock)
	products.PUT("/:id/featured", h.Product.SetFeatured)
	products.POST("/:id/featured/toggle", h.Product.ToggleFeatured)
	products.PUT("/:id/active", h.Product.SetActive)
	products.POST("/:id/images/upload-url", h.Product.RequestImageUpload)
	products.POST("/:id/images", h.Product.AttachImage)
	products.DELETE("/:id/images", h.Product.RemoveImage)

	categories := admin.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.GET("/:id", h.Category.Get)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)

	lookups := admin.Group("lookups", "/lookups/:kind")
	lookups.GET("", h.Lookup.List)
	lookups.POST("", h.Lookup.Create)
	lookups.PUT("/:id", h.Lookup.Rename)
	lookups.DELETE("/:id", h.Lookup.Delete)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.Get)
	orders.PUT("/:id/status", h.Order.UpdateStatus)
	orders.DELETE("/:id", h.Order.Delete)
	orders.GET("/:id/invoice", h.Order.Invoice)

	users := admin.Group("users", "/users")
	users.GET("", h.User.List)
	users.GET("/:id", h.User.Get)
	users.PUT("/:id/role", h.User.UpdateRole)
	users.PUT("/:id/status", h.User.UpdateStatus)
	users.DELETE("/:id", h.User.Delete)

	reviews := admin.Group("reviews", "/reviews")
	reviews.GET("", h.Review.List)
	reviews.POST("/:id/approve", h.Review.Approve)
	reviews.POST("/:id/reject", h.Review.Reject)
	reviews.DELETE("/:id", h.Review.Delete)

	contacts := admin.Group("contact-submissions", "/contact-submissions")
	contacts.GET("", h.Contact.List)
	contacts.GET("/:id", h.Contact.Get)
	contacts.PUT("/:id/status", h.Contact.UpdateStatus)
	contacts.DELETE("/:id", h.Contact.Delete)

	return admin
}
