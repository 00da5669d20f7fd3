package router

import (
	"github.com/autodealer/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler served under the API prefix
type Handlers struct {
	Auth      *handler.AuthHandler
	Car       *handler.CarHandler
	Quote     *handler.QuoteHandler
	Lead      *handler.LeadHandler
	Review    *handler.ReviewHandler
	Stats     *handler.StatsHandler
	Admin     *handler.AdminHandler
	Analytics *handler.AnalyticsHandler
	Chat      *handler.ChatHandler
}

// Guards are the access gates applied per route group.
// OptionalAuth resolves a bearer token when present, Auth requires one.
// Enrich runs after the auth guard and tags the request span with the caller.
// Enrich and the limiters may be nil.
type Guards struct {
	Auth         gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	Staff        gin.HandlerFunc
	Admin        gin.HandlerFunc
	Enrich       gin.HandlerFunc
	PublicLimit  gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

// APIGroups builds the route groups of the dealership API.
//
// Public routes accept an optional bearer so staff see internal car fields
// and a signed-in client is linked to the lead they submit. Form endpoints
// that anonymous visitors can hit in a loop sit behind the public limiter.
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	public := NewDomainGroup("public", "").Use(g.OptionalAuth, g.Enrich)
	public.GET("/cars", h.Car.ListCars).
		GET("/cars/featured", h.Car.ListFeatured).
		GET("/cars/:id", h.Car.GetCar).
		GET("/cars/:id/quote", h.Quote.GetQuote).
		GET("/cars/:id/quote.pdf", h.Quote.GetQuotePDF).
		POST("/calculator", h.Quote.Calculate).
		GET("/lead-status", h.Lead.GetLeadStatus).
		GET("/rate", h.Review.GetRateState).
		GET("/reviews", h.Review.ListPublicReviews)

	forms := public.Group("forms", "").Use(g.PublicLimit)
	forms.POST("/leads", h.Lead.CreateLead).
		POST("/rate", h.Review.SubmitReview).
		POST("/analytics/events", h.Analytics.TrackEvent).
		POST("/chat", h.Chat.Chat)

	auth := NewDomainGroup("auth", "/auth").Use(g.AuthLimit)
	auth.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken)

	session := NewDomainGroup("session", "/auth").Use(g.Auth, g.Enrich)
	session.POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	client := NewDomainGroup("client", "/client").Use(g.Auth, g.Enrich)
	client.GET("/leads", h.Lead.ListClientLeads)

	manager := NewDomainGroup("manager", "").Use(g.Auth, g.Enrich, g.Staff)
	manager.GET("/leads", h.Lead.ListLeads).
		GET("/leads/:id", h.Lead.GetLead).
		POST("/leads/:id/claim", h.Lead.ClaimLead).
		PATCH("/leads/:id/status", h.Lead.ChangeStatus).
		GET("/scores/me", h.Stats.MyScores).
		GET("/scores/leaderboard", h.Stats.Leaderboard)

	cars := NewDomainGroup("cars-admin", "/cars").Use(g.Auth, g.Enrich, g.Admin)
	cars.POST("", h.Car.CreateCar).
		PUT("/:id", h.Car.UpdateCar).
		DELETE("/:id", h.Car.DeleteCar).
		PATCH("/:id/status", h.Car.ChangeCarStatus).
		POST("/:id/images/upload-url", h.Car.RequestImageUpload).
		POST("/:id/images", h.Car.AttachImage)

	admin := NewDomainGroup("admin", "/admin").Use(g.Auth, g.Enrich, g.Admin)
	admin.PUT("/leads/:id", h.Lead.AdminUpdateLead).
		GET("/reviews", h.Review.ListReviews).
		PATCH("/reviews/:id/approval", h.Review.SetApproval).
		DELETE("/reviews/:id", h.Review.DeleteReview).
		POST("/managers", h.Admin.CreateManager).
		GET("/managers", h.Admin.ListManagers).
		POST("/users/:id/roles", h.Admin.AssignRole).
		DELETE("/users/:id/roles/:role", h.Admin.RevokeRole).
		GET("/stats/leads", h.Stats.LeadStats).
		GET("/stats/cars", h.Stats.CarStats).
		GET("/analytics", h.Analytics.Summary)

	return []*DomainGroup{public, auth, session, client, manager, cars, admin}
}

// SystemRoutes mounts the probes outside the versioned prefix
func SystemRoutes(engine *gin.Engine, system *handler.SystemHandler) {
	health := engine.Group("/health")
	health.GET("", system.Health)
	health.GET("/ready", system.Ready)
}
