// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cakeline/internal/http/middleware"
	"cakeline/internal/infra"
	"cakeline/internal/modules/board"
	"cakeline/internal/modules/gallery"
	"cakeline/internal/modules/order"
	"cakeline/internal/modules/settings"
	"cakeline/internal/modules/trip"
)

type ServerDeps struct {
	Order    *order.Service
	Trip     *trip.Service
	Board    *board.Service
	Settings *settings.Service
	Gallery  *gallery.Store
	Verifier infra.TokenVerifier
}

type Server struct {
	order    *order.Service
	trip     *trip.Service
	board    *board.Service
	settings *settings.Service
	gallery  *gallery.Store
	verifier infra.TokenVerifier
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		order:    deps.Order,
		trip:     deps.Trip,
		board:    deps.Board,
		settings: deps.Settings,
		gallery:  deps.Gallery,
		verifier: deps.Verifier,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.Identity(s.verifier))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	orders := api.Group("/orders")
	orders.POST("", s.CreateOrder)
	orders.GET("", s.ListOrders)
	orders.GET("/:id", s.GetOrder)
	orders.GET("/:id/logs", s.OrderLogs)
	orders.GET("/:id/revisions", s.OrderRevisions)
	orders.POST("/:id/kitchen-status", s.SetKitchenStatus)
	orders.POST("/:id/photos", s.SubmitPhotos)
	orders.POST("/:id/approve", s.ApproveOrder)
	orders.POST("/:id/request-revision", s.RequestRevision)
	orders.POST("/:id/assign-driver", s.AssignDriver)
	orders.POST("/:id/start-delivery", s.StartDelivery)
	orders.POST("/:id/delivered", s.MarkDelivered)
	orders.POST("/:id/finish", s.FinishOrder)
	orders.POST("/:id/archive", s.ArchiveOrder)
	orders.POST("/:id/cancel", s.CancelOrder)

	trips := api.Group("/trips")
	trips.POST("", s.CreateTrip)
	trips.POST("/from-orders", s.CreateTripFromOrders)
	trips.GET("", s.ListTrips)
	trips.GET("/:id", s.GetTrip)
	trips.POST("/:id/orders/:orderId", s.AddOrderToTrip)
	trips.DELETE("/:id/orders/:orderId", s.RemoveOrderFromTrip)
	trips.POST("/:id/depart", s.DepartTrip)

	boards := api.Group("/board")
	boards.GET("/delivery", s.DeliveryBoard)
	boards.GET("/kitchen", s.KitchenBoard)
	boards.GET("/summary", s.BoardSummary)

	api.GET("/settings/drivers", s.ListDrivers)
	api.GET("/settings/catalogs/:kind", s.Catalog)
	api.GET("/gallery", s.ListGallery)

	return r
}
