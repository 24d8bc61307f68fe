// README: Order handlers; intake, approval cycle, kitchen control, lifecycle.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cakeline/internal/http/middleware"
	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

type createOrderReq struct {
	CustomerName    string  `json:"customer_name" binding:"required"`
	CakeDescription string  `json:"cake_description"`
	DeliveryDate    string  `json:"delivery_date" binding:"required"`
	DeliverySlot    *string `json:"delivery_slot"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.DeliveryDate, time.Local)
	if err != nil {
		writeError(c, http.StatusBadRequest, "delivery_date must be YYYY-MM-DD")
		return
	}
	var slot *order.TimeSlot
	if req.DeliverySlot != nil {
		ts := order.TimeSlot(*req.DeliverySlot)
		slot = &ts
	}
	id, err := s.order.Create(c.Request.Context(), order.CreateCommand{
		CustomerName:    req.CustomerName,
		CakeDescription: req.CakeDescription,
		DeliveryDate:    date,
		DeliverySlot:    slot,
		Actor:           middleware.Actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": id, "status": order.StatusInQueue})
}

func (s *Server) ListOrders(c *gin.Context) {
	showClosed := c.Query("include_closed") == "true"
	orders, err := s.order.List(c.Request.Context(), nil, !showClosed)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) GetOrder(c *gin.Context) {
	o, err := s.order.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":          o,
		"kitchen_status": order.DeriveKitchenStatus(o),
		"revision_label": order.RevisionLabel(o.Status, o.RevisionCount),
	})
}

func (s *Server) OrderLogs(c *gin.Context) {
	logs, err := s.order.Logs(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) OrderRevisions(c *gin.Context) {
	revs, err := s.order.Revisions(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revisions": revs})
}

func (s *Server) SetKitchenStatus(c *gin.Context) {
	var req struct {
		KitchenStatus string `json:"kitchen_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	err := s.order.SetKitchenStatus(c.Request.Context(), order.SetKitchenStatusCommand{
		OrderID: types.ID(c.Param("id")),
		Kitchen: order.KitchenStatus(req.KitchenStatus),
		Actor:   middleware.Actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kitchen_status": req.KitchenStatus})
}

func (s *Server) SubmitPhotos(c *gin.Context) {
	var req struct {
		Photos []string `json:"photos" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	err := s.order.SubmitPhotos(c.Request.Context(), order.SubmitPhotosCommand{
		OrderID: types.ID(c.Param("id")),
		Photos:  req.Photos,
		Actor:   middleware.Actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusPendingApproval})
}

func (s *Server) ApproveOrder(c *gin.Context) {
	var req struct {
		AddToGallery bool     `json:"add_to_gallery"`
		GalleryTags  []string `json:"gallery_tags"`
	}
	// Body is optional for a plain approve.
	_ = c.ShouldBindJSON(&req)

	res, err := s.order.Approve(c.Request.Context(), order.ApproveCommand{
		OrderID:      types.ID(c.Param("id")),
		Actor:        middleware.Actor(c),
		AddToGallery: req.AddToGallery,
		GalleryTags:  req.GalleryTags,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        order.StatusReadyToDeliver,
		"already_ready": res.AlreadyReady,
		"promoted":      res.Promoted,
		"warning":       res.Warning,
	})
}

func (s *Server) RequestRevision(c *gin.Context) {
	var req struct {
		Notes string `json:"notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "revision notes required")
		return
	}
	err := s.order.RequestRevision(c.Request.Context(), order.RequestRevisionCommand{
		OrderID: types.ID(c.Param("id")),
		Notes:   req.Notes,
		Actor:   middleware.Actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusNeedsRevision})
}

func (s *Server) AssignDriver(c *gin.Context) {
	var req struct {
		DriverType  string `json:"driver_type" binding:"required"`
		VehicleInfo string `json:"vehicle_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	vehicle := req.VehicleInfo
	if vehicle == "" {
		if v, err := s.settings.DriverVehicle(c.Request.Context(), req.DriverType); err == nil {
			vehicle = v
		}
	}
	err := s.order.AssignDriver(c.Request.Context(), order.AssignDriverCommand{
		OrderID:     types.ID(c.Param("id")),
		DriverType:  req.DriverType,
		VehicleInfo: vehicle,
		Actor:       middleware.Actor(c),
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver_type": req.DriverType})
}

func (s *Server) StartDelivery(c *gin.Context) {
	s.transition(c, s.order.StartDelivery, order.StatusInDelivery)
}

func (s *Server) MarkDelivered(c *gin.Context) {
	s.transition(c, s.order.MarkDelivered, order.StatusWaitingFeedback)
}

func (s *Server) FinishOrder(c *gin.Context) {
	s.transition(c, s.order.Finish, order.StatusFinished)
}

func (s *Server) ArchiveOrder(c *gin.Context) {
	s.transition(c, s.order.Archive, order.StatusArchived)
}

func (s *Server) CancelOrder(c *gin.Context) {
	s.transition(c, s.order.Cancel, order.StatusCancelled)
}

func (s *Server) transition(c *gin.Context, fn func(context.Context, order.TransitionCommand) error, to order.Status) {
	var req struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&req)

	err := fn(c.Request.Context(), order.TransitionCommand{
		OrderID: types.ID(c.Param("id")),
		Actor:   middleware.Actor(c),
		Note:    req.Note,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": to})
}
