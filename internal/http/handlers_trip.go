// README: Trip handlers; creation, membership, bulk creation, departure.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cakeline/internal/http/middleware"
	"cakeline/internal/modules/trip"
	"cakeline/internal/types"
)

type createTripReq struct {
	DriverType    string  `json:"driver_type" binding:"required"`
	TripDate      string  `json:"trip_date" binding:"required"`
	DepartureTime *string `json:"departure_time"`
}

func (s *Server) CreateTrip(c *gin.Context) {
	var req createTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	date, departure, ok := parseTripTimes(c, req.TripDate, req.DepartureTime)
	if !ok {
		return
	}
	t, err := s.trip.Create(c.Request.Context(), trip.CreateCommand{
		DriverType:    req.DriverType,
		TripDate:      date,
		DepartureTime: departure,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": t})
}

type createTripFromOrdersReq struct {
	createTripReq
	OrderIDs []string `json:"order_ids" binding:"required"`
}

func (s *Server) CreateTripFromOrders(c *gin.Context) {
	var req createTripFromOrdersReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	date, departure, ok := parseTripTimes(c, req.TripDate, req.DepartureTime)
	if !ok {
		return
	}
	ids := make([]types.ID, len(req.OrderIDs))
	for i, id := range req.OrderIDs {
		ids[i] = types.ID(id)
	}
	res, err := s.trip.CreateFromOrders(c.Request.Context(), trip.BulkCreateCommand{
		DriverType:    req.DriverType,
		TripDate:      date,
		OrderIDs:      ids,
		Actor:         middleware.Actor(c),
		DepartureTime: departure,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"trip":                res.Trip,
		"status_breakdown":    res.Breakdown,
		"has_non_ready":       res.HasNonReady,
		"skipped_order_ids":   res.SkippedOrderIDs,
		"assignment_warnings": res.AssignWarnings,
	})
}

func (s *Server) ListTrips(c *gin.Context) {
	driverType := c.Query("driver_type")
	dateStr := c.Query("date")
	if driverType == "" || dateStr == "" {
		writeError(c, http.StatusBadRequest, "driver_type and date are required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	trips, err := s.trip.ListByDriverAndDate(c.Request.Context(), driverType, date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (s *Server) GetTrip(c *gin.Context) {
	t, err := s.trip.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": t})
}

func (s *Server) AddOrderToTrip(c *gin.Context) {
	err := s.trip.AddOrder(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(c.Param("orderId")), middleware.Actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) RemoveOrderFromTrip(c *gin.Context) {
	err := s.trip.RemoveOrder(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(c.Param("orderId")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DepartTrip(c *gin.Context) {
	if err := s.trip.Depart(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": trip.StatusDeparted})
}

func parseTripTimes(c *gin.Context, dateStr string, departureStr *string) (time.Time, *time.Time, bool) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		writeError(c, http.StatusBadRequest, "trip_date must be YYYY-MM-DD")
		return time.Time{}, nil, false
	}
	var departure *time.Time
	if departureStr != nil {
		t, err := time.Parse(time.RFC3339, *departureStr)
		if err != nil {
			writeError(c, http.StatusBadRequest, "departure_time must be RFC3339")
			return time.Time{}, nil, false
		}
		departure = &t
	}
	return date, departure, true
}
