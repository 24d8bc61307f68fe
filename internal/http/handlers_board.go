// README: Board, settings, and gallery read handlers.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cakeline/internal/modules/board"
	"cakeline/internal/modules/order"
	"cakeline/internal/modules/settings"
)

func (s *Server) DeliveryBoard(c *gin.Context) {
	now := time.Now()
	entries, err := s.board.DeliveryBoard(c.Request.Context(),
		board.StatusFilter(c.Query("status")),
		board.DateBucket(c.Query("date")),
		board.SlotBucket(c.Query("slot")),
		now,
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	type entryResp struct {
		Order         *order.Order     `json:"order"`
		DateBucket    board.DateBucket `json:"date_bucket"`
		SlotBucket    board.SlotBucket `json:"slot_bucket,omitempty"`
		RevisionLabel string           `json:"revision_label"`
	}
	out := make([]entryResp, len(entries))
	for i, e := range entries {
		out[i] = entryResp{
			Order:         e.Order,
			DateBucket:    e.DateBucket,
			SlotBucket:    e.SlotBucket,
			RevisionLabel: e.RevisionLabel,
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": out, "as_of": now})
}

func (s *Server) KitchenBoard(c *gin.Context) {
	groups, err := s.board.KitchenBoard(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	type column struct {
		KitchenStatus order.KitchenStatus `json:"kitchen_status"`
		DisplayName   string              `json:"display_name"`
		ColorTag      string              `json:"color_tag"`
		Orders        []*order.Order      `json:"orders"`
	}
	cols := make([]column, 0, len(groups))
	for _, ks := range order.AllKitchenStatuses() {
		cols = append(cols, column{
			KitchenStatus: ks,
			DisplayName:   ks.DisplayName(),
			ColorTag:      ks.ColorTag(),
			Orders:        groups[ks],
		})
	}
	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

func (s *Server) BoardSummary(c *gin.Context) {
	sum, err := s.board.Summary(c.Request.Context(), time.Now())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) ListDrivers(c *gin.Context) {
	drivers, err := s.settings.Drivers(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

func (s *Server) Catalog(c *gin.Context) {
	kind := settings.CatalogKind(c.Param("kind"))
	switch kind {
	case settings.CatalogShapes, settings.CatalogFlavors, settings.CatalogSizes:
	default:
		writeError(c, http.StatusNotFound, "unknown catalog")
		return
	}
	opts, err := s.settings.Catalog(c.Request.Context(), kind)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": opts})
}

func (s *Server) ListGallery(c *gin.Context) {
	photos, err := s.gallery.List(c.Request.Context(), 0)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}
