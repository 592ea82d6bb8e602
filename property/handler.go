package property

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/httpx"
)

// Reader is what the handler needs from Service
type Reader interface {
	GetAllProperties(ctx context.Context) ([]Property, error)
	GetCacheMetrics(ctx context.Context) cache.Metrics
}

type Handler struct {
	svc Reader
}

func NewHandler(svc Reader) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /properties/
func (h *Handler) List(c *gin.Context) (*ListResponse, error) {
	items, err := h.svc.GetAllProperties(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return NewListResponse(items), nil
}

// CacheMetrics handles GET /properties/cache-metrics; a counter failure
// is reported in the body, never as a status
func (h *Handler) CacheMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetCacheMetrics(c.Request.Context()))
}

// RegisterRoutes mounts the endpoints under /properties. listMiddleware
// runs only in front of the list endpoint (the page cache).
func RegisterRoutes(r gin.IRouter, h *Handler, listMiddleware ...gin.HandlerFunc) {
	g := r.Group("/properties")
	list := append(append([]gin.HandlerFunc{}, listMiddleware...), httpx.Wrap(h.List))
	g.GET("/", list...)
	g.GET("/cache-metrics", h.CacheMetrics)
}
