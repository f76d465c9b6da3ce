package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/nikolayk812/artistry-cart/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	OwnerHeader = "X-Owner-ID"
	ownerKey    = "OwnerID"
)

type Deps struct {
	Registry   *service.Registry
	Downloader port.Downloader
	Orders     port.OrderRepository
	Logger     logrus.FieldLogger
	Metrics    *metrics.Metrics
}

func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if deps.Downloader == nil {
		return nil, fmt.Errorf("downloader is nil")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	h := &handlers{deps: deps}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger), observe(deps.Metrics))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+OwnerHeader)
		c.Next()
	})

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(requireOwner())
	{
		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:itemID", h.updateCartItem)
		v1.DELETE("/cart/items/:itemID", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.GET("/wishlist", h.getWishlist)
		v1.POST("/wishlist/items", h.addWishlistItem)
		v1.POST("/wishlist/toggle", h.toggleWishlistItem)
		v1.DELETE("/wishlist/items/:itemID", h.removeWishlistItem)

		v1.POST("/checkout", h.checkout)
	}

	return router, nil
}

func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader(OwnerHeader)
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": OwnerHeader + " header is required",
			})
			return
		}

		c.Set(ownerKey, ownerID)
		c.Next()
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request")
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}
