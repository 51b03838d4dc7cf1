package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"eximbot/internal/repository"
	"eximbot/internal/usecases"
)

// Handler serves the admin order panel: login, pending order pages and
// fulfillment. Health and metrics ride on the same engine.
type Handler struct {
	auth     *usecases.AdminAuth
	workflow *usecases.OrderWorkflow
	db       *pgxpool.Pool
}

func NewHandler(auth *usecases.AdminAuth, workflow *usecases.OrderWorkflow, db *pgxpool.Pool) *Handler {
	return &Handler{auth: auth, workflow: workflow, db: db}
}

func SetupRoutes(r *gin.Engine, auth *usecases.AdminAuth, workflow *usecases.OrderWorkflow, db *pgxpool.Pool, middleware *Middleware) {
	h := NewHandler(auth, workflow, db)

	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20))

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/login", h.Login)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	admin.Use(middleware.RateLimitPerUser(rate.Limit(5), 10))
	{
		admin.GET("/orders", h.ListPendingOrders)
		admin.POST("/orders/:id/fulfill", h.FulfillOrder)
	}
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), loginReq.Username, loginReq.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) ListPendingOrders(c *gin.Context) {
	actorID, ok := actorTelegramID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "No linked Telegram identity"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	orders, totalPages, err := h.workflow.ListPending(c.Request.Context(), actorID, page, pageSize)
	if errors.Is(err, usecases.ErrUnauthorized) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"page":        page,
		"total_pages": totalPages,
	})
}

func (h *Handler) FulfillOrder(c *gin.Context) {
	actorID, ok := actorTelegramID(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "No linked Telegram identity"})
		return
	}

	result := h.workflow.Fulfill(c.Request.Context(), actorID, c.Param("id"))
	switch result.Status {
	case usecases.Fulfilled:
		c.JSON(http.StatusOK, gin.H{
			"status":  "fulfilled",
			"user_id": result.UserID,
			"credits": result.Credits,
		})
	case usecases.FulfillNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case usecases.AlreadyFulfilled:
		c.JSON(http.StatusConflict, gin.H{"error": "Order already fulfilled"})
	default:
		if errors.Is(result.Err, usecases.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
			return
		}
		if errors.Is(result.Err, repository.ErrDuplicate) || errors.Is(result.Err, usecases.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Fulfillment failed"})
	}
}
