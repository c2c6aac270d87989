package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/services"
)

// Services are the collaborators the fund API dispatches to. Quotes may be
// nil when live quotes are disabled.
type Services struct {
	Auth          *services.AuthService
	Fund          *services.FundService
	Portfolio     *services.PortfolioService
	Notifications *services.NotificationService
	Proofs        *services.ProofService
	Snapshots     *services.SnapshotService
	Quotes        *services.QuoteWorker
}

type dispatchFunc func(ctx context.Context, c *gin.Context) (interface{}, error)

type route struct {
	admin bool
	fn    dispatchFunc
}

// FundHandler serves GET /api?page=... and POST /api {action: ...}.
type FundHandler struct {
	svc     Services
	pages   map[string]route
	actions map[string]route
}

func NewFundHandler(svc Services) *FundHandler {
	h := &FundHandler{svc: svc}
	h.pages = h.pageRoutes()
	h.actions = h.actionRoutes()
	return h
}

// GetPage dispatches a read on the page query parameter. Admin pages take
// the caller's identity from adminEmail.
func (h *FundHandler) GetPage(c *gin.Context) {
	name := c.Query("page")
	r, ok := h.pages[name]
	if !ok {
		metrics.APICallsTotal.WithLabelValues("page", "invalid", "error").Inc()
		respondError(c, validation("Invalid page parameter"))
		return
	}

	if r.admin {
		if err := h.svc.Auth.EnsureAdmin(c.Query("adminEmail")); err != nil {
			metrics.APICallsTotal.WithLabelValues("page", name, "unauthorized").Inc()
			respondError(c, err)
			return
		}
	}

	data, err := r.fn(c.Request.Context(), c)
	if err != nil {
		metrics.APICallsTotal.WithLabelValues("page", name, "error").Inc()
		respondError(c, err)
		return
	}
	metrics.APICallsTotal.WithLabelValues("page", name, "success").Inc()
	respondOK(c, data)
}

// PostAction dispatches a write on the body's action field. The body is
// bound twice: once for the action envelope, once for the action payload.
func (h *FundHandler) PostAction(c *gin.Context) {
	var req models.ActionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		metrics.APICallsTotal.WithLabelValues("action", "invalid", "error").Inc()
		respondError(c, badRequest(err))
		return
	}

	r, ok := h.actions[req.Action]
	if !ok {
		metrics.APICallsTotal.WithLabelValues("action", "invalid", "error").Inc()
		respondError(c, validation("Invalid action"))
		return
	}

	if r.admin {
		if err := h.svc.Auth.EnsureAdmin(req.AdminEmail); err != nil {
			metrics.APICallsTotal.WithLabelValues("action", req.Action, "unauthorized").Inc()
			respondError(c, err)
			return
		}
	}

	data, err := r.fn(c.Request.Context(), c)
	if err != nil {
		metrics.APICallsTotal.WithLabelValues("action", req.Action, "error").Inc()
		respondError(c, err)
		return
	}
	metrics.APICallsTotal.WithLabelValues("action", req.Action, "success").Inc()
	respondOK(c, data)
}

// bind decodes the action payload from the cached request body.
func bind[T any](c *gin.Context) (T, error) {
	var v T
	if err := c.ShouldBindBodyWith(&v, binding.JSON); err != nil {
		return v, badRequest(err)
	}
	return v, nil
}

// NotFound answers unknown /api paths with the error envelope.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"status": statusError, "message": "not found"})
}

func queryEmail(c *gin.Context) string {
	return strings.TrimSpace(c.Query("email"))
}
