package controllers

import (
	"errors"
	"net/http"

	"DoctorPortal/middleware"
	"DoctorPortal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds what every route needs. Routes are registered per resource
// by the methods in this package.
type Handler struct {
	svc      *services.Service
	verifier middleware.Verifier
	users    middleware.UserLookup
	log      *zap.Logger
}

func NewHandler(svc *services.Service, verifier middleware.Verifier, users middleware.UserLookup, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, verifier: verifier, users: users, log: log}
}

func (h *Handler) authenticated() gin.HandlerFunc {
	return middleware.RequireAuthenticated(h.verifier)
}

func (h *Handler) admin() gin.HandlerFunc {
	return middleware.RequireAdmin(h.users, h.log)
}

func message(msg string) gin.H {
	return gin.H{"message": msg}
}

// fail maps service errors onto status codes. Store and driver errors are
// not echoed to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, message(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, message("Forbidden access"))
	case errors.Is(err, services.ErrUpstream):
		c.JSON(http.StatusBadGateway, message("Payment provider unavailable"))
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, message("Internal server error"))
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, message(err.Error()))
}
