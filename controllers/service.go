package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Service(router *gin.Engine) {
	router.GET("/service", h.ListServices)
	router.GET("/available", h.AvailableServices)
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.svc.ListServiceNames(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

/*
* Get date from the query
* Pass to the services
 */
func (h *Handler) AvailableServices(c *gin.Context) {
	services, err := h.svc.AvailableServices(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}
