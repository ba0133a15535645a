package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type intentRequest struct {
	Price float64 `json:"price"`
}

func (h *Handler) Payment(router *gin.Engine) {
	router.POST("/create-payment-intent", h.CreatePaymentIntent)
}

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	secret, err := h.svc.CreatePaymentIntent(c.Request.Context(), req.Price)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}
