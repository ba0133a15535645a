package controllers

import (
	"net/http"

	"DoctorPortal/middleware"
	"DoctorPortal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Booking(router *gin.Engine) {
	booking := router.Group("/booking")
	{
		booking.GET("", h.authenticated(), h.PatientBookings)
		booking.GET("/:id", h.authenticated(), h.FetchBooking)
		booking.PATCH("/:id", h.authenticated(), h.ConfirmPayment)
		booking.POST("", h.CreateBooking)
	}
}

/*
* Patient comes from the query
* Only the patient the token was issued for may list them
 */
func (h *Handler) PatientBookings(c *gin.Context) {
	bookings, err := h.svc.PatientBookings(c.Request.Context(), middleware.Identity(c), c.Query("patient"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) FetchBooking(c *gin.Context) {
	booking, err := h.svc.Booking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	// a missing booking is answered with null, not 404
	c.JSON(http.StatusOK, booking)
}

/*
* Bind the payment
* Pass bookingId and payment to the services
 */
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var p models.Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	conf, err := h.svc.ConfirmPayment(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

/*
* Bind JSON
* And Pass to the service
 */
func (h *Handler) CreateBooking(c *gin.Context) {
	var b models.Booking
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.CreateBooking(c.Request.Context(), b)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
