package controllers

import (
	"net/http"

	"DoctorPortal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Doctor(router *gin.Engine) {
	doctor := router.Group("/doctor", h.authenticated(), h.admin())
	{
		doctor.POST("", h.CreateDoctor)
		doctor.GET("", h.FetchAllDoctors)
		doctor.DELETE("/:email", h.DeleteDoctor)
	}
}

/*
* Bind JSON
* And Pass to the service
 */
func (h *Handler) CreateDoctor(c *gin.Context) {
	var d models.Doctor
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.AddDoctor(c.Request.Context(), d)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) FetchAllDoctors(c *gin.Context) {
	doctors, err := h.svc.Doctors(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

/*
* Extract email from the parameter
* Pass the email to the service
 */
func (h *Handler) DeleteDoctor(c *gin.Context) {
	res, err := h.svc.RemoveDoctor(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
