package routes

import (
	"net/http"

	"DoctorPortal/controllers"
	"DoctorPortal/metrics"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine, h *controllers.Handler, m *metrics.Metrics) {

	//public
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello world!")
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	h.Service(r)
	h.Payment(r)

	//mixed: each resource guards its own private routes
	h.Booking(r)
	h.User(r)
	h.Doctor(r)
}
