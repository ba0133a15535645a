package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) User(router *gin.Engine) {
	router.GET("/user", h.authenticated(), h.FetchAllUsers)
	router.GET("/admin/:email", h.CheckAdmin)
	router.PUT("/user/admin/:email", h.authenticated(), h.admin(), h.MakeAdmin)
	router.PUT("/user/:email", h.SaveUser)
}

func (h *Handler) FetchAllUsers(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) CheckAdmin(c *gin.Context) {
	isAdmin, err := h.svc.IsAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": isAdmin})
}

func (h *Handler) MakeAdmin(c *gin.Context) {
	res, err := h.svc.MakeAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

/*
* Get email from param
* Bind the profile fields
* Pass to the services, which also issue the token
 */
func (h *Handler) SaveUser(c *gin.Context) {
	var profile map[string]interface{}
	if err := c.ShouldBindJSON(&profile); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.SaveUser(c.Request.Context(), c.Param("email"), profile)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
