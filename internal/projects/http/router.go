package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.find)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.patch)
	rg.GET("/:id/active-follow-up", h.activeFollowUp)
	rg.POST("/:id/registrations", h.registration)
}
