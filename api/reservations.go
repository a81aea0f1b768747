package api

import (
	"net/http"

	"github.com/Domenick1991/travelstore/internal/service/reservations"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservations.ReservationUseCase
}

func NewReservationHandler(service reservations.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterUser(router *gin.RouterGroup) {
	router.GET("", h.mine)
}

func (h *ReservationHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("/:id/settle", h.settle)
	router.DELETE("/:id", h.delete)
}

func (h *ReservationHandler) mine(c *gin.Context) {
	list, err := h.service.ListForUser(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) settle(c *gin.Context) {
	id := c.Param("id")
	result, err := h.service.Settle(c.Request.Context(), id)
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"error": message, "status": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": result})
}

func (h *ReservationHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
