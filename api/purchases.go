package api

import (
	"net/http"

	"github.com/Domenick1991/travelstore/internal/service/purchases"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	service purchases.PurchaseUseCase
}

func NewPurchaseHandler(service purchases.PurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterUser(router *gin.RouterGroup) {
	router.GET("", h.mine)
}

func (h *PurchaseHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.all)
}

func (h *PurchaseHandler) mine(c *gin.Context) {
	views, err := h.service.ListForUser(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *PurchaseHandler) all(c *gin.Context) {
	views, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
