package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/travelstore/internal/cart"
	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/service/checkout"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	service checkout.CheckoutUseCase
}

type addItemRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

type payRequest struct {
	CardNumber string `json:"card_number" binding:"luhn"`
	Expiry     string `json:"expiry" binding:"required,expiry"`
	CVC        string `json:"cvc" binding:"required,cvc"`
}

type cartResponse struct {
	Items []domain.TravelPackage `json:"items"`
	Size  int                    `json:"size"`
}

func NewCheckoutHandler(service checkout.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterCart(router *gin.RouterGroup) {
	router.GET("", h.cart)
	router.POST("/items", h.addItem)
	router.DELETE("", h.clear)
}

// RegisterCheckout mounts pay and reserve behind the given middleware,
// normally the idempotency guard.
func (h *CheckoutHandler) RegisterCheckout(router *gin.RouterGroup, guard ...gin.HandlerFunc) {
	chain := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), handler)
	}
	router.POST("/pay", chain(h.pay)...)
	router.POST("/reserve", chain(h.reserve)...)
}

func (h *CheckoutHandler) cart(c *gin.Context) {
	ct, err := h.service.Cart(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(ct))
}

func (h *CheckoutHandler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct, err := h.service.AddToCart(c.Request.Context(), currentSession(c), req.PackageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(ct))
}

func (h *CheckoutHandler) clear(c *gin.Context) {
	if err := h.service.ClearCart(c.Request.Context(), currentSession(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) pay(c *gin.Context) {
	sess := currentSession(c)

	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// an empty cart is reported before any card problem
		ct, cartErr := h.service.Cart(c.Request.Context(), sess)
		if cartErr == nil && ct.Empty() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cardMessage(verrs)})
		return
	}

	outcome, err := h.service.Pay(c.Request.Context(), sess, checkout.CardForm{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVC:    req.CVC,
	})
	h.respondOutcome(c, outcome, err)
}

func (h *CheckoutHandler) reserve(c *gin.Context) {
	outcome, err := h.service.Reserve(c.Request.Context(), currentSession(c))
	h.respondOutcome(c, outcome, err)
}

func (h *CheckoutHandler) respondOutcome(c *gin.Context, outcome *checkout.Outcome, err error) {
	if err != nil {
		status, message := statusFor(err)
		c.JSON(status, gin.H{"error": message, "outcome": outcome})
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func toCartResponse(ct *cart.Cart) cartResponse {
	return cartResponse{Items: ct.Snapshot(), Size: ct.Size()}
}
