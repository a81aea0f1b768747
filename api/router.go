package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/service/auth"
	"github.com/Domenick1991/travelstore/internal/service/catalog"
	"github.com/Domenick1991/travelstore/internal/service/checkout"
	"github.com/Domenick1991/travelstore/internal/service/purchases"
	"github.com/Domenick1991/travelstore/internal/service/reservations"
	"github.com/Domenick1991/travelstore/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	idempotencyLockTTL = 30 * time.Second
	idempotencyKeepTTL = 24 * time.Hour
)

type HealthCheck func(ctx context.Context) error

type Services struct {
	Auth         auth.AuthUseCase
	Catalog      catalog.CatalogUseCase
	Checkout     checkout.CheckoutUseCase
	Purchases    purchases.PurchaseUseCase
	Reservations reservations.ReservationUseCase
	Realtime     ChangeSubscriber
	Blobs        storage.BlobStore
	Locker       RequestLocker
	Health       map[string]HealthCheck
}

func NewRouter(s Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", healthz(s.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	authn := Authenticate(s.Auth)
	shopper := []gin.HandlerFunc{authn, RequireRole(domain.RoleUser)}
	admin := []gin.HandlerFunc{authn, RequireRole(domain.RoleAdmin)}

	authHandler := NewAuthHandler(s.Auth)
	authHandler.RegisterPublic(v1.Group("/auth"))
	authHandler.RegisterPrivate(v1.Group("/auth", authn))

	packages := NewPackageHandler(s.Catalog)
	packages.RegisterPublic(v1.Group("/packages"))
	packages.RegisterAdmin(v1.Group("/packages", admin...))

	checkoutHandler := NewCheckoutHandler(s.Checkout)
	checkoutHandler.RegisterCart(v1.Group("/cart", shopper...))
	checkoutHandler.RegisterCheckout(v1.Group("/checkout", shopper...), Idempotency(s.Locker, idempotencyLockTTL, idempotencyKeepTTL))

	purchaseHandler := NewPurchaseHandler(s.Purchases)
	purchaseHandler.RegisterUser(v1.Group("/purchases", shopper...))
	purchaseHandler.RegisterAdmin(v1.Group("/admin/purchases", admin...))

	reservationHandler := NewReservationHandler(s.Reservations)
	reservationHandler.RegisterUser(v1.Group("/reservations", shopper...))
	reservationHandler.RegisterAdmin(v1.Group("/admin/reservations", admin...))

	if s.Realtime != nil {
		NewRealtimeHandler(s.Realtime).Register(v1.Group("/realtime", admin...))
	}
	if s.Blobs != nil {
		NewBlobHandler(s.Blobs).Register(v1.Group("/blobs"))
	}

	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
