package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/service/auth"
	"github.com/Domenick1991/travelstore/internal/session"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Authenticate resolves the Bearer token to a live session. Tokens whose
// session was signed out are refused even before they expire.
func Authenticate(authService auth.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		sess, err := authService.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			status, message := statusFor(err)
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}
	}
	sess, _ := v.(session.Session)
	return sess
}

type RequestLocker interface {
	AcquireRequestLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	CompleteRequest(ctx context.Context, key string, ttl time.Duration) error
	ReleaseRequestLock(ctx context.Context, key string) error
}

// Idempotency refuses a second request carrying the same Idempotency-Key
// for the same user. A key is released when its request fails so the client
// can retry; a successful request keeps it for keepTTL. Requests without the
// header, or when the lock store is unreachable, pass through.
func Idempotency(locker RequestLocker, lockTTL, keepTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if key == "" || locker == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		scoped := currentSession(c).UserID + ":" + key
		acquired, err := locker.AcquireRequestLock(ctx, scoped, lockTTL)
		if err != nil {
			log.Printf("WARNING: idempotency lock %s: %v", scoped, err)
			c.Next()
			return
		}
		if !acquired {
			c.Header("X-Idempotency-Hit", "true")
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request already processed"})
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusMultipleChoices {
			err = locker.CompleteRequest(context.WithoutCancel(ctx), scoped, keepTTL)
		} else {
			err = locker.ReleaseRequestLock(context.WithoutCancel(ctx), scoped)
		}
		if err != nil {
			log.Printf("WARNING: idempotency finish %s: %v", scoped, err)
		}
	}
}
