package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const pendingChanges = 32

type ChangeSubscriber interface {
	Subscribe(ctx context.Context, path string, onChange func([]byte)) (func(), error)
}

// RealtimeHandler streams changes under a path as Server-Sent Events.
type RealtimeHandler struct {
	hub ChangeSubscriber
}

func NewRealtimeHandler(hub ChangeSubscriber) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

func (h *RealtimeHandler) Register(router *gin.RouterGroup) {
	router.GET("/*path", h.stream)
}

func (h *RealtimeHandler) stream(c *gin.Context) {
	path := strings.Trim(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	ctx := c.Request.Context()
	changes := make(chan []byte, pendingChanges)
	unsubscribe, err := h.hub.Subscribe(ctx, path, func(payload []byte) {
		select {
		case changes <- payload:
		default:
			log.Printf("WARNING: realtime %s: client is slow, dropping change", path)
		}
	})
	if err != nil {
		log.Printf("realtime subscribe %s: %v", path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "realtime is unavailable"})
		return
	}
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		payload, ok := nextChange(ctx, changes)
		if !ok {
			return false
		}
		c.SSEvent("change", string(payload))
		return true
	})
}

// nextChange delivers pending changes before noticing a closed client.
func nextChange(ctx context.Context, changes <-chan []byte) ([]byte, bool) {
	select {
	case payload := <-changes:
		return payload, true
	default:
	}
	select {
	case payload := <-changes:
		return payload, true
	case <-ctx.Done():
		return nil, false
	}
}
