// Package realtime fans out change notifications for document paths such as
// "reservations" or "reservations/<id>" over Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

type Hub struct {
	client *redis.Client
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{client: client}
}

// Change is the payload delivered to subscribers.
type Change struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Record any    `json:"record,omitempty"`
}

// Publish sends change to path and to every parent path, so a subscriber on
// "reservations" also sees "reservations/<id>".
func (h *Hub) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	for _, p := range pathAndParents(change.Path) {
		if err := h.client.Publish(ctx, channel(p), payload).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", p, err)
		}
	}
	return nil
}

// Subscribe calls onChange for every payload published to path until the
// returned unsubscribe func is called or ctx ends. onChange runs on a single
// goroutine.
func (h *Hub) Subscribe(ctx context.Context, path string, onChange func([]byte)) (func(), error) {
	ps := h.client.Subscribe(ctx, channel(path))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := ps.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onChange([]byte(msg.Payload))
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				log.Printf("realtime: close subscription %s: %v", path, err)
			}
			<-done
		})
	}
	return unsubscribe, nil
}

func channel(path string) string {
	return "realtime:" + strings.Trim(path, "/")
}

func pathAndParents(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := make([]string, 0, len(parts))
	for i := len(parts); i > 0; i-- {
		out = append(out, strings.Join(parts[:i], "/"))
	}
	return out
}
