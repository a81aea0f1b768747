package cache

import (
	"testing"
	"time"

	"github.com/Domenick1991/travelstore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Addr: "localhost:6379"})
	defer client.Close()

	c := NewRedisCache(client, time.Minute, time.Hour)
	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.packagesTTL)
	assert.Equal(t, time.Hour, c.cartTTL)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:packages", packagesKey())
	assert.Equal(t, "cart:user:u1", cartKey("u1"))
	assert.Equal(t, "idempotency:abc", requestKey("abc"))
}

func TestDecodeCart(t *testing.T) {
	ct, err := decodeCart([]string{
		`{"id":"p1","title":"Cusco","price":"450"}`,
		`{"id":"p1","title":"Cusco","price":"450"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ct.Size())
	assert.Equal(t, "p1", ct.Items[1].ID)

	empty, err := decodeCart(nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	_, err = decodeCart([]string{"not json"})
	assert.Error(t, err)
}
