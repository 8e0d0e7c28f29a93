package cachesync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntentConsumeOnce(t *testing.T) {
	store := NewIntentStore(time.Minute)

	store.Register("tacos-el-gordo", "wishlist-1")

	assert.True(t, store.Consume("tacos-el-gordo", "wishlist-1"))
	assert.False(t, store.Consume("tacos-el-gordo", "wishlist-1"))
}

func TestIntentKeyedByPair(t *testing.T) {
	store := NewIntentStore(time.Minute)

	store.Register("tacos-el-gordo", "wishlist-1")

	assert.False(t, store.Consume("tacos-el-gordo", "wishlist-2"))
	assert.False(t, store.Consume("other-slug", "wishlist-1"))
	assert.True(t, store.Consume("tacos-el-gordo", "wishlist-1"))
}

func TestIntentExpires(t *testing.T) {
	store := NewIntentStore(time.Nanosecond)

	store.Register("tacos-el-gordo", "wishlist-1")
	time.Sleep(time.Millisecond)

	assert.False(t, store.Consume("tacos-el-gordo", "wishlist-1"))
}

func TestIntentZeroTTLUsesDefault(t *testing.T) {
	store := NewIntentStore(0)

	store.Register("tacos-el-gordo", "wishlist-1")

	assert.True(t, store.Consume("tacos-el-gordo", "wishlist-1"))
}
