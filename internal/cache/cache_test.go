package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestGetJSONMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Minute)

	mock.ExpectGet("event:123").RedisNil()

	var dest cachedEvent
	hit, err := store.GetJSON(context.Background(), "event:123", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJSONHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Minute)

	mock.ExpectGet("event:123").SetVal(`{"id":"123","title":"Summer Festival"}`)

	var dest cachedEvent
	hit, err := store.GetJSON(context.Background(), "event:123", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Summer Festival", dest.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Minute)

	value := cachedEvent{ID: "123", Title: "Summer Festival"}
	raw, err := json.Marshal(value)
	require.NoError(t, err)

	mock.ExpectSet("event:123", raw, time.Minute).SetVal("OK")

	require.NoError(t, store.SetJSON(context.Background(), "event:123", value))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateDropsTagAndPublishes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Minute)

	mock.ExpectKeys("event*").SetVal([]string{"event:123", "event:456"})
	mock.ExpectDel("event:123", "event:456").SetVal(2)
	mock.ExpectPublish(InvalidationChannel, "event").SetVal(1)

	require.NoError(t, store.Invalidate(context.Background(), "event"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateWithNoMatchingKeys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Minute)

	mock.ExpectKeys("order*").SetVal([]string{})
	mock.ExpectPublish(InvalidationChannel, "order").SetVal(1)

	require.NoError(t, store.Invalidate(context.Background(), "order"))
	require.NoError(t, mock.ExpectationsWereMet())
}
