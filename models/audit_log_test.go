package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogChanges(t *testing.T) {
	t.Run("Update reports differing fields only", func(t *testing.T) {
		entry := AuditLog{
			OldValues: `{"title":"IT","target_email":"old@example.com","sort_order":1}`,
			NewValues: `{"title":"IT","target_email":"new@example.com","sort_order":2,"reply_email":"hr@example.com"}`,
		}

		changes := entry.Changes()
		require.Len(t, changes, 3)
		assert.Equal(t, "reply_email", changes[0].Field)
		assert.Nil(t, changes[0].Old)
		assert.Equal(t, "sort_order", changes[1].Field)
		assert.Equal(t, float64(2), changes[1].New)
		assert.Equal(t, AuditChange{Field: "target_email", Old: "old@example.com", New: "new@example.com"}, changes[2])
	})

	t.Run("Create has no diff", func(t *testing.T) {
		entry := AuditLog{NewValues: `{"title":"IT"}`}
		assert.Empty(t, entry.Changes())
	})

	t.Run("Malformed snapshot", func(t *testing.T) {
		entry := AuditLog{OldValues: `{broken`, NewValues: `{"title":"IT"}`}
		changes := entry.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, "title", changes[0].Field)
	})
}

func TestSessionMaxAge(t *testing.T) {
	assert.Zero(t, (&Session{}).MaxAge())
	assert.Equal(t, -1, (&Session{ExpiresAt: time.Now().Add(-time.Minute)}).MaxAge())
	assert.InDelta(t, 600, (&Session{ExpiresAt: time.Now().Add(10 * time.Minute)}).MaxAge(), 2)
}
