package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkos/internal/domain/event"
)

func TestNewMessage(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := event.XPAwarded{
		HabitID:    uuid.New(),
		UserID:     userID,
		Amount:     11,
		TotalXP:    21,
		OccurredAt: at,
	}

	msg, err := newMessage(e)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "xp_awarded", string(msg.Headers[0].Value))

	decoded, err := event.Unmarshal(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
}
