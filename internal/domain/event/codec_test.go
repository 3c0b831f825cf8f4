package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMarshalUnmarshal(t *testing.T) {
	at := time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)
	habitID, userID := uuid.New(), uuid.New()
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	events := []Event{
		StreakExtended{HabitID: habitID, UserID: userID, Streak: 4, Longest: 9, Date: day, OccurredAt: at},
		StreakBroken{HabitID: habitID, UserID: userID, PreviousStreak: 3, Longest: 3, MissedPeriod: day, OccurredAt: at},
		XPAwarded{HabitID: habitID, UserID: userID, Amount: 13, TotalXP: 1200, OccurredAt: at},
		LevelUp{UserID: userID, FromLevel: 2, ToLevel: 3, TotalXP: 200, OccurredAt: at},
	}

	for _, e := range events {
		t.Run(string(e.Type()), func(t *testing.T) {
			data, err := Marshal(e)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, e, got)
			assert.Equal(t, userID, got.Owner())
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0xff})
	assert.Error(t, err)

	unknown, err := structpb.NewStruct(map[string]interface{}{
		"type":    "confetti",
		"payload": map[string]interface{}{},
	})
	require.NoError(t, err)
	data, err := proto.Marshal(unknown)
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.ErrorContains(t, err, "unknown event type")

	bad, err := structpb.NewStruct(map[string]interface{}{
		"type": string(TypeLevelUp),
		"payload": map[string]interface{}{
			"user_id":     "not-a-uuid",
			"occurred_at": "2024-03-05T08:30:00Z",
		},
	})
	require.NoError(t, err)
	data, err = proto.Marshal(bad)
	require.NoError(t, err)
	_, err = Unmarshal(data)
	assert.ErrorContains(t, err, "user_id")
}
