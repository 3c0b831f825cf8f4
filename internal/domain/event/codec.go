package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Payload returns the flat field map of an event, as carried on the wire
func Payload(e Event) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"user_id":     e.Owner().String(),
		"occurred_at": e.At().UTC().Format(time.RFC3339Nano),
	}

	switch ev := e.(type) {
	case StreakExtended:
		payload["habit_id"] = ev.HabitID.String()
		payload["streak"] = float64(ev.Streak)
		payload["longest"] = float64(ev.Longest)
		payload["date"] = ev.Date.Format("2006-01-02")
	case StreakBroken:
		payload["habit_id"] = ev.HabitID.String()
		payload["previous_streak"] = float64(ev.PreviousStreak)
		payload["longest"] = float64(ev.Longest)
		payload["missed_period"] = ev.MissedPeriod.Format("2006-01-02")
	case XPAwarded:
		payload["habit_id"] = ev.HabitID.String()
		payload["amount"] = float64(ev.Amount)
		payload["total_xp"] = float64(ev.TotalXP)
	case LevelUp:
		payload["from_level"] = float64(ev.FromLevel)
		payload["to_level"] = float64(ev.ToLevel)
		payload["total_xp"] = float64(ev.TotalXP)
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
	return payload, nil
}

// Marshal encodes an event as a protobuf Struct envelope
// {"type": ..., "payload": {...}}
func Marshal(e Event) ([]byte, error) {
	payload, err := Payload(e)
	if err != nil {
		return nil, err
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		"type":    string(e.Type()),
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event envelope: %w", err)
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an envelope produced by Marshal
func Unmarshal(data []byte) (Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	fields := s.GetFields()
	typ := Type(fields["type"].GetStringValue())
	p := fields["payload"].GetStructValue()
	if p == nil {
		return nil, fmt.Errorf("event %q has no payload", typ)
	}
	d := decoder{fields: p.GetFields()}

	userID := d.uuid("user_id")
	occurredAt := d.time("occurred_at", time.RFC3339Nano)

	var e Event
	switch typ {
	case TypeStreakExtended:
		e = StreakExtended{
			HabitID:    d.uuid("habit_id"),
			UserID:     userID,
			Streak:     int32(d.number("streak")),
			Longest:    int32(d.number("longest")),
			Date:       d.time("date", "2006-01-02"),
			OccurredAt: occurredAt,
		}
	case TypeStreakBroken:
		e = StreakBroken{
			HabitID:        d.uuid("habit_id"),
			UserID:         userID,
			PreviousStreak: int32(d.number("previous_streak")),
			Longest:        int32(d.number("longest")),
			MissedPeriod:   d.time("missed_period", "2006-01-02"),
			OccurredAt:     occurredAt,
		}
	case TypeXPAwarded:
		e = XPAwarded{
			HabitID:    d.uuid("habit_id"),
			UserID:     userID,
			Amount:     int64(d.number("amount")),
			TotalXP:    int64(d.number("total_xp")),
			OccurredAt: occurredAt,
		}
	case TypeLevelUp:
		e = LevelUp{
			UserID:     userID,
			FromLevel:  int32(d.number("from_level")),
			ToLevel:    int32(d.number("to_level")),
			TotalXP:    int64(d.number("total_xp")),
			OccurredAt: occurredAt,
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}

	if d.err != nil {
		return nil, fmt.Errorf("invalid %s event: %w", typ, d.err)
	}
	return e, nil
}

// decoder keeps the first field error
type decoder struct {
	fields map[string]*structpb.Value
	err    error
}

func (d *decoder) uuid(key string) uuid.UUID {
	id, err := uuid.Parse(d.fields[key].GetStringValue())
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("field %s: %w", key, err)
	}
	return id
}

func (d *decoder) time(key, layout string) time.Time {
	t, err := time.Parse(layout, d.fields[key].GetStringValue())
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("field %s: %w", key, err)
	}
	return t
}

func (d *decoder) number(key string) float64 {
	return d.fields[key].GetNumberValue()
}
