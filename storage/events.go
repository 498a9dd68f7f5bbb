package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/zkballot/types"
)

// AppendEvent adds the event to the journal. The event gets a time ordered
// UUIDv7 id, which is also its key, so iterating the journal returns events
// in the order they were appended.
func (tx *Tx) AppendEvent(ev *types.Event) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	ev.ID = id.String()
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	return tx.setArtifact(journalPrefix, id[:], ev)
}

// Events returns up to limit events of the journal appended after the event
// with id after. An empty after starts from the beginning. A non positive
// limit returns every event.
func (v View) Events(after string, limit int) ([]*types.Event, error) {
	var afterKey []byte
	if after != "" {
		id, err := uuid.Parse(after)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", after, err)
		}
		afterKey = id[:]
	}
	var events []*types.Event
	var decodeErr error
	if err := v.iterateArtifacts(journalPrefix, nil, func(k, data []byte) bool {
		if afterKey != nil && string(k) <= string(afterKey) {
			return true
		}
		ev := &types.Event{}
		if decodeErr = decodeArtifact(data, ev); decodeErr != nil {
			return false
		}
		events = append(events, ev)
		return limit <= 0 || len(events) < limit
	}); err != nil {
		return nil, err
	}
	return events, decodeErr
}
