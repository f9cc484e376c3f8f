package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventShareReceived = "share_received"
	EventShareRevoked  = "share_revoked"
	EventNodeTrashed   = "node_trashed"
	EventNodeRestored  = "node_restored"
	EventNodePurged    = "node_purged"
	EventTrashEmptied  = "trash_emptied"
)

const eventPageSize = 100

type Event struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	EventType string          `json:"event_type"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload"`
}

// LogEvent appends an event addressed to userID to the journal and returns
// the stored row so it can be pushed to live subscribers.
func (q *Queries) LogEvent(ctx context.Context, userID int64, eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
		INSERT INTO event_journal (user_id, event_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, event_type, event_time, payload
	`
	var event Event
	err = q.db.QueryRow(ctx, query, userID, eventType, payloadBytes).Scan(
		&event.ID,
		&event.UserID,
		&event.EventType,
		&event.EventTime,
		&event.Payload,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (q *Queries) GetEventsSince(ctx context.Context, userID int64, sinceID int64) ([]Event, error) {
	query := `
		SELECT id, user_id, event_type, event_time, payload
		FROM event_journal
		WHERE user_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`
	rows, err := q.db.Query(ctx, query, userID, sinceID, eventPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.EventTime, &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
