package model

import (
	"encoding/json"
	"time"
)

// Action is the kind of remote mutation a queue entry replays.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionUpsert Action = "UPSERT"
)

// QueueEntry is one pending remote mutation. Entries are durable, ordered
// by Seq, and are deleted only on successful replay; a poisoned entry is
// flagged Failed but never silently dropped.
type QueueEntry struct {
	Seq        int64           `json:"seq"`
	Action     Action          `json:"action"`
	Table      string          `json:"table"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Retries    int             `json:"retries"`
	LastError  string          `json:"last_error,omitempty"`
	Failed     bool            `json:"failed"`
}

// ChangeKind tags a change-feed event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent is one remote mutation pushed over the live change feed.
// For deletes only Record.ID is guaranteed to be populated.
type ChangeEvent struct {
	Kind   ChangeKind    `json:"kind"`
	Record VehicleRecord `json:"record"`
}
