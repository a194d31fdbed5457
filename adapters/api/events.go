package api

import (
	"encoding/json"
	"fmt"
	"time"

	"vizrec/adapters/ingest"
	"vizrec/domain/dataset"
)

// EventType names the server-sent events of a streamed import
type EventType string

const (
	EventImportProgress  EventType = "import_progress"
	EventImportCompleted EventType = "import_completed"
	EventImportFailed    EventType = "import_failed"
)

// Event is one server-sent event
type Event struct {
	Type      EventType   `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ToSSEFormat converts the event to the text/event-stream wire format
func (e *Event) ToSSEFormat() string {
	jsonData, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, `{"error":"error marshalling event"}`)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, string(jsonData))
}

func progressEvent(p ingest.ChunkProgress) *Event {
	return &Event{Type: EventImportProgress, Timestamp: time.Now().UTC(), Data: p}
}

// ImportCompletedData summarizes a finished import
type ImportCompletedData struct {
	Dataset     dataset.Summary   `json:"dataset"`
	SkippedRows int               `json:"skipped_rows"`
	Issues      []ingest.RowIssue `json:"issues,omitempty"`
	RuntimeMs   int64             `json:"runtime_ms"`
}

func completedEvent(data ImportCompletedData) *Event {
	return &Event{Type: EventImportCompleted, Timestamp: time.Now().UTC(), Data: data}
}

func failedEvent(body errorBody) *Event {
	return &Event{Type: EventImportFailed, Timestamp: time.Now().UTC(), Data: body}
}
