package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind discriminates the three upload-stream events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventDone
	EventError
)

// Event is the single type both the producer and the consumer of the upload
// stream speak. Done and Error are terminal: exactly one of them closes the
// stream, after zero or more Progress events.
type Event struct {
	Kind EventKind

	// Progress fields
	Progress int
	Loaded   int64
	Total    int64

	// Done fields
	Key         string
	URL         string
	Name        string
	ContentType string
	Size        int64

	// Error field
	Err string
}

type progressPayload struct {
	Progress int   `json:"progress"`
	Loaded   int64 `json:"loaded"`
	Total    int64 `json:"total"`
}

type donePayload struct {
	Done        bool   `json:"done"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (e Event) payload() interface{} {
	switch e.Kind {
	case EventDone:
		return donePayload{
			Done:        true,
			Key:         e.Key,
			URL:         e.URL,
			Name:        e.Name,
			ContentType: e.ContentType,
			Size:        e.Size,
		}
	case EventError:
		return errorPayload{Error: e.Err}
	default:
		return progressPayload{Progress: e.Progress, Loaded: e.Loaded, Total: e.Total}
	}
}

// WriteEvent serializes one event as a text/event-stream frame
// ("data: <JSON>\n\n") and flushes it to the client immediately.
func WriteEvent(w *bufio.Writer, e Event) error {
	b, err := json.Marshal(e.payload())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	return w.Flush()
}

// DecodeEvent parses a single "data: <JSON>" frame back into an Event. This
// is the inverse of WriteEvent and the only decoder clients should use.
func DecodeEvent(frame []byte) (Event, error) {
	frame = bytes.TrimSpace(frame)
	payload, ok := bytes.CutPrefix(frame, []byte("data: "))
	if !ok {
		return Event{}, errors.New("malformed event frame")
	}

	var raw struct {
		Progress    *int    `json:"progress"`
		Loaded      int64   `json:"loaded"`
		Total       int64   `json:"total"`
		Done        bool    `json:"done"`
		Key         string  `json:"key"`
		URL         string  `json:"url"`
		Name        string  `json:"name"`
		ContentType string  `json:"contentType"`
		Size        int64   `json:"size"`
		Error       *string `json:"error"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, err
	}

	switch {
	case raw.Error != nil:
		return Event{Kind: EventError, Err: *raw.Error}, nil
	case raw.Done:
		return Event{
			Kind:        EventDone,
			Key:         raw.Key,
			URL:         raw.URL,
			Name:        raw.Name,
			ContentType: raw.ContentType,
			Size:        raw.Size,
		}, nil
	case raw.Progress != nil:
		return Event{Kind: EventProgress, Progress: *raw.Progress, Loaded: raw.Loaded, Total: raw.Total}, nil
	}
	return Event{}, errors.New("unrecognized event payload")
}

// ProgressTracker turns raw byte counts into deduplicated percentages.
// Emitted values are strictly increasing and capped at 99; 100 is reserved
// for the terminal done event and never reported mid-transfer.
type ProgressTracker struct {
	total int64
	last  int
}

func NewProgressTracker(total int64) *ProgressTracker {
	return &ProgressTracker{total: total, last: -1}
}

// Update reports the percentage for the given byte count and whether it
// should be emitted. Unknown totals never emit.
func (t *ProgressTracker) Update(loaded int64) (int, bool) {
	if t.total <= 0 {
		return 0, false
	}
	pct := int(loaded * 100 / t.total)
	if pct > 99 {
		pct = 99
	}
	if pct <= t.last {
		return 0, false
	}
	t.last = pct
	return pct, true
}
