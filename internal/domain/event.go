package domain

import (
	"slices"
	"strings"
	"time"
)

// EventType identifies one kind of document history event.
type EventType string

// EventType values read by the dashboard and the draft listings.
const (
	EventStartedIESGProcess EventType = "started_iesg_process"
	EventChangedState       EventType = "changed_state"
	EventChangedDocument    EventType = "changed_document"
	EventNewRevision        EventType = "new_revision"
	EventSentLastCall       EventType = "sent_last_call"
)

// validEventTypes stores all accepted event types.
var validEventTypes = []EventType{
	EventStartedIESGProcess,
	EventChangedState,
	EventChangedDocument,
	EventNewRevision,
	EventSentLastCall,
}

// StateChangeEvents lists the event types that mark a lifecycle transition.
var StateChangeEvents = []EventType{EventStartedIESGProcess, EventChangedState}

// IsValidEventType reports whether t is a known event type.
func IsValidEventType(t EventType) bool {
	return slices.Contains(validEventTypes, t)
}

// DocEvent represents one entry in a document's history.
type DocEvent struct {
	ID          string
	DocName     string
	Type        EventType
	Time        time.Time
	By          string
	Description string
	Rev         string
	Expires     *time.Time
}

// DocEventInput holds input values for event construction.
type DocEventInput struct {
	ID          string
	DocName     string
	Type        EventType
	Time        time.Time
	By          string
	Description string
	Rev         string
	Expires     *time.Time
}

// NewDocEvent constructs one validated document event.
func NewDocEvent(in DocEventInput) (DocEvent, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.DocName = strings.TrimSpace(strings.ToLower(in.DocName))
	if in.ID == "" {
		return DocEvent{}, ErrInvalidID
	}
	if in.DocName == "" {
		return DocEvent{}, ErrInvalidName
	}
	if !IsValidEventType(in.Type) {
		return DocEvent{}, ErrInvalidEventType
	}
	var expires *time.Time
	if in.Expires != nil {
		ts := in.Expires.UTC()
		expires = &ts
	}
	return DocEvent{
		ID:          in.ID,
		DocName:     in.DocName,
		Type:        in.Type,
		Time:        in.Time.UTC(),
		By:          strings.TrimSpace(in.By),
		Description: strings.TrimSpace(in.Description),
		Rev:         strings.TrimSpace(in.Rev),
		Expires:     expires,
	}, nil
}
