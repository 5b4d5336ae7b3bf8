package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// fakeSource serves documents and events from maps.
type fakeSource struct {
	docs   map[string][]domain.Document
	events map[string][]domain.DocEvent
	err    error
	calls  []string
}

func (f *fakeSource) DocumentsForResponsible(_ context.Context, personID string) ([]domain.Document, error) {
	f.calls = append(f.calls, personID)
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[personID], nil
}

func (f *fakeSource) LatestEvent(_ context.Context, docName string, types []domain.EventType) (domain.DocEvent, bool, error) {
	var (
		best  domain.DocEvent
		found bool
	)
	for _, ev := range f.events[docName] {
		match := false
		for _, typ := range types {
			if ev.Type == typ {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		if !found || ev.Time.After(best.Time) {
			best, found = ev, true
		}
	}
	return best, found, nil
}

// recordingLogger keeps warn messages for assertions.
type recordingLogger struct {
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(string, ...any) {}

func canonicalCatalog() *domain.StateCatalog {
	return domain.NewStateCatalog(domain.CanonicalStates())
}

// docWith builds a document whose states come from the canonical catalog.
func docWith(t *testing.T, name string, docType domain.DocType, states ...[2]string) domain.Document {
	t.Helper()
	catalog := canonicalCatalog()
	rows := make([]domain.State, 0, len(states))
	for _, pair := range states {
		state, ok := catalog.LookupState(domain.StateType(pair[0]), pair[1])
		if !ok {
			t.Fatalf("state %s/%s missing from catalog", pair[0], pair[1])
		}
		rows = append(rows, state)
	}
	doc, err := domain.NewDocument(domain.DocumentInput{Name: name, Type: docType, States: rows})
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	return doc
}

func st(stateType domain.StateType, slug string) [2]string {
	return [2]string{string(stateType), slug}
}

func stateEvent(docName string, at time.Time) domain.DocEvent {
	return domain.DocEvent{ID: docName + at.String(), DocName: docName, Type: domain.EventChangedState, Time: at}
}
