package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

// Sort-key tiers. Keys compare as plain strings.
const (
	tierReview   = "1"
	tierRFC      = "21"
	tierStatChg  = "220"
	tierConflRev = "230"
	tierCharter  = "240"
	tierFallback = "3"

	// rfcKeyBase reverses RFC numbers so newer RFCs sort first within the RFC tier.
	rfcKeyBase = 100000000
)

var sortSeedSuffixes = []string{" Document", " Internet-Draft", " Conflict Review", " Status Change"}

// EventSource returns a document's most recent event of the given types.
type EventSource interface {
	LatestEvent(ctx context.Context, docName string, types []domain.EventType) (domain.DocEvent, bool, error)
}

// SortKeyer computes ranked-list sort keys.
type SortKeyer struct {
	classifier *Classifier
	states     StateLookup
	events     EventSource
	clock      Clock
	logger     Logger
}

// NewSortKeyer constructs a sort-key generator.
func NewSortKeyer(states StateLookup, events EventSource, clock Clock, logger Logger) *SortKeyer {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &SortKeyer{
		classifier: NewClassifier(states),
		states:     states,
		events:     events,
		clock:      clock,
		logger:     logger,
	}
}

// Key returns the document's sort key; ascending order puts mid-review work first and RFCs after it.
func (k *SortKeyer) Key(ctx context.Context, doc domain.Document) (string, error) {
	switch {
	case doc.Type == domain.DocTypeDraft && doc.StateSlug(domain.StateTypeDraft) == domain.DraftRFC:
		return RFCSortKey(doc.RFCNumber), nil
	case doc.Type == domain.DocTypeStatChg && doc.StateSlug(domain.StateTypeStatChg) == "appr-sent":
		return tierStatChg, nil
	case doc.Type == domain.DocTypeConflRev && slices.Contains(conflRevSent, doc.StateSlug(domain.StateTypeConflRev)):
		return tierConflRev, nil
	case doc.Type == domain.DocTypeCharter && doc.StateSlug(domain.StateTypeCharter) == "approved":
		return tierCharter, nil
	}

	seed := k.classifier.BucketOf(doc).Label

	if doc.Type == domain.DocTypeConflRev && doc.StateSlug(domain.StateTypeConflRev) == "adrev" {
		return k.reviewKey(doc, domain.IESGADEval, seed), nil
	}
	if doc.Type == domain.DocTypeCharter {
		switch doc.StateSlug(domain.StateTypeCharter) {
		case "notrev", "infrev":
			return reviewTier(0, seed), nil
		case "intrev":
			return k.reviewKey(doc, domain.IESGADEval, seed), nil
		case "extrev":
			return k.reviewKey(doc, domain.IESGLastCall, seed), nil
		case "iesgrev":
			return k.reviewKey(doc, domain.IESGEval, seed), nil
		}
	}
	if doc.Type == domain.DocTypeStatChg && doc.StateSlug(domain.StateTypeStatChg) == "adrev" {
		return k.reviewKey(doc, domain.IESGADEval, seed), nil
	}
	if strings.HasPrefix(seed, "Needs Shepherd") {
		return reviewTier(0, seed), nil
	}

	for _, suffix := range sortSeedSuffixes {
		if strings.HasSuffix(seed, suffix) {
			seed = strings.TrimSuffix(seed, suffix)
			break
		}
	}
	if k.states != nil {
		if state, ok := k.states.LookupStateByName(domain.StateTypeDraftIESG, seed); ok {
			age, err := k.changeAge(ctx, doc)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s%s%010d", reviewTier(state.Order, seed), doc.Type, age), nil
		}
	}
	return tierFallback + seed, nil
}

// RFCSortKey encodes an RFC number as a fixed-width reversed key in the RFC tier.
func RFCSortKey(number int) string {
	return fmt.Sprintf("%s%09d", tierRFC, rfcKeyBase-number)
}

// reviewKey places a document at the ordinal of one IESG state, or in the fallback tier when
// the catalog lacks that state.
func (k *SortKeyer) reviewKey(doc domain.Document, iesgSlug, seed string) string {
	if k.states != nil {
		if state, ok := k.states.LookupState(domain.StateTypeDraftIESG, iesgSlug); ok {
			return reviewTier(state.Order, seed)
		}
	}
	k.logger.Warn("canonical state missing; using fallback sort tier", "doc", doc.Name, "state_type", domain.StateTypeDraftIESG, "slug", iesgSlug)
	return tierFallback + seed
}

// changeAge returns whole seconds since the latest changed_document event, or 0 when absent.
func (k *SortKeyer) changeAge(ctx context.Context, doc domain.Document) (int64, error) {
	if k.events == nil {
		return 0, nil
	}
	ev, ok, err := k.events.LatestEvent(ctx, doc.Name, []domain.EventType{domain.EventChangedDocument})
	if err != nil {
		return 0, fmt.Errorf("latest changed_document event for %s: %w", doc.Name, err)
	}
	if !ok {
		return 0, nil
	}
	age := int64(k.clock().Sub(ev.Time) / time.Second)
	if age < 0 {
		return 0, nil
	}
	return age, nil
}

// reviewTier formats the mid-review tier with a zero-padded state ordinal.
func reviewTier(order int, seed string) string {
	return fmt.Sprintf("%s%03d%s", tierReview, order, seed)
}
