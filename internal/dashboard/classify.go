package dashboard

import (
	"slices"

	"github.com/vidiannovantry/datatracker/internal/domain"
)

// GroupType identifies one top-level dashboard category.
type GroupType string

// GroupType values returned by GroupTypeOf.
const (
	GroupNone           GroupType = ""
	GroupInternetDraft  GroupType = "I-D"
	GroupRFC            GroupType = "RFC"
	GroupConflictReview GroupType = "Conflict Review"
	GroupStatusChange   GroupType = "Status Change"
	GroupCharter        GroupType = "Charter"
	GroupDocument       GroupType = "Document"
)

// TrackedGroupTypes returns the group types the workload dashboard reports, in display order.
func TrackedGroupTypes() []GroupType {
	return []GroupType{GroupInternetDraft, GroupRFC, GroupConflictReview, GroupStatusChange, GroupCharter}
}

// IsTracked reports whether gt is one of the dashboard's tracked group types.
func IsTracked(gt GroupType) bool {
	return slices.Contains(TrackedGroupTypes(), gt)
}

// IESG state names that take an active draft off the dashboard or move it to RFC.
const (
	iesgNameRFCQueue = "RFC Ed Queue"
	draftNameExpired = "Expired"
	draftNameReplace = "Replaced"
)

var excludedIESGNames = []string{"Dead", "I-D Exists", "AD is watching"}

// Conflict-review and status-change slugs that collapse into approval buckets.
var (
	conflRevSent    = []string{"appr-reqnopub-sent", "appr-noprob-sent"}
	conflRevPending = []string{"appr-reqnopub-pend", "appr-noprob-pend", "appr-reqnopub-pr", "appr-noprob-pr"}
	statChgSent     = []string{"appr-sent"}
	statChgPending  = []string{"appr-pend", "appr-pr"}
)

// GroupTypeOf maps one document to its dashboard group type.
func GroupTypeOf(doc domain.Document) GroupType {
	switch doc.Type {
	case domain.DocTypeDraft:
		draftSlug := doc.StateSlug(domain.StateTypeDraft)
		iesg, hasIESG := doc.State(domain.StateTypeDraftIESG)
		switch {
		case draftSlug == domain.DraftRFC:
			return GroupRFC
		case draftSlug == domain.DraftActive && hasIESG && iesg.Name == iesgNameRFCQueue:
			return GroupRFC
		case draftSlug == domain.DraftActive && hasIESG && slices.Contains(excludedIESGNames, iesg.Name):
			return GroupNone
		}
		switch doc.StateName(domain.StateTypeDraft) {
		case draftNameExpired, draftNameReplace:
			return GroupNone
		}
		return GroupInternetDraft
	case domain.DocTypeConflRev:
		return GroupConflictReview
	case domain.DocTypeStatChg:
		return GroupStatusChange
	case domain.DocTypeCharter:
		return GroupCharter
	default:
		return GroupDocument
	}
}

// BucketKey identifies one workload bucket independent of its display label.
type BucketKey string

// Bucket pairs a stable bucket key with its full display label.
type Bucket struct {
	Key   BucketKey
	Label string
}

// Bucket keys with fixed identity.
const (
	KeyRFC                  BucketKey = "draft/rfc"
	KeyConflRevApproved     BucketKey = "conflrev/approved"
	KeyConflRevIESGApproved BucketKey = "conflrev/iesg-approved"
	KeyStatChgApproved      BucketKey = "statchg/approved"
	KeyStatChgIESGApproved  BucketKey = "statchg/iesg-approved"
	KeyCharterApproved      BucketKey = "charter/approved"
	KeyDocument             BucketKey = "document"
)

const (
	unknownSlug              = "unknown"
	approvedFallbackIESGName = "Approved"
)

// StateLookup resolves canonical state rows.
type StateLookup interface {
	LookupState(stateType domain.StateType, slug string) (domain.State, bool)
	LookupStateByName(stateType domain.StateType, name string) (domain.State, bool)
}

// Classifier derives bucket keys and labels for documents.
type Classifier struct {
	states StateLookup
}

// NewClassifier constructs a classifier backed by one canonical state source.
func NewClassifier(states StateLookup) *Classifier {
	return &Classifier{states: states}
}

// BucketOf returns the fine-grained bucket for one document.
func (c *Classifier) BucketOf(doc domain.Document) Bucket {
	switch doc.Type {
	case domain.DocTypeDraft:
		draft, hasDraft := doc.State(domain.StateTypeDraft)
		if hasDraft && draft.Slug == domain.DraftRFC {
			return Bucket{Key: KeyRFC, Label: "RFC"}
		}
		if hasDraft && draft.Slug == domain.DraftActive {
			if iesg, ok := doc.State(domain.StateTypeDraftIESG); ok {
				return stateBucket(iesg, "Internet-Draft")
			}
		}
		if !hasDraft {
			return unknownBucket(domain.StateTypeDraft, "Internet-Draft")
		}
		return stateBucket(draft, "Internet-Draft")
	case domain.DocTypeConflRev:
		return c.reviewBucket(doc, domain.StateTypeConflRev, "Conflict Review", conflRevSent, conflRevPending, KeyConflRevApproved, KeyConflRevIESGApproved)
	case domain.DocTypeStatChg:
		return c.reviewBucket(doc, domain.StateTypeStatChg, "Status Change", statChgSent, statChgPending, KeyStatChgApproved, KeyStatChgIESGApproved)
	case domain.DocTypeCharter:
		state, ok := doc.State(domain.StateTypeCharter)
		if !ok {
			return unknownBucket(domain.StateTypeCharter, "Charter")
		}
		if state.Slug == "approved" {
			return Bucket{Key: KeyCharterApproved, Label: "Approved Charter"}
		}
		return stateBucket(state, "Charter")
	default:
		return Bucket{Key: KeyDocument, Label: "Document"}
	}
}

// reviewBucket classifies conflict reviews and status changes, which share approval handling.
func (c *Classifier) reviewBucket(doc domain.Document, stateType domain.StateType, suffix string, sent, pending []string, sentKey, pendingKey BucketKey) Bucket {
	state, ok := doc.State(stateType)
	if !ok {
		return unknownBucket(stateType, suffix)
	}
	sentBucket := Bucket{Key: sentKey, Label: "Approved " + suffix}
	switch {
	case slices.Contains(sent, state.Slug):
		return sentBucket
	case slices.Contains(pending, state.Slug):
		name := c.iesgApprovedName()
		if name == approvedFallbackIESGName {
			return sentBucket
		}
		return Bucket{Key: pendingKey, Label: name + " " + suffix}
	}
	return stateBucket(state, suffix)
}

// iesgApprovedName returns the catalog name of the IESG approved state.
func (c *Classifier) iesgApprovedName() string {
	if c == nil || c.states == nil {
		return approvedFallbackIESGName
	}
	state, ok := c.states.LookupState(domain.StateTypeDraftIESG, domain.IESGApproved)
	if !ok {
		return approvedFallbackIESGName
	}
	return state.Name
}

// stateBucket builds the bucket for one state row plus a type suffix.
func stateBucket(state domain.State, suffix string) Bucket {
	return Bucket{
		Key:   BucketKey(string(state.Type) + "/" + state.Slug),
		Label: state.Name + " " + suffix,
	}
}

// unknownBucket builds the bucket for a document missing the state its type requires.
func unknownBucket(stateType domain.StateType, suffix string) Bucket {
	return Bucket{
		Key:   BucketKey(string(stateType) + "/" + unknownSlug),
		Label: "Unknown " + suffix,
	}
}
