package dashboard

// Trend tells the presentation layer how to color a rising count.
type Trend string

// Trend values.
const (
	TrendNeutral Trend = "neutral"
	TrendGood    Trend = "good"
	TrendBad     Trend = "bad"
)

// Seed pre-registers one bucket so common buckets sort before ad hoc ones.
type Seed struct {
	GroupType GroupType
	Bucket    Bucket
	Trend     Trend
}

// DefaultSeeds returns the curated bucket order, grouped by review stage.
func DefaultSeeds() []Seed {
	seeds := []Seed{}
	add := func(gt GroupType, key, label string, trend Trend) {
		seeds = append(seeds, Seed{GroupType: gt, Bucket: Bucket{Key: BucketKey(key), Label: label}, Trend: trend})
	}

	add(GroupInternetDraft, "draft-iesg/pub-req", "Publication Requested Internet-Draft", TrendBad)
	add(GroupInternetDraft, "draft-iesg/ad-eval", "AD Evaluation Internet-Draft", TrendBad)
	add(GroupInternetDraft, "draft-iesg/lc-req", "Last Call Requested Internet-Draft", TrendGood)
	add(GroupInternetDraft, "draft-iesg/lc", "In Last Call Internet-Draft", TrendGood)
	add(GroupInternetDraft, "draft-iesg/writeupw", "Waiting for Writeup Internet-Draft", TrendBad)
	add(GroupInternetDraft, "draft-iesg/defer", "IESG Evaluation - Defer Internet-Draft", TrendBad)
	add(GroupInternetDraft, "draft-iesg/iesg-eva", "IESG Evaluation Internet-Draft", TrendGood)
	add(GroupInternetDraft, "draft-iesg/goaheadw", "Waiting for AD Go-Ahead Internet-Draft", TrendBad)
	add(GroupInternetDraft, "draft-iesg/approved", "Approved-announcement to be sent Internet-Draft", TrendGood)
	add(GroupInternetDraft, "draft-iesg/ann", "Approved-announcement sent Internet-Draft", TrendGood)

	add(GroupRFC, "draft-iesg/rfcqueue", "RFC Ed Queue Internet-Draft", TrendGood)
	add(GroupRFC, string(KeyRFC), "RFC", TrendGood)

	add(GroupConflictReview, "conflrev/adrev", "AD Review Conflict Review", TrendBad)
	add(GroupConflictReview, "conflrev/needshep", "Needs Shepherd Conflict Review", TrendBad)
	add(GroupConflictReview, "conflrev/iesgeval", "IESG Evaluation Conflict Review", TrendGood)
	add(GroupConflictReview, string(KeyConflRevApproved), "Approved Conflict Review", TrendGood)
	add(GroupConflictReview, "conflrev/withdraw", "Withdrawn Conflict Review", TrendNeutral)

	add(GroupStatusChange, "statchg/pub-req", "Publication Requested Status Change", TrendBad)
	add(GroupStatusChange, "statchg/ad-eval", "AD Evaluation Status Change", TrendBad)
	add(GroupStatusChange, "statchg/lc-req", "Last Call Requested Status Change", TrendGood)
	add(GroupStatusChange, "statchg/in-lc", "In Last Call Status Change", TrendGood)
	add(GroupStatusChange, "statchg/writeupw", "Waiting for Writeup Status Change", TrendBad)
	add(GroupStatusChange, "statchg/iesgeval", "IESG Evaluation Status Change", TrendGood)
	add(GroupStatusChange, "statchg/goahead", "Waiting for AD Go-Ahead Status Change", TrendBad)

	add(GroupCharter, "charter/notrev", "Not currently under review Charter", TrendNeutral)
	add(GroupCharter, "charter/infrev", "Draft Charter Charter", TrendNeutral)
	add(GroupCharter, "charter/intrev", "Start Chartering/Rechartering (Internal Steering Group/IAB Review) Charter", TrendBad)
	add(GroupCharter, "charter/extrev", "External Review (Message to Community, Selected by Secretariat) Charter", TrendGood)
	add(GroupCharter, "charter/iesgrev", "IESG Review (Charter for Approval, Selected by Secretariat) Charter", TrendGood)
	add(GroupCharter, string(KeyCharterApproved), "Approved Charter", TrendGood)
	add(GroupCharter, "charter/replaced", "Replaced Charter", TrendNeutral)

	return seeds
}
