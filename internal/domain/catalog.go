package domain

// canonicalStateRows lists the IETF state machines used by search and the dashboard.
var canonicalStateRows = []State{
	{Type: StateTypeDraft, Slug: DraftActive, Name: "Active", Order: 1},
	{Type: StateTypeDraft, Slug: DraftExpired, Name: "Expired", Order: 2},
	{Type: StateTypeDraft, Slug: DraftRFC, Name: "RFC", Order: 3},
	{Type: StateTypeDraft, Slug: DraftReplaced, Name: "Replaced", Order: 4},
	{Type: StateTypeDraft, Slug: DraftAuthRm, Name: "Withdrawn by Submitter", Order: 5},
	{Type: StateTypeDraft, Slug: DraftIETFRm, Name: "Withdrawn by IETF", Order: 6},

	{Type: StateTypeDraftIESG, Slug: IESGIDExists, Name: "I-D Exists", Order: 0},
	{Type: StateTypeDraftIESG, Slug: IESGPubReq, Name: "Publication Requested", Order: 10},
	{Type: StateTypeDraftIESG, Slug: IESGADEval, Name: "AD Evaluation", Order: 11},
	{Type: StateTypeDraftIESG, Slug: "review-e", Name: "Expert Review", Order: 12},
	{Type: StateTypeDraftIESG, Slug: IESGLCReq, Name: "Last Call Requested", Order: 15},
	{Type: StateTypeDraftIESG, Slug: IESGLastCall, Name: "In Last Call", Order: 16},
	{Type: StateTypeDraftIESG, Slug: IESGWriteupW, Name: "Waiting for Writeup", Order: 18},
	{Type: StateTypeDraftIESG, Slug: IESGGoAheadW, Name: "Waiting for AD Go-Ahead", Order: 19},
	{Type: StateTypeDraftIESG, Slug: IESGEval, Name: "IESG Evaluation", Order: 20},
	{Type: StateTypeDraftIESG, Slug: IESGDefer, Name: "IESG Evaluation - Defer", Order: 21},
	{Type: StateTypeDraftIESG, Slug: IESGApproved, Name: "Approved-announcement to be sent", Order: 27},
	{Type: StateTypeDraftIESG, Slug: IESGAnnounced, Name: "Approved-announcement sent", Order: 30},
	{Type: StateTypeDraftIESG, Slug: IESGRFCQueue, Name: "RFC Ed Queue", Order: 31},
	{Type: StateTypeDraftIESG, Slug: IESGPublished, Name: "RFC Published", Order: 32},
	{Type: StateTypeDraftIESG, Slug: IESGWatching, Name: "AD is watching", Order: 42},
	{Type: StateTypeDraftIESG, Slug: IESGDead, Name: "Dead", Order: 99},

	{Type: StateTypeDraftIRTF, Slug: "candidat", Name: "Candidate RG Document", Order: 1},
	{Type: StateTypeDraftIRTF, Slug: "active", Name: "Active RG Document", Order: 2},
	{Type: StateTypeDraftIRTF, Slug: "parked", Name: "Parked RG Document", Order: 3},
	{Type: StateTypeDraftIRTF, Slug: "rg-lc", Name: "In RG Last Call", Order: 4},
	{Type: StateTypeDraftIRTF, Slug: "sheph-w", Name: "Waiting for Document Shepherd", Order: 5},
	{Type: StateTypeDraftIRTF, Slug: "chair-w", Name: "Waiting for IRTF Chair", Order: 6},
	{Type: StateTypeDraftIRTF, Slug: "irsg-w", Name: "Awaiting IRSG Reviews", Order: 7},
	{Type: StateTypeDraftIRTF, Slug: "irsgpoll", Name: "In IRSG Poll", Order: 8},
	{Type: StateTypeDraftIRTF, Slug: "iesg-rev", Name: "In IESG Review", Order: 9},
	{Type: StateTypeDraftIRTF, Slug: "rfc-edit", Name: "Sent to the RFC Editor", Order: 10},
	{Type: StateTypeDraftIRTF, Slug: "pub", Name: "Published RFC", Order: 11},
	{Type: StateTypeDraftIRTF, Slug: "dead", Name: "Dead IRTF Document", Order: 13},
	{Type: StateTypeDraftIRTF, Slug: "repl", Name: "Replaced", Order: 14},

	{Type: StateTypeCharter, Slug: "notrev", Name: "Not currently under review", Order: 1},
	{Type: StateTypeCharter, Slug: "infrev", Name: "Draft Charter", Order: 2},
	{Type: StateTypeCharter, Slug: "intrev", Name: "Start Chartering/Rechartering (Internal Steering Group/IAB Review)", Order: 3},
	{Type: StateTypeCharter, Slug: "extrev", Name: "External Review (Message to Community, Selected by Secretariat)", Order: 4},
	{Type: StateTypeCharter, Slug: "iesgrev", Name: "IESG Review (Charter for Approval, Selected by Secretariat)", Order: 5},
	{Type: StateTypeCharter, Slug: "approved", Name: "Approved", Order: 6},
	{Type: StateTypeCharter, Slug: "replaced", Name: "Replaced", Order: 7},

	{Type: StateTypeConflRev, Slug: "needshep", Name: "Needs Shepherd", Order: 1},
	{Type: StateTypeConflRev, Slug: "adrev", Name: "AD Review", Order: 2},
	{Type: StateTypeConflRev, Slug: "iesgeval", Name: "IESG Evaluation", Order: 3},
	{Type: StateTypeConflRev, Slug: "defer", Name: "IESG Evaluation - Defer", Order: 4},
	{Type: StateTypeConflRev, Slug: "appr-reqnopub-pr", Name: "Approved Request to Not Publish - point raised", Order: 5},
	{Type: StateTypeConflRev, Slug: "appr-noprob-pr", Name: "Approved No Problem - point raised", Order: 6},
	{Type: StateTypeConflRev, Slug: "appr-reqnopub-pend", Name: "Approved Request to Not Publish - announcement to be sent", Order: 7},
	{Type: StateTypeConflRev, Slug: "appr-noprob-pend", Name: "Approved No Problem - announcement to be sent", Order: 8},
	{Type: StateTypeConflRev, Slug: "appr-reqnopub-sent", Name: "Approved Request to Not Publish - announcement sent", Order: 9},
	{Type: StateTypeConflRev, Slug: "appr-noprob-sent", Name: "Approved No Problem - announcement sent", Order: 10},
	{Type: StateTypeConflRev, Slug: "withdraw", Name: "Withdrawn", Order: 11},
	{Type: StateTypeConflRev, Slug: "dead", Name: "Dead", Order: 12},

	{Type: StateTypeStatChg, Slug: "needshep", Name: "Needs Shepherd", Order: 1},
	{Type: StateTypeStatChg, Slug: "adrev", Name: "AD Review", Order: 2},
	{Type: StateTypeStatChg, Slug: "lc-req", Name: "Last Call Requested", Order: 3},
	{Type: StateTypeStatChg, Slug: "in-lc", Name: "In Last Call", Order: 4},
	{Type: StateTypeStatChg, Slug: "goahead", Name: "Waiting for AD Go-Ahead", Order: 5},
	{Type: StateTypeStatChg, Slug: "iesgeval", Name: "IESG Evaluation", Order: 6},
	{Type: StateTypeStatChg, Slug: "defer", Name: "IESG Evaluation - Defer", Order: 7},
	{Type: StateTypeStatChg, Slug: "appr-pr", Name: "Approved - point raised", Order: 8},
	{Type: StateTypeStatChg, Slug: "appr-pend", Name: "Approved - announcement to be sent", Order: 9},
	{Type: StateTypeStatChg, Slug: "appr-sent", Name: "Approved - announcement sent", Order: 10},
	{Type: StateTypeStatChg, Slug: "dead", Name: "Dead", Order: 11},
}

// CanonicalStates returns a copy of the built-in state catalog rows.
func CanonicalStates() []State {
	return append([]State(nil), canonicalStateRows...)
}
