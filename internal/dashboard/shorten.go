package dashboard

import "strings"

var labelSuffixes = []string{
	" Internet-Draft",
	" Conflict Review",
	" Status Change",
	" (Internal Steering Group/IAB Review) Charter",
	"Charter",
}

// labelReplacements apply in order; longer phrases precede the words they contain.
var labelReplacements = []struct {
	old string
	new string
}{
	{"Writeup", "Write-up"},
	{"Requested", "Req"},
	{"Evaluation", "Eval"},
	{"Publication", "Pub"},
	{"Waiting", "Wait"},
	{"Go-Ahead", "OK"},
	{"Approved-", "App, "},
	{"announcement", "ann."},
	{"IESG Eval - ", ""},
	{"Not currently under review", "Not under review"},
	{"External Review", "Ext. Review"},
	{"IESG Review (Charter for Approval, Selected by Secretariat)", "IESG Review"},
	{"Needs Shepherd", "Needs Shep."},
	{"Approved", "App."},
	{"Replaced", "Repl."},
	{"Withdrawn", "Withd."},
	{"Chartering/Rechartering", "Charter"},
	{"(Message to Community, Selected by Secretariat)", ""},
}

// maxShortenPasses bounds the fixed-point loop in ShortenLabel.
const maxShortenPasses = 8

// ShortenLabel rewrites a bucket label for compact column headers. Passes repeat until the
// label stops changing, so shortening a shortened label is a no-op.
func ShortenLabel(label string) string {
	for i := 0; i < maxShortenPasses; i++ {
		next := shortenPass(label)
		if next == label {
			break
		}
		label = next
	}
	return label
}

// shortenPass strips one round of type suffixes and applies every replacement once.
func shortenPass(label string) string {
	for _, suffix := range labelSuffixes {
		label = strings.TrimSuffix(label, suffix)
	}
	for _, r := range labelReplacements {
		label = strings.ReplaceAll(label, r.old, r.new)
	}
	return strings.TrimSpace(label)
}
