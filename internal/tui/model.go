package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/dashboard"
	"github.com/vidiannovantry/datatracker/internal/report"
)

// Service is the read-only dashboard surface the model browses.
type Service interface {
	ADWorkload(context.Context) (dashboard.Workload, error)
	DocsForAD(context.Context, string) (app.ADDocuments, error)
	Search(context.Context, app.SearchQuery) (app.SearchResult, error)
}

// screen selects the active page.
type screen int

const (
	screenWorkload screen = iota
	screenDocs
	screenSearch
)

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeSearchInput
)

// detailPaneMinWidth hides the markdown detail pane on narrow terminals.
const detailPaneMinWidth = 100

// Model is the workload dashboard browser.
type Model struct {
	svc    Service
	logger Logger

	ready  bool
	width  int
	height int
	err    error
	status string

	help     help.Model
	keys     keyMap
	markdown *report.MarkdownRenderer

	screen screen
	mode   inputMode

	workload     dashboard.Workload
	section      int
	partyCursor  int
	docs         app.ADDocuments
	docCursor    int
	searchInput  textinput.Model
	searchResult app.SearchResult
	searchCursor int
	docsBack     screen

	pendingNameKey string
}

// workloadLoadedMsg carries a freshly computed workload.
type workloadLoadedMsg struct {
	workload dashboard.Workload
	err      error
}

// docsLoadedMsg carries one party's ranked documents.
type docsLoadedMsg struct {
	nameKey string
	docs    app.ADDocuments
	err     error
}

// searchResultsMsg carries one search result page.
type searchResultsMsg struct {
	result app.SearchResult
	err    error
}

// NewModel constructs the dashboard model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "document name, e.g. tls"
	searchInput.CharLimit = 120
	m := Model{
		svc:         svc,
		logger:      nopLogger{},
		status:      "loading...",
		help:        h,
		keys:        newKeyMap(),
		markdown:    &report.MarkdownRenderer{Style: "dark"},
		searchInput: searchInput,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the workload.
func (m Model) Init() tea.Cmd {
	return m.loadWorkload
}

// loadWorkload fetches the workload snapshot.
func (m Model) loadWorkload() tea.Msg {
	if m.svc == nil {
		return workloadLoadedMsg{err: fmt.Errorf("dashboard service is not configured")}
	}
	wl, err := m.svc.ADWorkload(context.Background())
	return workloadLoadedMsg{workload: wl, err: err}
}

// loadDocs returns a command fetching one party's documents.
func (m Model) loadDocs(nameKey string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		docs, err := svc.DocsForAD(context.Background(), nameKey)
		return docsLoadedMsg{nameKey: nameKey, docs: docs, err: err}
	}
}

// runSearch returns a command searching active drafts and RFCs by name.
func (m Model) runSearch(name string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.Search(context.Background(), app.SearchQuery{
			Name:         name,
			RFCs:         true,
			ActiveDrafts: true,
		})
		return searchResultsMsg{result: result, err: err}
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case workloadLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("workload load failed", "err", msg.err)
			return m, nil
		}
		m.err = nil
		m.workload = msg.workload
		m.section = clamp(m.section, 0, len(m.workload.Sections)-1)
		m.partyCursor = clamp(m.partyCursor, 0, len(m.currentRows())-1)
		m.status = fmt.Sprintf("%d parties", len(m.workload.Parties))
		if m.pendingNameKey != "" {
			nameKey := m.pendingNameKey
			m.pendingNameKey = ""
			m.docsBack = screenWorkload
			m.status = "loading " + nameKey + "..."
			return m, m.loadDocs(nameKey)
		}
		return m, nil

	case docsLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.logger.Error("documents load failed", "name_key", msg.nameKey, "err", msg.err)
			return m, nil
		}
		m.docs = msg.docs
		m.docCursor = 0
		m.screen = screenDocs
		m.status = fmt.Sprintf("%d documents", len(msg.docs.Rows))
		m.logger.Debug("documents loaded", "name_key", msg.nameKey, "count", len(msg.docs.Rows))
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.searchResult = msg.result
		m.searchCursor = 0
		m.screen = screenSearch
		m.status = fmt.Sprintf("%d results", msg.result.Total)
		if msg.result.Truncated {
			m.status += " (truncated)"
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode == modeSearchInput {
			return m.handleSearchInputKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleNormalModeKey handles navigation keys.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadWorkload
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearchInput
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	}
	if m.err != nil {
		return m, nil
	}

	switch m.screen {
	case screenWorkload:
		rows := m.currentRows()
		switch {
		case key.Matches(msg, m.keys.prevSection):
			m.section = wrapIndex(m.section, -1, len(m.workload.Sections))
			m.partyCursor = clamp(m.partyCursor, 0, len(m.currentRows())-1)
		case key.Matches(msg, m.keys.nextSection):
			m.section = wrapIndex(m.section, 1, len(m.workload.Sections))
			m.partyCursor = clamp(m.partyCursor, 0, len(m.currentRows())-1)
		case key.Matches(msg, m.keys.moveUp):
			m.partyCursor = clamp(m.partyCursor-1, 0, len(rows)-1)
		case key.Matches(msg, m.keys.moveDown):
			m.partyCursor = clamp(m.partyCursor+1, 0, len(rows)-1)
		case key.Matches(msg, m.keys.open):
			if len(rows) == 0 {
				m.status = "no party selected"
				return m, nil
			}
			party := rows[clamp(m.partyCursor, 0, len(rows)-1)].Party
			m.docsBack = screenWorkload
			m.status = "loading " + party.PlainName() + "..."
			return m, m.loadDocs(party.NameKey())
		}
	case screenDocs:
		switch {
		case key.Matches(msg, m.keys.moveUp):
			m.docCursor = clamp(m.docCursor-1, 0, len(m.docs.Rows)-1)
		case key.Matches(msg, m.keys.moveDown):
			m.docCursor = clamp(m.docCursor+1, 0, len(m.docs.Rows)-1)
		case key.Matches(msg, m.keys.back):
			m.screen = m.docsBack
		}
	case screenSearch:
		switch {
		case key.Matches(msg, m.keys.moveUp):
			m.searchCursor = clamp(m.searchCursor-1, 0, len(m.searchResult.Rows)-1)
		case key.Matches(msg, m.keys.moveDown):
			m.searchCursor = clamp(m.searchCursor+1, 0, len(m.searchResult.Rows)-1)
		case key.Matches(msg, m.keys.back):
			m.screen = screenWorkload
		}
	}
	return m, nil
}

// handleSearchInputKey edits and submits the search prompt.
func (m Model) handleSearchInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Code == tea.KeyEscape || msg.String() == "esc":
		m.mode = modeNone
		m.searchInput.Blur()
		m.status = "cancelled"
		return m, nil
	case msg.Code == tea.KeyEnter || msg.String() == "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		m.mode = modeNone
		m.searchInput.Blur()
		if query == "" {
			m.status = "search query required"
			return m, nil
		}
		m.status = "searching..."
		return m, m.runSearch(query)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// currentRows returns the party rows of the selected section.
func (m Model) currentRows() []dashboard.PartyRow {
	if len(m.workload.Sections) == 0 {
		return nil
	}
	return m.workload.Sections[clamp(m.section, 0, len(m.workload.Sections)-1)].Rows
}

// View renders the active screen.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var body string
	switch m.screen {
	case screenDocs:
		body = m.renderDocs()
	case screenSearch:
		body = m.renderSearch()
	default:
		body = m.renderWorkload()
	}
	if m.mode == modeSearchInput {
		body += "\n\n" + m.searchInput.View()
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	footer := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(statusStyle.Render(m.status) + "\n" + helpBubble.View(m.keys))
	if m.height > 0 {
		body = fitLines(body, max(0, m.height-lipgloss.Height(footer)))
	}
	v := tea.NewView(body + "\n" + footer)
	v.AltScreen = true
	return v
}

var (
	accentColor   = lipgloss.Color("62")
	mutedColor    = lipgloss.Color("241")
	dimColor      = lipgloss.Color("239")
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	tabStyle      = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1).Underline(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	headStyle     = lipgloss.NewStyle().Bold(true).Foreground(mutedColor)
	statusStyle   = lipgloss.NewStyle().Foreground(dimColor)
	goodColor     = lipgloss.Color("42")
	badColor      = lipgloss.Color("203")
)

// renderWorkload draws section tabs and the selected section's count grid.
func (m Model) renderWorkload() string {
	lines := []string{titleStyle.Render("AD workload")}
	if len(m.workload.Sections) == 0 {
		return strings.Join(append(lines, "", "No responsible parties."), "\n")
	}
	tabs := make([]string, 0, len(m.workload.Sections))
	for idx, section := range m.workload.Sections {
		style := tabStyle
		if idx == m.section {
			style = activeTab
		}
		tabs = append(tabs, style.Render(string(section.GroupType)))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "")

	section := m.workload.Sections[clamp(m.section, 0, len(m.workload.Sections)-1)]
	nameWidth := len("Party")
	for _, row := range section.Rows {
		nameWidth = max(nameWidth, len([]rune(row.Party.PlainName())))
	}
	header := []string{padRight("Party", nameWidth+2)}
	for _, bucket := range section.Buckets {
		header = append(header, padRight(bucket.Short, cellWidth(bucket.Short)))
	}
	lines = append(lines, headStyle.Render(strings.Join(header, " ")))
	for idx, row := range section.Rows {
		prefix := "  "
		name := row.Party.PlainName()
		if idx == m.partyCursor {
			prefix = "> "
			name = selectedStyle.Render(name)
		}
		cells := []string{prefix + padRight(name, nameWidth)}
		for _, cell := range row.Cells {
			cells = append(cells, renderCount(cell.Bucket, cell.Current, cell.Prior))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	sums := []string{padRight("  Sum", nameWidth+2)}
	for _, sum := range section.Sums {
		sums = append(sums, renderCount(sum.Bucket, sum.Current, sum.Prior))
	}
	lines = append(lines, headStyle.Render(strings.Join(sums, " ")))
	if len(section.Rows) > 0 {
		selected := section.Rows[clamp(m.partyCursor, 0, len(section.Rows)-1)]
		lines = append(lines, "", statusStyle.Render(changedDocs(selected)))
	}
	return strings.Join(lines, "\n")
}

// renderCount draws one grid cell, colored when the count moved.
func renderCount(bucket dashboard.BucketHeader, current, prior int) string {
	text := strconv.Itoa(current)
	switch diff := current - prior; {
	case diff > 0:
		text += "+" + strconv.Itoa(diff)
	case diff < 0:
		text += strconv.Itoa(diff)
	}
	text = padRight(text, cellWidth(bucket.Short))
	if current == prior || bucket.Trend == dashboard.TrendNeutral {
		return text
	}
	good := (current > prior) == (bucket.Trend == dashboard.TrendGood)
	if good {
		return lipgloss.NewStyle().Foreground(goodColor).Render(text)
	}
	return lipgloss.NewStyle().Foreground(badColor).Render(text)
}

// changedDocs lists documents whose staleness changed for one party.
func changedDocs(row dashboard.PartyRow) string {
	var names []string
	for _, cell := range row.Cells {
		names = append(names, cell.Diff...)
	}
	if len(names) == 0 {
		return "no changes since the prior window"
	}
	return "changed: " + strings.Join(names, ", ")
}

// renderDocs draws the ranked list with a markdown detail pane on wide terminals.
func (m Model) renderDocs() string {
	lines := []string{titleStyle.Render("Documents for " + m.docs.AD.PlainName()), ""}
	if len(m.docs.Rows) == 0 {
		lines = append(lines, "No documents.")
		return strings.Join(lines, "\n")
	}
	heading := ""
	for idx, row := range m.docs.Rows {
		if idx == 0 || row.SearchHeading != heading {
			heading = row.SearchHeading
			if idx > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, headStyle.Render(fallback(heading, "Other")))
		}
		label := documentLabel(row)
		line := "  " + label + "  " + statusStyle.Render(row.Status)
		if idx == m.docCursor {
			line = "> " + selectedStyle.Render(label) + "  " + statusStyle.Render(row.Status)
		}
		lines = append(lines, line)
	}
	if m.docs.Truncated {
		lines = append(lines, "", statusStyle.Render("result truncated"))
	}
	list := strings.Join(lines, "\n")
	if m.width < detailPaneMinWidth {
		return list
	}
	paneWidth := m.width / 2
	row := m.docs.Rows[clamp(m.docCursor, 0, len(m.docs.Rows)-1)]
	detail := lipgloss.NewStyle().
		Width(paneWidth).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		PaddingLeft(1).
		Render(m.renderMarkdown(documentMarkdown(row), paneWidth-2))
	return lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(m.width-paneWidth-1).Render(list), detail)
}

// renderSearch draws one search result page.
func (m Model) renderSearch() string {
	lines := []string{titleStyle.Render("Search results"), ""}
	if len(m.searchResult.Rows) == 0 {
		lines = append(lines, "No documents found.")
		return strings.Join(lines, "\n")
	}
	for idx, row := range m.searchResult.Rows {
		label := documentLabel(row)
		ad := ""
		if row.ADName != "" {
			ad = "  " + row.ADName
		}
		if idx == m.searchCursor {
			lines = append(lines, "> "+selectedStyle.Render(label)+"  "+statusStyle.Render(row.Status+ad))
			continue
		}
		lines = append(lines, "  "+label+"  "+statusStyle.Render(row.Status+ad))
	}
	return strings.Join(lines, "\n")
}

// renderMarkdown renders the detail pane, falling back to raw markdown.
func (m Model) renderMarkdown(md string, width int) string {
	out, err := m.markdown.Render(md, width)
	if err != nil {
		m.logger.Error("render detail pane", "err", err)
		return md
	}
	return out
}

// documentMarkdown describes one document for the detail pane.
func documentMarkdown(row app.DocumentRow) string {
	doc := row.Document
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", documentLabel(row))
	if doc.Title != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.Title)
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", fallback(row.Status, "unknown"))
	if doc.Group != "" {
		fmt.Fprintf(&b, "- **Group:** %s\n", doc.Group)
	}
	if doc.Pages > 0 {
		fmt.Fprintf(&b, "- **Pages:** %d\n", doc.Pages)
	}
	if !doc.Time.IsZero() {
		fmt.Fprintf(&b, "- **Updated:** %s\n", doc.Time.UTC().Format("2006-01-02"))
	}
	if row.LastCallExpires != nil {
		fmt.Fprintf(&b, "- **Last call expires:** %s\n", row.LastCallExpires.UTC().Format("2006-01-02"))
	}
	if len(doc.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(doc.Tags, ", "))
	}
	return b.String()
}

func documentLabel(row app.DocumentRow) string {
	if row.Document.Rev == "" {
		return row.Document.Name
	}
	return row.Document.Name + "-" + row.Document.Rev
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// cellWidth sizes a grid column to its header.
func cellWidth(header string) int {
	return max(6, len([]rune(header)))
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// clamp bounds v into [minV, maxV], preferring minV for empty ranges.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// wrapIndex moves idx by delta within [0, n).
func wrapIndex(idx, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((idx+delta)%n + n) % n
}

// fitLines truncates or pads content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
