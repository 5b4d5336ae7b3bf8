// Package report renders dashboard and search results for terminal output.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/dashboard"
)

var (
	borderColor = lipgloss.Color("62")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	goodStyle   = cellStyle.Foreground(lipgloss.Color("42"))
	badStyle    = cellStyle.Foreground(lipgloss.Color("203"))
	sumStyle    = cellStyle.Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
)

// WriteWorkload renders every workload section as one table per group type.
func WriteWorkload(w io.Writer, wl dashboard.Workload) error {
	days := int(wl.Window.Hours() / 24)
	if _, err := fmt.Fprintf(w, "%s\n", titleStyle.Render(fmt.Sprintf("Workload at %s (prior window %d days)", wl.ComputedAt.UTC().Format("2006-01-02 15:04 MST"), days))); err != nil {
		return err
	}
	if len(wl.Sections) == 0 {
		_, err := fmt.Fprintln(w, "no responsible parties")
		return err
	}
	for _, section := range wl.Sections {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render(string(section.GroupType)), SectionTable(section)); err != nil {
			return err
		}
	}
	return nil
}

// SectionTable renders one section with a row per party and a trailing sum row.
// Cells show the current count and, when it moved, the change since the prior window.
func SectionTable(section dashboard.Section) string {
	headers := make([]string, 0, len(section.Buckets)+1)
	headers = append(headers, "Party")
	for _, bucket := range section.Buckets {
		headers = append(headers, bucket.Short)
	}

	styles := make([][]lipgloss.Style, 0, len(section.Rows)+1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...)
	for _, row := range section.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		rowStyles := make([]lipgloss.Style, 0, len(row.Cells)+1)
		cells = append(cells, row.Party.PlainName())
		rowStyles = append(rowStyles, cellStyle)
		for _, cell := range row.Cells {
			cells = append(cells, formatCount(cell.Current, cell.Prior))
			rowStyles = append(rowStyles, trendStyle(cell.Bucket.Trend, cell.Current, cell.Prior))
		}
		t.Row(cells...)
		styles = append(styles, rowStyles)
	}
	sums := make([]string, 0, len(section.Sums)+1)
	sumStyles := make([]lipgloss.Style, 0, len(section.Sums)+1)
	sums = append(sums, "Sum")
	sumStyles = append(sumStyles, sumStyle)
	for _, sum := range section.Sums {
		sums = append(sums, formatCount(sum.Current, sum.Prior))
		sumStyles = append(sumStyles, sumStyle)
	}
	t.Row(sums...)
	styles = append(styles, sumStyles)

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle.Padding(0, 1)
		}
		if row < 0 || row >= len(styles) || col >= len(styles[row]) {
			return cellStyle
		}
		return styles[row][col]
	})
	return t.Render()
}

// formatCount renders a count with its signed change against the prior window.
func formatCount(current, prior int) string {
	diff := current - prior
	switch {
	case diff > 0:
		return fmt.Sprintf("%d (+%d)", current, diff)
	case diff < 0:
		return fmt.Sprintf("%d (%d)", current, diff)
	default:
		return strconv.Itoa(current)
	}
}

// trendStyle colors a rising count by whether growth in that bucket is welcome.
func trendStyle(trend dashboard.Trend, current, prior int) lipgloss.Style {
	if current == prior {
		return cellStyle
	}
	rising := current > prior
	switch trend {
	case dashboard.TrendGood:
		if rising {
			return goodStyle
		}
		return badStyle
	case dashboard.TrendBad:
		if rising {
			return badStyle
		}
		return goodStyle
	default:
		return cellStyle
	}
}

// SearchTable renders search rows as a compact table.
func SearchTable(rows []app.DocumentRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers("Document", "Title", "Date", "Status", "AD").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	for _, row := range rows {
		t.Row(documentLabel(row), truncate(row.Document.Title, 48), row.Document.Time.UTC().Format("2006-01-02"), row.Status, row.ADName)
	}
	return t.Render()
}

// DocumentsMarkdown lays out one party's ranked documents as markdown, one
// heading per consecutive search heading.
func DocumentsMarkdown(docs app.ADDocuments) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Documents for %s\n\n", docs.AD.PlainName())
	if len(docs.Rows) == 0 {
		b.WriteString("No documents.\n")
		return b.String()
	}
	heading := ""
	for i, row := range docs.Rows {
		if i == 0 || row.SearchHeading != heading {
			heading = row.SearchHeading
			title := heading
			if title == "" {
				title = "Other"
			}
			fmt.Fprintf(&b, "\n## %s\n\n", title)
			b.WriteString("| Document | Title | Status | Pages |\n|---|---|---|---|\n")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
			escapeCell(documentLabel(row)),
			escapeCell(truncate(row.Document.Title, 60)),
			escapeCell(row.Status),
			row.Document.Pages,
		)
	}
	if docs.Truncated {
		b.WriteString("\n_Result truncated._\n")
	}
	return b.String()
}

func documentLabel(row app.DocumentRow) string {
	if row.Document.Rev == "" {
		return row.Document.Name
	}
	return row.Document.Name + "-" + row.Document.Rev
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 1 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
