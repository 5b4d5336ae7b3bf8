package tui

import "strings"

type Option func(*Model)

// Logger receives dashboard diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// WithLogger routes load failures and navigation events to logger.
func WithLogger(logger Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithInitialParty opens the documents view for one party name key after the first load.
func WithInitialParty(nameKey string) Option {
	return func(m *Model) {
		m.pendingNameKey = strings.ToLower(strings.TrimSpace(nameKey))
	}
}

// WithMarkdownStyle selects the glamour style used by the document detail pane.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		if style = strings.TrimSpace(style); style != "" {
			m.markdown.Style = style
		}
	}
}
