package sqlite

import (
	"strings"

	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/domain"
)

const documentColumns = `d.name, d.type, d.title, d.rev, d.rfc_number, d.group_acronym, d.stream, d.responsible_id, d.pages, d.time`

// buildDocumentQuery translates a document filter into one SELECT over documents.
func buildDocumentQuery(f app.DocumentFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if len(f.Types) > 0 {
		where = append(where, `d.type IN (`+placeholders(len(f.Types))+`)`)
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}
	if len(f.DraftStates) > 0 {
		where = append(where, `(d.type != ? OR EXISTS (
			SELECT 1 FROM doc_states s
			WHERE s.doc_name = d.name AND s.state_type = ? AND s.slug IN (`+placeholders(len(f.DraftStates))+`)))`)
		args = append(args, string(domain.DocTypeDraft), string(domain.StateTypeDraft))
		for _, slug := range f.DraftStates {
			args = append(args, slug)
		}
	}
	if f.NameContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.NameContains)) + "%"
		where = append(where, `(EXISTS (SELECT 1 FROM doc_aliases a WHERE a.doc_name = d.name AND a.name LIKE ? ESCAPE '\')
			OR lower(d.title) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.AuthorContains != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.AuthorContains)) + "%"
		where = append(where, `EXISTS (
			SELECT 1 FROM doc_authors au JOIN persons p ON p.id = au.person_id
			WHERE au.doc_name = d.name AND (lower(p.name) LIKE ? ESCAPE '\' OR p.email LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern)
	}
	if f.Group != "" {
		where = append(where, `d.group_acronym = ?`)
		args = append(args, f.Group)
	}
	if f.Area != "" {
		where = append(where, `(d.group_acronym = ? OR EXISTS (
			SELECT 1 FROM doc_groups g WHERE g.acronym = d.group_acronym AND g.type = ? AND g.parent = ?))`)
		args = append(args, f.Area, domain.GroupTypeWG, f.Area)
	}
	if f.ResponsibleID != "" {
		where = append(where, `d.responsible_id = ?`)
		args = append(args, f.ResponsibleID)
	}
	for _, ref := range f.States {
		where = append(where, `EXISTS (SELECT 1 FROM doc_states s WHERE s.doc_name = d.name AND s.state_type = ? AND s.slug = ?)`)
		args = append(args, string(ref.Type), ref.Slug)
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM doc_tags t WHERE t.doc_name = d.name AND t.tag = ?)`)
		args = append(args, f.Tag)
	}
	if f.NoIESGSubstate {
		where = append(where, `NOT EXISTS (SELECT 1 FROM doc_tags t WHERE t.doc_name = d.name AND t.tag IN (`+placeholders(len(domain.IESGSubstateTags))+`))`)
		for _, tag := range domain.IESGSubstateTags {
			args = append(args, tag)
		}
	}
	if f.Stream != "" {
		where = append(where, `d.stream = ?`)
		args = append(args, f.Stream)
	}
	if f.Names != nil {
		if len(f.Names) == 0 {
			where = append(where, `0`)
		} else {
			where = append(where, `d.name IN (`+placeholders(len(f.Names))+`)`)
			for _, name := range f.Names {
				args = append(args, name)
			}
		}
	}
	for _, token := range f.NameTokens {
		where = append(where, `d.name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(token))+"%")
	}

	query := `SELECT ` + documentColumns + ` FROM documents d`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	switch f.Order {
	case app.OrderByTime:
		query += ` ORDER BY d.time ASC, d.name ASC`
	case app.OrderByTimeDesc:
		query += ` ORDER BY d.time DESC, d.name ASC`
	default:
		query += ` ORDER BY d.name ASC`
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return query, args
}

// placeholders returns n comma-separated bind markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE wildcards with a backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
