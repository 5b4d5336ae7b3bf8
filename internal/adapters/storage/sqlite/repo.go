package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// tsLayout is fixed-width so stored timestamps compare correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// memoryDBSeq names in-memory databases so each OpenInMemory call is isolated.
var memoryDBSeq atomic.Int64

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:datatracker-%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema and seeds the canonical state catalog without overwriting stored rows.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS persons (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS doc_groups (
			acronym TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'active',
			parent TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS roles (
			person_id TEXT NOT NULL,
			name TEXT NOT NULL,
			group_acronym TEXT NOT NULL,
			PRIMARY KEY(person_id, name, group_acronym),
			FOREIGN KEY(person_id) REFERENCES persons(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS states (
			type TEXT NOT NULL,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			ord INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY(type, slug)
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			rev TEXT NOT NULL DEFAULT '',
			rfc_number INTEGER NOT NULL DEFAULT 0,
			group_acronym TEXT NOT NULL DEFAULT '',
			stream TEXT NOT NULL DEFAULT '',
			responsible_id TEXT NOT NULL DEFAULT '',
			pages INTEGER NOT NULL DEFAULT 0,
			time TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS doc_states (
			doc_name TEXT NOT NULL,
			state_type TEXT NOT NULL,
			slug TEXT NOT NULL,
			PRIMARY KEY(doc_name, state_type),
			FOREIGN KEY(doc_name) REFERENCES documents(name) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS doc_tags (
			doc_name TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY(doc_name, tag),
			FOREIGN KEY(doc_name) REFERENCES documents(name) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS doc_aliases (
			name TEXT PRIMARY KEY,
			doc_name TEXT NOT NULL,
			FOREIGN KEY(doc_name) REFERENCES documents(name) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS doc_authors (
			doc_name TEXT NOT NULL,
			person_id TEXT NOT NULL,
			ord INTEGER NOT NULL,
			PRIMARY KEY(doc_name, person_id),
			FOREIGN KEY(doc_name) REFERENCES documents(name) ON DELETE CASCADE
		);`,
		// doc_events.doc_name is not a foreign key; history may outlive a document row.
		`CREATE TABLE IF NOT EXISTS doc_events (
			id TEXT PRIMARY KEY,
			doc_name TEXT NOT NULL,
			type TEXT NOT NULL,
			time TEXT NOT NULL,
			by_id TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			rev TEXT NOT NULL DEFAULT '',
			expires TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_responsible ON documents(responsible_id);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_time ON documents(time DESC, name);`,
		`CREATE INDEX IF NOT EXISTS idx_doc_states_slug ON doc_states(state_type, slug);`,
		`CREATE INDEX IF NOT EXISTS idx_doc_aliases_doc ON doc_aliases(doc_name);`,
		`CREATE INDEX IF NOT EXISTS idx_doc_events_doc_type_time ON doc_events(doc_name, type, time DESC, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_doc_events_type_time ON doc_events(type, time DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	for _, st := range domain.CanonicalStates() {
		if _, err := r.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO states(type, slug, name, ord) VALUES (?, ?, ?, ?)
		`, string(st.Type), st.Slug, st.Name, st.Order); err != nil {
			return fmt.Errorf("seed state %s/%s: %w", st.Type, st.Slug, err)
		}
	}
	return nil
}

// UpsertPerson creates or replaces one person.
func (r *Repository) UpsertPerson(ctx context.Context, p domain.Person) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO persons(id, name, email) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email
	`, p.ID, p.Name, p.Email)
	return err
}

// GetPerson returns person.
func (r *Repository) GetPerson(ctx context.Context, id string) (domain.Person, error) {
	var p domain.Person
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email FROM persons WHERE id = ?`, id).Scan(&p.ID, &p.Name, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Person{}, err
	}
	return p, nil
}

// ListPersons lists persons.
func (r *Repository) ListPersons(ctx context.Context) ([]domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email FROM persons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Person{}
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertRole records one role; repeats are ignored.
func (r *Repository) UpsertRole(ctx context.Context, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO roles(person_id, name, group_acronym) VALUES (?, ?, ?)
	`, role.PersonID, role.Name, role.GroupAcronym)
	return err
}

// ListRoles lists roles.
func (r *Repository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT person_id, name, group_acronym FROM roles ORDER BY person_id, group_acronym, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.PersonID, &role.Name, &role.GroupAcronym); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// UpsertGroup creates or replaces one group.
func (r *Repository) UpsertGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doc_groups(acronym, name, type, state, parent) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(acronym) DO UPDATE SET
			name = excluded.name, type = excluded.type, state = excluded.state, parent = excluded.parent
	`, g.Acronym, g.Name, g.Type, g.State, g.Parent)
	return err
}

// ListGroups lists groups.
func (r *Repository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT acronym, name, type, state, parent FROM doc_groups ORDER BY acronym`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Group{}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.Acronym, &g.Name, &g.Type, &g.State, &g.Parent); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpsertState creates or replaces one catalog row.
func (r *Repository) UpsertState(ctx context.Context, st domain.State) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO states(type, slug, name, ord) VALUES (?, ?, ?, ?)
		ON CONFLICT(type, slug) DO UPDATE SET name = excluded.name, ord = excluded.ord
	`, string(st.Type), st.Slug, st.Name, st.Order)
	return err
}

// ListStates lists catalog rows of one state machine, or all rows when stateType is empty.
func (r *Repository) ListStates(ctx context.Context, stateType domain.StateType) ([]domain.State, error) {
	query := `SELECT type, slug, name, ord FROM states`
	args := []any{}
	if stateType != "" {
		query += ` WHERE type = ?`
		args = append(args, string(stateType))
	}
	query += ` ORDER BY type, ord, slug`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.State{}
	for rows.Next() {
		var (
			st      domain.State
			typeRaw string
		)
		if err := rows.Scan(&typeRaw, &st.Slug, &st.Name, &st.Order); err != nil {
			return nil, err
		}
		st.Type = domain.StateType(typeRaw)
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpsertDocument replaces one document and its states, tags, aliases, and authors.
func (r *Repository) UpsertDocument(ctx context.Context, doc domain.Document) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents(name, type, title, rev, rfc_number, group_acronym, stream, responsible_id, pages, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type = excluded.type, title = excluded.title, rev = excluded.rev,
			rfc_number = excluded.rfc_number, group_acronym = excluded.group_acronym,
			stream = excluded.stream, responsible_id = excluded.responsible_id,
			pages = excluded.pages, time = excluded.time
	`, doc.Name, string(doc.Type), doc.Title, doc.Rev, doc.RFCNumber, doc.Group, doc.Stream, doc.ResponsibleID, doc.Pages, ts(doc.Time))
	if err != nil {
		return err
	}
	for _, table := range []string{"doc_states", "doc_tags", "doc_aliases", "doc_authors"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE doc_name = ?`, doc.Name); err != nil {
			return err
		}
	}
	for _, st := range doc.States {
		if _, err = tx.ExecContext(ctx, `INSERT INTO doc_states(doc_name, state_type, slug) VALUES (?, ?, ?)`, doc.Name, string(st.Type), st.Slug); err != nil {
			return err
		}
	}
	for _, tag := range doc.Tags {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO doc_tags(doc_name, tag) VALUES (?, ?)`, doc.Name, tag); err != nil {
			return err
		}
	}
	for _, alias := range doc.Aliases {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO doc_aliases(name, doc_name) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET doc_name = excluded.doc_name
		`, alias, doc.Name); err != nil {
			return err
		}
	}
	for i, author := range doc.Authors {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO doc_authors(doc_name, person_id, ord) VALUES (?, ?, ?)`, doc.Name, author, i); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// GetDocument returns document.
func (r *Repository) GetDocument(ctx context.Context, name string) (domain.Document, error) {
	docs, err := r.ListDocuments(ctx, app.DocumentFilter{Names: []string{strings.ToLower(strings.TrimSpace(name))}})
	if err != nil {
		return domain.Document{}, err
	}
	if len(docs) == 0 {
		return domain.Document{}, app.ErrNotFound
	}
	return docs[0], nil
}

// ListDocuments lists documents matching filter.
func (r *Repository) ListDocuments(ctx context.Context, filter app.DocumentFilter) ([]domain.Document, error) {
	query, args := buildDocumentQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	out := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if err := r.hydrate(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// hydrate loads states, tags, aliases, and authors for docs in place.
func (r *Repository) hydrate(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	index := make(map[string]int, len(docs))
	names := make([]any, 0, len(docs))
	for i, doc := range docs {
		index[doc.Name] = i
		names = append(names, doc.Name)
	}
	in := placeholders(len(names))

	err := r.eachRow(ctx, `
		SELECT ds.doc_name, ds.state_type, ds.slug, COALESCE(s.name, ds.slug), COALESCE(s.ord, 0)
		FROM doc_states ds
		LEFT JOIN states s ON s.type = ds.state_type AND s.slug = ds.slug
		WHERE ds.doc_name IN (`+in+`)
		ORDER BY ds.doc_name, ds.state_type
	`, names, func(s scanner) error {
		var (
			docName, typeRaw string
			st               domain.State
		)
		if err := s.Scan(&docName, &typeRaw, &st.Slug, &st.Name, &st.Order); err != nil {
			return err
		}
		st.Type = domain.StateType(typeRaw)
		i := index[docName]
		docs[i].States = append(docs[i].States, st)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load document states: %w", err)
	}

	err = r.eachRow(ctx, `SELECT doc_name, tag FROM doc_tags WHERE doc_name IN (`+in+`) ORDER BY doc_name, tag`, names, func(s scanner) error {
		var docName, tag string
		if err := s.Scan(&docName, &tag); err != nil {
			return err
		}
		i := index[docName]
		docs[i].Tags = append(docs[i].Tags, tag)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load document tags: %w", err)
	}

	err = r.eachRow(ctx, `
		SELECT doc_name, name FROM doc_aliases WHERE doc_name IN (`+in+`)
		ORDER BY doc_name, name = doc_name DESC, name
	`, names, func(s scanner) error {
		var docName, alias string
		if err := s.Scan(&docName, &alias); err != nil {
			return err
		}
		i := index[docName]
		docs[i].Aliases = append(docs[i].Aliases, alias)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load document aliases: %w", err)
	}

	err = r.eachRow(ctx, `SELECT doc_name, person_id FROM doc_authors WHERE doc_name IN (`+in+`) ORDER BY doc_name, ord`, names, func(s scanner) error {
		var docName, author string
		if err := s.Scan(&docName, &author); err != nil {
			return err
		}
		i := index[docName]
		docs[i].Authors = append(docs[i].Authors, author)
		return nil
	})
	if err != nil {
		return fmt.Errorf("load document authors: %w", err)
	}

	for i := range docs {
		if docs[i].States == nil {
			docs[i].States = []domain.State{}
		}
		if docs[i].Tags == nil {
			docs[i].Tags = []string{}
		}
		if docs[i].Authors == nil {
			docs[i].Authors = []string{}
		}
	}
	return nil
}

// eachRow runs query and calls fn for every row.
func (r *Repository) eachRow(ctx context.Context, query string, args []any, fn func(scanner) error) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListResponsibleIDs returns every person ID that is responsible for a document.
func (r *Repository) ListResponsibleIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT responsible_id FROM documents WHERE responsible_id != '' ORDER BY responsible_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FindAliases returns up to limit aliases matching name, ordered by alias.
func (r *Repository) FindAliases(ctx context.Context, match app.AliasMatch, name string, limit int) ([]app.AliasRow, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var (
		cond string
		arg  string
	)
	switch match {
	case app.AliasExact:
		cond, arg = `name = ?`, name
	case app.AliasPrefix:
		cond, arg = `name LIKE ? ESCAPE '\'`, escapeLike(name)+"%"
	case app.AliasContains:
		cond, arg = `name LIKE ? ESCAPE '\'`, "%"+escapeLike(name)+"%"
	default:
		return nil, fmt.Errorf("unknown alias match %q", match)
	}
	query := `SELECT name, doc_name FROM doc_aliases WHERE ` + cond + ` ORDER BY name`
	args := []any{arg}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.aliasRows(ctx, query, args...)
}

// ListAliasesByDraftState returns every alias of drafts in one draft state.
func (r *Repository) ListAliasesByDraftState(ctx context.Context, slug string) ([]app.AliasRow, error) {
	return r.aliasRows(ctx, `
		SELECT a.name, a.doc_name
		FROM doc_aliases a
		JOIN documents d ON d.name = a.doc_name
		JOIN doc_states s ON s.doc_name = d.name AND s.state_type = ?
		WHERE d.type = ? AND s.slug = ?
		ORDER BY a.name
	`, string(domain.StateTypeDraft), string(domain.DocTypeDraft), slug)
}

// SuggestAliases returns up to limit aliases of docType documents whose names contain
// every token, ordered by alias.
func (r *Repository) SuggestAliases(ctx context.Context, docType domain.DocType, tokens []string, limit int) ([]app.AliasRow, error) {
	where := []string{`d.type = ?`}
	args := []any{string(docType)}
	for _, token := range tokens {
		where = append(where, `a.name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(token))+"%")
	}
	query := `SELECT DISTINCT a.name, a.doc_name FROM doc_aliases a JOIN documents d ON d.name = a.doc_name WHERE ` +
		strings.Join(where, ` AND `) + ` ORDER BY a.name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.aliasRows(ctx, query, args...)
}

func (r *Repository) aliasRows(ctx context.Context, query string, args ...any) ([]app.AliasRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []app.AliasRow{}
	for rows.Next() {
		var row app.AliasRow
		if err := rows.Scan(&row.Name, &row.DocName); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CreateDocEvent records one event; an existing ID is replaced.
func (r *Repository) CreateDocEvent(ctx context.Context, ev domain.DocEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doc_events(id, doc_name, type, time, by_id, description, rev, expires)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_name = excluded.doc_name, type = excluded.type, time = excluded.time,
			by_id = excluded.by_id, description = excluded.description,
			rev = excluded.rev, expires = excluded.expires
	`, ev.ID, ev.DocName, string(ev.Type), ts(ev.Time), ev.By, ev.Description, ev.Rev, nullableTS(ev.Expires))
	return err
}

// LatestDocEvent returns the newest event of the given types for one document.
func (r *Repository) LatestDocEvent(ctx context.Context, docName string, types []domain.EventType) (domain.DocEvent, error) {
	if len(types) == 0 {
		return domain.DocEvent{}, app.ErrNotFound
	}
	args := []any{docName}
	for _, t := range types {
		args = append(args, string(t))
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, doc_name, type, time, by_id, description, rev, expires
		FROM doc_events
		WHERE doc_name = ? AND type IN (`+placeholders(len(types))+`)
		ORDER BY time DESC, id DESC
		LIMIT 1
	`, args...)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DocEvent{}, app.ErrNotFound
	}
	return ev, err
}

// ListDocEvents lists events matching filter, newest first.
func (r *Repository) ListDocEvents(ctx context.Context, filter app.EventFilter) ([]domain.DocEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.DocName != "" {
		where = append(where, `doc_name = ?`)
		args = append(args, filter.DocName)
	}
	if len(filter.Types) > 0 {
		where = append(where, `type IN (`+placeholders(len(filter.Types))+`)`)
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}
	if !filter.Since.IsZero() {
		where = append(where, `time >= ?`)
		args = append(args, ts(filter.Since))
	}
	query := `SELECT id, doc_name, type, time, by_id, description, rev, expires FROM doc_events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY time DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.DocEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument reads the documents columns selected by buildDocumentQuery.
func scanDocument(s scanner) (domain.Document, error) {
	var (
		doc     domain.Document
		typeRaw string
		timeRaw string
	)
	if err := s.Scan(&doc.Name, &typeRaw, &doc.Title, &doc.Rev, &doc.RFCNumber, &doc.Group, &doc.Stream, &doc.ResponsibleID, &doc.Pages, &timeRaw); err != nil {
		return domain.Document{}, err
	}
	doc.Type = domain.DocType(typeRaw)
	doc.Time = parseTS(timeRaw)
	return doc, nil
}

// scanEvent reads one doc_events row.
func scanEvent(s scanner) (domain.DocEvent, error) {
	var (
		ev      domain.DocEvent
		typeRaw string
		timeRaw string
		expires sql.NullString
	)
	if err := s.Scan(&ev.ID, &ev.DocName, &typeRaw, &timeRaw, &ev.By, &ev.Description, &ev.Rev, &expires); err != nil {
		return domain.DocEvent{}, err
	}
	ev.Type = domain.EventType(typeRaw)
	ev.Time = parseTS(timeRaw)
	ev.Expires = parseNullTS(expires)
	return ev, nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
