// Package store keeps installed styles in sqlite database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"ucc/meta"
	"ucc/usercss"
)

var (
	ErrNotFound  = errors.New("style not found")
	ErrAmbiguous = errors.New("more than one style matches")
)

const schema = `
CREATE TABLE IF NOT EXISTS styles (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	namespace    TEXT NOT NULL,
	enabled      INTEGER NOT NULL DEFAULT 1,
	digest       TEXT NOT NULL DEFAULT '',
	install_date INTEGER NOT NULL,
	update_date  INTEGER NOT NULL,
	data         TEXT NOT NULL,
	UNIQUE (name, namespace)
);
CREATE INDEX IF NOT EXISTS styles_name ON styles (name);
`

const selectStyle = `SELECT data FROM styles`

// Store is safe for concurrent use.
type Store struct {
	log      *zap.Logger
	pool     *sqlitex.Pool
	compiler *usercss.Compiler
	now      func() time.Time
}

// Open opens (creating if necessary) database at path. Compiler is used to
// rebuild styles when their variables change.
func Open(ctx context.Context, path string, compiler *usercss.Compiler, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if compiler == nil {
		compiler = usercss.NewCompiler(log, nil)
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{PoolSize: 4})
	if err != nil {
		return nil, fmt.Errorf("unable to open style database (%s): %w", path, err)
	}
	s := &Store{log: log.Named("store"), pool: pool, compiler: compiler, now: time.Now}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	err = sqlitex.ExecuteScript(conn, schema, nil)
	// connection has to be back before pool could be closed
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to prepare style database: %w", err)
	}
	s.log.Debug("Style database opened", zap.String("path", path))
	return s, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) conn(ctx context.Context) (*sqlite.Conn, func(), error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() { s.pool.Put(conn) }, nil
}

func scanStyles(conn *sqlite.Conn, query string, args ...any) ([]*usercss.Style, error) {
	var res []*usercss.Style
	err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			style := &usercss.Style{}
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), style); err != nil {
				return fmt.Errorf("corrupted style record: %w", err)
			}
			res = append(res, style)
			return nil
		},
	})
	return res, err
}

func one(styles []*usercss.Style, err error) (*usercss.Style, error) {
	switch {
	case err != nil:
		return nil, err
	case len(styles) == 0:
		return nil, ErrNotFound
	case len(styles) > 1:
		return nil, ErrAmbiguous
	}
	return styles[0], nil
}

func save(conn *sqlite.Conn, style *usercss.Style) error {
	data, err := json.Marshal(style)
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn, `
INSERT INTO styles (id, name, namespace, enabled, digest, install_date, update_date, data)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name, namespace = excluded.namespace, enabled = excluded.enabled,
	digest = excluded.digest, update_date = excluded.update_date, data = excluded.data`,
		&sqlitex.ExecOptions{Args: []any{
			style.ID, style.Name, style.Meta.Namespace, style.Enabled, style.Digest,
			style.InstallDate.UnixMilli(), style.UpdateDate.UnixMilli(), string(data),
		}})
}

// Get returns style by its id.
func (s *Store) Get(ctx context.Context, id string) (*usercss.Style, error) {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	return one(scanStyles(conn, selectStyle+` WHERE id = ?`, id))
}

// Find returns style with the name and namespace.
func (s *Store) Find(ctx context.Context, name, namespace string) (*usercss.Style, error) {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	return one(scanStyles(conn, selectStyle+` WHERE name = ? AND namespace = ?`, name, namespace))
}

// Resolve finds style by id or, failing that, by name.
func (s *Store) Resolve(ctx context.Context, ref string) (*usercss.Style, error) {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	style, err := one(scanStyles(conn, selectStyle+` WHERE id = ?`, ref))
	if !errors.Is(err, ErrNotFound) {
		return style, err
	}
	return one(scanStyles(conn, selectStyle+` WHERE name = ?`, ref))
}

// List returns all installed styles in natural order of their names.
func (s *Store) List(ctx context.Context) ([]*usercss.Style, error) {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()
	styles, err := scanStyles(conn, selectStyle)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(styles, func(i, j int) bool {
		if styles[i].Name == styles[j].Name {
			return natural.Less(styles[i].Meta.Namespace, styles[j].Meta.Namespace)
		}
		return natural.Less(styles[i].Name, styles[j].Name)
	})
	return styles, nil
}

// Delete removes style by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer put()
	if err := sqlitex.Execute(conn, `DELETE FROM styles WHERE id = ?`, &sqlitex.ExecOptions{Args: []any{id}}); err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return ErrNotFound
	}
	s.log.Debug("Style deleted", zap.String("id", id))
	return nil
}

// Install compiles source and stores the style. Style with the same name and
// namespace is updated keeping its id and still valid variable values.
func (s *Store) Install(ctx context.Context, source string) (_ *usercss.Style, _ *usercss.Result, err error) {
	style, err := usercss.BuildMeta(source)
	if err != nil {
		return nil, nil, err
	}

	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer put()

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, nil, err
	}
	defer endFn(&err)

	now := s.now()
	old, err := one(scanStyles(conn, selectStyle+` WHERE name = ? AND namespace = ?`, style.Name, style.Meta.Namespace))
	switch {
	case err == nil:
		style.ID, style.Enabled, style.InstallDate = old.ID, old.Enabled, old.InstallDate
		usercss.AssignVars(style, old.Meta.Vars)
	case errors.Is(err, ErrNotFound):
		id, err := uuid.NewV7()
		if err != nil {
			return nil, nil, err
		}
		style.ID, style.InstallDate = id.String(), now
	default:
		return nil, nil, err
	}
	style.UpdateDate = now

	res, err := s.compiler.BuildCode(ctx, style)
	if err != nil {
		return nil, nil, err
	}
	if err := save(conn, style); err != nil {
		return nil, nil, fmt.Errorf("unable to save style %q: %w", style.Name, err)
	}
	s.log.Debug("Style installed", zap.String("id", style.ID), zap.String("name", style.Name), zap.Bool("update", old != nil))
	return style, res, nil
}

// SetVar changes value of a single variable and rebuilds the style. Value
// must satisfy variable declaration.
func (s *Store) SetVar(ctx context.Context, id, name, value string) (_ *usercss.Style, err error) {
	conn, put, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer put()

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, err
	}
	defer endFn(&err)

	style, err := one(scanStyles(conn, selectStyle+` WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	va, ok := style.Meta.Vars.Get(name)
	if !ok {
		return nil, fmt.Errorf("style %q has no variable %q", style.Name, name)
	}
	check := va.Clone()
	check.SetValue(value)
	if err := meta.ValidateVar(check); err != nil {
		return nil, err
	}
	va.SetValue(value)

	if _, err := s.compiler.BuildCode(ctx, style); err != nil {
		return nil, err
	}
	style.UpdateDate = s.now()
	if err := save(conn, style); err != nil {
		return nil, fmt.Errorf("unable to save style %q: %w", style.Name, err)
	}
	return style, nil
}
