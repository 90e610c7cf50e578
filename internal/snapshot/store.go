// Package snapshot persists object state in a sqlite database.
//
// An object is stored as its array-cast projection: one row per field, in
// enumeration order, keyed the way an (array) cast keys it and holding the
// JSON encoded value. Loading allocates a fresh instance through the type's
// factory and writes the stored values back into its fields.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/evaluator"
)

var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	id       TEXT PRIMARY KEY,
	type     TEXT NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fields (
	object_id TEXT NOT NULL,
	ordinal   INTEGER NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (object_id, ordinal)
);
`

// Entry describes a stored object.
type Entry struct {
	ID      uuid.UUID
	Type    string
	SavedAt time.Time
	Fields  int
}

type Store struct {
	db  *sql.DB
	dsn string
}

// Open opens (creating if needed) the database at dsn and migrates it.
// dsn is a file path or ":memory:".
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(config.SqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	// one connection: sqlite serializes writers anyway and every
	// connection to ":memory:" would see its own database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}
	s := &Store{db: db, dsn: dsn}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating %s: %w", s.dsn, err)
	}
	return nil
}

// Save stores the current state of inst, replacing any earlier snapshot of it.
func (s *Store) Save(ctx context.Context, inst *evaluator.Instance) (err error) {
	arr := evaluator.ToArray(inst)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id := inst.ID.String()
	if _, err = deleteRows(ctx, tx, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO objects (id, type, saved_at) VALUES (?, ?, ?)`,
		id, inst.Type().Name(), time.Now().UnixNano()); err != nil {
		return fmt.Errorf("saving %s: %w", inst, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fields (object_id, ordinal, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ordinal := 0
	for key, v := range arr.All() {
		raw, encErr := encodeValue(v)
		if encErr != nil {
			return fmt.Errorf("saving %s: field %q: %w", inst, key, encErr)
		}
		if _, err = stmt.ExecContext(ctx, id, ordinal, key, string(raw)); err != nil {
			return fmt.Errorf("saving %s: field %q: %w", inst, key, err)
		}
		ordinal++
	}
	return tx.Commit()
}

// Load rebuilds the object stored under id. Its type must be registered in
// rt's registry.
func (s *Store) Load(ctx context.Context, id uuid.UUID, rt *evaluator.Context) (*evaluator.Instance, error) {
	var typeName string
	err := s.db.QueryRowContext(ctx, `SELECT type FROM objects WHERE id = ?`, id.String()).Scan(&typeName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	t, err := rt.Registry.Resolve(typeName)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	inst, err := rt.New(t)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	inst.ID = id

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM fields WHERE object_id = ? ORDER BY ordinal`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		v, err := decodeValue([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("loading %s: field %q: %w", id, key, err)
		}
		if err := restore(inst, key, v); err != nil {
			return nil, fmt.Errorf("loading %s: %w", id, err)
		}
	}
	return inst, rows.Err()
}

func restore(inst *evaluator.Instance, key string, v evaluator.Value) error {
	if f, ok := parseKey(key).locate(inst.Type()); ok {
		inst.SetSlot(f, v)
		return nil
	}
	store, err := evaluator.EnsureRuntimeFields(inst)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	store.Set(key, v)
	return nil
}

// List returns the stored objects, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.type, o.saved_at, COUNT(f.ordinal)
		FROM objects o LEFT JOIN fields f ON f.object_id = o.id
		GROUP BY o.id
		ORDER BY o.saved_at DESC, o.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id      string
			e       Entry
			savedAt int64
		)
		if err := rows.Scan(&id, &e.Type, &savedAt, &e.Fields); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt object id %q: %w", id, err)
		}
		e.SavedAt = time.Unix(0, savedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the snapshot of id and reports whether there was one.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	n, err := deleteRows(ctx, tx, id.String())
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// deleteRows removes the object row and its fields, returning the number of
// object rows removed.
func deleteRows(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fields WHERE object_id = ?`, id); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
