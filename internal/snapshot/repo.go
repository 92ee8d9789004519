package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loremaker/internal/loremaker"
	"loremaker/pkg/models"
)

// Snapshot is an archived batch. The page-load path never reads these; they
// exist so operators can see what the sheet looked like at a point in time.
type Snapshot struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	SourceError    string    `json:"source_error,omitempty"`
	CharacterCount int       `json:"character_count"`
	LoadedAt       time.Time `json:"loaded_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, Now: time.Now}
}

// Save stores the whole batch in one transaction under a new snapshot id.
func (r *Repo) Save(ctx context.Context, batch *loremaker.Batch) (Snapshot, error) {
	if batch == nil {
		return Snapshot{}, errors.New("save snapshot: nil batch")
	}
	snap := Snapshot{
		ID:             uuid.NewString(),
		Source:         batch.Source,
		SourceError:    batch.Error,
		CharacterCount: len(batch.Characters),
		LoadedAt:       batch.LoadedAt.UTC(),
		CreatedAt:      r.now().UTC(),
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, source, source_error, character_count, loaded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Source, nullString(snap.SourceError), snap.CharacterCount, snap.LoadedAt, snap.CreatedAt); err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_characters (snapshot_id, position, slug, character_id, name, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, c := range batch.Characters {
		payload, err := json.Marshal(c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("marshal %s: %w", c.Slug, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, i, c.Slug, c.ID, c.Name, string(payload)); err != nil {
			return Snapshot{}, fmt.Errorf("insert character %s: %w", c.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit tx: %w", err)
	}
	return snap, nil
}

// List returns the most recent snapshots first.
func (r *Repo) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, source, source_error, character_count, loaded_at, created_at
		FROM snapshots
		ORDER BY created_at DESC, loaded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]Snapshot, 0, limit)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Get returns nil when the snapshot does not exist.
func (r *Repo) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, source, source_error, character_count, loaded_at, created_at
		FROM snapshots
		WHERE id = ?
	`, id)
	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan get: %w", err)
	}
	return &s, nil
}

// Characters returns the stored characters of a snapshot in batch order.
func (r *Repo) Characters(ctx context.Context, id string) ([]models.Character, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT payload
		FROM snapshot_characters
		WHERE snapshot_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("characters query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Character, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("characters scan: %w", err)
		}
		var c models.Character
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, fmt.Errorf("decode character: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		s        Snapshot
		srcError sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Source, &srcError, &s.CharacterCount, &s.LoadedAt, &s.CreatedAt); err != nil {
		return Snapshot{}, err
	}
	s.SourceError = srcError.String
	return s, nil
}

func (r *Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
