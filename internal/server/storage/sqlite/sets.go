package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/liftlog/internal/models"
	"github.com/iudanet/liftlog/internal/server/storage"
)

const setColumns = `id, session_id, exercise_id, weight, reps, note, created_at`

// CreateSet stores a new set and fills in its ID and CreatedAt
func (s *Storage) CreateSet(ctx context.Context, set *models.Set) error {
	now := s.now().UTC()

	query := `
		INSERT INTO sets (session_id, exercise_id, weight, reps, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		set.SessionID,
		set.ExerciseID,
		nullFloat(set.Weight),
		nullInt(set.Reps),
		set.Note,
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert set: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get set id: %w", err)
	}

	set.ID = models.RemoteID(strconv.FormatInt(id, 10))
	set.CreatedAt = time.UnixMilli(now.UnixMilli()).UTC()
	return nil
}

// GetSet retrieves a set of the session
func (s *Storage) GetSet(ctx context.Context, sessionID, id int64) (*models.Set, error) {
	query := `SELECT ` + setColumns + ` FROM sets WHERE id = ? AND session_id = ?`

	set, err := scanSet(s.db.QueryRowContext(ctx, query, id, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get set: %w", err)
	}
	return set, nil
}

// UpdateSet merges a partial update and returns the stored result
func (s *Storage) UpdateSet(ctx context.Context, sessionID, id int64, u models.SetUpdate) (*models.Set, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + setColumns + ` FROM sets WHERE id = ? AND session_id = ?`
	cur, err := scanSet(tx.QueryRowContext(ctx, query, id, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get set: %w", err)
	}

	next := u.Apply(*cur)
	_, err = tx.ExecContext(ctx, `
		UPDATE sets
		SET weight = ?, reps = ?, note = ?, updated_at = ?
		WHERE id = ? AND session_id = ?
	`,
		nullFloat(next.Weight),
		nullInt(next.Reps),
		next.Note,
		s.now().UTC().UnixMilli(),
		id,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update set: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &next, nil
}

// DeleteSet removes a set of the session
func (s *Storage) DeleteSet(ctx context.Context, sessionID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sets WHERE id = ? AND session_id = ?`, id, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSetNotFound
	}
	return nil
}

// ListSets returns sets matching filter, newest first
func (s *Storage) ListSets(ctx context.Context, filter models.SetFilter) ([]models.Set, error) {
	var (
		where []string
		args  []any
	)
	if filter.SessionID != 0 {
		where = append(where, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.ExerciseID != 0 {
		where = append(where, "exercise_id = ?")
		args = append(args, filter.ExerciseID)
	}

	query := `SELECT ` + setColumns + ` FROM sets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sets := make([]models.Set, 0)
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan set: %w", err)
		}
		sets = append(sets, *set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sets: %w", err)
	}
	return sets, nil
}

// rowScanner общий интерфейс sql.Row и sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSet(row rowScanner) (*models.Set, error) {
	var (
		set       models.Set
		id        int64
		weight    sql.NullFloat64
		reps      sql.NullInt64
		createdAt int64
	)

	if err := row.Scan(&id, &set.SessionID, &set.ExerciseID, &weight, &reps, &set.Note, &createdAt); err != nil {
		return nil, err
	}

	set.ID = models.RemoteID(strconv.FormatInt(id, 10))
	set.CreatedAt = time.UnixMilli(createdAt).UTC()
	if weight.Valid {
		set.Weight = models.Float(weight.Float64)
	}
	if reps.Valid {
		set.Reps = models.Int(int(reps.Int64))
	}
	return &set, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
