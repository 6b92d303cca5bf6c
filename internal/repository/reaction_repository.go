package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ReactionRepo manages the room_reactions table.  A row is one user's
// current reaction to one room; UNIQUE(room_id, user_id) guarantees the
// like and dislike sets stay disjoint because there is only one row to
// hold either kind.
type ReactionRepo struct {
	db *sql.DB
}

// NewReactionRepo returns a new ReactionRepo bound to the given database.
func NewReactionRepo(db *sql.DB) *ReactionRepo { return &ReactionRepo{db: db} }

// React records a like or dislike by userID on roomID.  The transition
// runs in a transaction that locks the user's existing reaction row:
//
//	no row            -> insert the new kind
//	row with same     -> ErrAlreadyReacted
//	row with opposite -> flip the kind in place
//
// Flipping in place is what moves the user out of the opposite set and
// into the requested one in a single statement.  Counters are derived at
// read time, so there is nothing else to adjust.  kind must be one of
// model.ReactionLike or model.ReactionDislike; handlers validate it.
func (r *ReactionRepo) React(ctx context.Context, roomID, userID uint64, kind string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT kind FROM room_reactions WHERE room_id = ? AND user_id = ? FOR UPDATE`,
		roomID, userID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_reactions (room_id, user_id, kind) VALUES (?,?,?)`,
			roomID, userID, kind); err != nil {
			// A concurrent first reaction can slip in between the empty
			// read and this insert; the unique key reports it as 1062.
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return ErrAlreadyReacted
			}
			return err
		}
	case err != nil:
		return err
	case current == kind:
		return ErrAlreadyReacted
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE room_reactions SET kind = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE room_id = ? AND user_id = ?`,
			kind, roomID, userID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Counts returns the current like and dislike totals for a room straight
// from the reaction sets.
func (r *ReactionRepo) Counts(ctx context.Context, roomID uint64) (likes, dislikes int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
		    COUNT(IF(kind = ?, 1, NULL)),
		    COUNT(IF(kind = ?, 1, NULL))
		 FROM room_reactions WHERE room_id = ?`,
		model.ReactionLike, model.ReactionDislike, roomID).Scan(&likes, &dislikes)
	return likes, dislikes, err
}
