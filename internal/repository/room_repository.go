// Package repository contains data access logic separated from HTTP handlers.
// This file holds the room repository: CRUD, the newest-first listing with
// creator and reserver identities resolved, and the reserve transition.
// Reserving is a single conditional UPDATE, so two racing calls cannot both
// win; the loser sees zero affected rows and gets ErrAlreadyReserved.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// ErrRoomNotFound is returned when a room cannot be found in the DB.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo encapsulates all database queries related to rooms.  Like and
// dislike counters are never stored on the rooms table; every read derives
// them from room_reactions so they cannot drift from the membership sets.
type RoomRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomInput carries the client-supplied fields for creating a room.
type RoomInput struct {
	Title   string
	Body    string
	City    string
	ImgLink string
	StartAt *time.Time
	EndsAt  *time.Time
}

// RoomUpdate carries a partial update.  Nil fields are left unchanged.
type RoomUpdate struct {
	Title   *string
	Body    *string
	City    *string
	ImgLink *string
	StartAt *time.Time
	EndsAt  *time.Time
}

// roomSelect joins the creator and (when present) the reserver and derives
// both counters from room_reactions in the same statement.
const roomSelect = `SELECT r.id, r.title, r.body, r.city, r.img_link, r.start_at, r.ends_at,
       r.reserved, r.created_at, r.updated_at,
       c.id, c.username, c.email,
       v.id, v.username, v.email,
       (SELECT COUNT(*) FROM room_reactions x WHERE x.room_id = r.id AND x.kind = 'LIKE'),
       (SELECT COUNT(*) FROM room_reactions x WHERE x.room_id = r.id AND x.kind = 'DISLIKE')
FROM rooms r
JOIN users c ON c.id = r.creator_id
LEFT JOIN users v ON v.id = r.reserved_by`

// Create inserts a new room owned by creatorID and returns its ID.
// Callers fetch the full record with GetByID so the response carries the
// DB-assigned timestamps and the resolved creator.
func (r *RoomRepo) Create(ctx context.Context, creatorID uint64, in RoomInput) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (creator_id, title, body, city, img_link, start_at, ends_at) VALUES (?,?,?,?,?,?,?)`,
		creatorID, in.Title, in.Body, in.City, nullStr(in.ImgLink), in.StartAt, in.EndsAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a room with its reaction sets resolved.  It returns
// ErrRoomNotFound if no row matches.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := r.db.QueryRowContext(ctx, roomSelect+" WHERE r.id = ?", id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if err := r.loadReactions(ctx, map[uint64]*model.Room{room.ID: room}); err != nil {
		return nil, err
	}
	return room, nil
}

// List returns all rooms newest-first with creator and reserver resolved.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomSelect+" ORDER BY r.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	byID := make(map[uint64]*model.Room)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
		byID[room.ID] = room
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadReactions(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update to a room owned by ownerID.  It returns
// ErrRoomNotFound when the room does not exist and ErrForbidden when it is
// owned by someone else.
func (r *RoomRepo) Update(ctx context.Context, id, ownerID uint64, in RoomUpdate) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET
		    title = COALESCE(?, title),
		    body = COALESCE(?, body),
		    city = COALESCE(?, city),
		    img_link = COALESCE(?, img_link),
		    start_at = COALESCE(?, start_at),
		    ends_at = COALESCE(?, ends_at),
		    updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		in.Title, in.Body, in.City, in.ImgLink, in.StartAt, in.EndsAt, id)
	return err
}

// Delete removes a room owned by ownerID together with its reactions.
// The two deletes run in a transaction to keep room_reactions free of
// orphaned rows.
func (r *RoomRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_reactions WHERE room_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Reserve claims a room for userID.  Owners cannot reserve their own room
// (ErrForbidden).  The claim is a conditional UPDATE on reserved = 0, so
// exactly one of any number of concurrent callers wins; the rest receive
// ErrAlreadyReserved.  A reservation is never undone.
func (r *RoomRepo) Reserve(ctx context.Context, id, userID uint64) error {
	creator, err := r.creatorOf(ctx, id)
	if err != nil {
		return err
	}
	if creator == userID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET reserved = 1, reserved_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND reserved = 0`,
		userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyReserved
	}
	return nil
}

// creatorOf returns the creator_id of a room or ErrRoomNotFound.
func (r *RoomRepo) creatorOf(ctx context.Context, id uint64) (uint64, error) {
	var creator uint64
	err := r.db.QueryRowContext(ctx, `SELECT creator_id FROM rooms WHERE id = ?`, id).Scan(&creator)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRoomNotFound
	}
	return creator, err
}

// requireOwner verifies that the room exists and belongs to ownerID.
func (r *RoomRepo) requireOwner(ctx context.Context, id, ownerID uint64) error {
	creator, err := r.creatorOf(ctx, id)
	if err != nil {
		return err
	}
	if creator != ownerID {
		return ErrForbidden
	}
	return nil
}

// loadReactions fills LikedBy/DislikedBy for every room in byID with a
// single query over room_reactions.
func (r *RoomRepo) loadReactions(ctx context.Context, byID map[uint64]*model.Room) error {
	if len(byID) == 0 {
		return nil
	}
	query := `SELECT room_id, user_id, kind FROM room_reactions WHERE room_id IN (`
	args := make([]any, 0, len(byID))
	for id := range byID {
		if len(args) > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ") ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var roomID, userID uint64
		var kind string
		if err := rows.Scan(&roomID, &userID, &kind); err != nil {
			return err
		}
		room := byID[roomID]
		if room == nil {
			continue
		}
		if kind == model.ReactionLike {
			room.LikedBy = append(room.LikedBy, userID)
		} else {
			room.DislikedBy = append(room.DislikedBy, userID)
		}
	}
	return rows.Err()
}

// scanRoom reads one row of roomSelect.  It works for both QueryRow and
// rows iteration via the scanner interface.
func scanRoom(s interface{ Scan(...any) error }) (*model.Room, error) {
	var (
		room    model.Room
		imgLink sql.NullString
		startAt sql.NullTime
		endsAt  sql.NullTime
		vID     sql.NullInt64
		vName   sql.NullString
		vEmail  sql.NullString
	)
	err := s.Scan(&room.ID, &room.Title, &room.Body, &room.City, &imgLink, &startAt, &endsAt,
		&room.Reserved, &room.CreatedAt, &room.UpdatedAt,
		&room.CreatedBy.ID, &room.CreatedBy.Username, &room.CreatedBy.Email,
		&vID, &vName, &vEmail,
		&room.Likes, &room.Dislikes)
	if err != nil {
		return nil, err
	}
	room.ImgLink = imgLink.String
	if startAt.Valid {
		t := startAt.Time
		room.StartAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time
		room.EndsAt = &t
	}
	if vID.Valid {
		room.ReservedBy = &model.UserRef{ID: uint64(vID.Int64), Username: vName.String, Email: vEmail.String}
	}
	room.LikedBy = []uint64{}
	room.DislikedBy = []uint64{}
	return &room, nil
}

// nullStr converts "" to NULL for optional text columns.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
