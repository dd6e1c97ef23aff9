package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examcell/hall-allocation/internal/model"
)

// ErrRoomNotFound is returned when a room lookup yields no rows.
var ErrRoomNotFound = errors.New("room not found")

// ErrRoomExists is returned when creating a room whose number is
// already taken.
var ErrRoomExists = errors.New("room already exists")

// RoomRepo provides access to the room catalog: rooms plus their
// ordered column capacities.  The catalog's standard order is floor
// then room number; the seat packer relies on it.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// Create inserts a room together with its columns in one transaction.
// On success the room's ID is populated.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (room_no, floor) VALUES (?, ?)`, room.RoomNo, room.Floor)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoomExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)

	for _, col := range room.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_columns (room_id, col_no, `+"`rows`"+`) VALUES (?, ?, ?)`,
			room.ID, col.ColNo, col.Rows); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByNo retrieves one room by its room number, columns included.
func (r *RoomRepo) GetByNo(ctx context.Context, roomNo string) (*model.Room, error) {
	var room model.Room
	err := r.db.QueryRowContext(ctx,
		`SELECT id, room_no, floor, created_at FROM rooms WHERE room_no = ?`, roomNo).
		Scan(&room.ID, &room.RoomNo, &room.Floor, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	cols, err := r.columnsFor(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	room.Columns = cols
	return &room, nil
}

// GetAll retrieves every room in catalog order (floor, then room
// number), with columns ordered by column number.
func (r *RoomRepo) GetAll(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_no, floor, created_at FROM rooms ORDER BY floor, room_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.RoomNo, &room.Floor, &room.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		cols, err := r.columnsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Columns = cols
	}
	return result, nil
}

// Update replaces a room's identity and layout.  Columns are
// regenerated wholesale; partial column edits are not supported.
func (r *RoomRepo) Update(ctx context.Context, id uint64, room *model.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE rooms SET room_no = ?, floor = ? WHERE id = ?`, room.RoomNo, room.Floor, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrRoomExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for missing rows and no-op updates;
		// confirm the room exists before reporting not found.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, id).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_columns WHERE room_id = ?`, id); err != nil {
		return err
	}
	for _, col := range room.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_columns (room_id, col_no, `+"`rows`"+`) VALUES (?, ?, ?)`,
			id, col.ColNo, col.Rows); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a room and its columns.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	// room_columns rows go with the room via ON DELETE CASCADE.
	return nil
}

func (r *RoomRepo) columnsFor(ctx context.Context, roomID uint64) ([]model.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT col_no, `+"`rows`"+` FROM room_columns WHERE room_id = ? ORDER BY col_no`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []model.Column
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ColNo, &c.Rows); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
