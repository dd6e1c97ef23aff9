package model

import "time"

// Column describes one vertical column of benches inside a room.
// Columns are numbered from 1 and ordered left to right; Rows is the
// number of benches in the column and must be greater than zero.
//
// Fields:
//  ColNo – 1-based column number, unique within its room.
//  Rows  – number of benches in this column.
type Column struct {
	ColNo int `json:"col_no"` // room_columns.col_no
	Rows  int `json:"rows"`   // room_columns.rows
}

// Room represents a physical exam hall.  Room numbers are globally
// unique; rooms are listed in a fixed floor-then-room-number order and
// the seat packer consumes them in that order.
//
// Fields:
//  ID        – primary key identifier.
//  RoomNo    – globally unique room number (string, e.g. "A201").
//  Floor     – floor label used for catalog ordering.
//  Columns   – ordered per-column bench counts.
//  CreatedAt – creation timestamp.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	RoomNo    string    `json:"room_no"`    // rooms.room_no
	Floor     string    `json:"floor"`      // rooms.floor
	Columns   []Column  `json:"columns"`    // rooms -> room_columns, ordered by col_no
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
}

// TotalBenches returns the seat capacity of the room, the sum of the
// bench counts of all columns.
func (r Room) TotalBenches() int {
	total := 0
	for _, c := range r.Columns {
		total += c.Rows
	}
	return total
}
