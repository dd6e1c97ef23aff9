// Package allocator implements the greedy seat packer: it distributes
// an ordered sequence of roll numbers across a run of rooms, filling
// each room column by column.  Packing is deterministic for fixed
// inputs; it makes no attempt to minimize the number of rooms used.
package allocator

import (
	"errors"
	"sort"
	"strings"

	"github.com/examcell/hall-allocation/internal/model"
)

// ErrStartRoomNotFound is returned when the requested starting room is
// not part of the catalog sequence.
var ErrStartRoomNotFound = errors.New("starting room not found")

// RoomPlacement groups the seat assignments produced for one room.
type RoomPlacement struct {
	Room  model.Room
	Seats []model.SeatAssignment
}

// Pack distributes rolls over the ordered room list, starting at the
// room numbered startRoomNo.  Rooms before the starting room are never
// used; rooms without columns are skipped.  Each room receives the
// next capacity-many rolls, sorted and seated column-major (column 1
// rows 1..N, then column 2, ...) with a bench counter restarting at 1
// per room.  Rolls that do not fit anywhere come back as leftover.
func Pack(rolls []string, rooms []model.Room, startRoomNo string) ([]RoomPlacement, []string, error) {
	start := -1
	for i, r := range rooms {
		if r.RoomNo == startRoomNo {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, nil, ErrStartRoomNotFound
	}
	usable := rooms[start:]

	queue := make([]string, len(rolls))
	for i, r := range rolls {
		queue[i] = strings.ToUpper(strings.TrimSpace(r))
	}

	var placements []RoomPlacement
	idx := 0
	for _, room := range usable {
		if idx >= len(queue) {
			break
		}
		capacity := room.TotalBenches()
		if capacity == 0 {
			continue
		}
		end := idx + capacity
		if end > len(queue) {
			end = len(queue)
		}
		forRoom := make([]string, end-idx)
		copy(forRoom, queue[idx:end])
		SortRolls(forRoom)
		idx = end

		seats := make([]model.SeatAssignment, 0, len(forRoom))
		pos := 0
		for _, col := range room.Columns {
			for row := 1; row <= col.Rows; row++ {
				if pos >= len(forRoom) {
					break
				}
				seats = append(seats, model.SeatAssignment{
					RollNo:  forRoom[pos],
					Row:     row,
					Col:     col.ColNo,
					BenchNo: pos + 1,
				})
				pos++
			}
		}
		placements = append(placements, RoomPlacement{Room: room, Seats: seats})
	}

	var leftover []string
	if idx < len(queue) {
		leftover = make([]string, len(queue)-idx)
		copy(leftover, queue[idx:])
		SortRolls(leftover)
	}
	return placements, leftover, nil
}

// Interleave merges multiple source roll lists round-robin, so that no
// single source monopolizes the early benches.  The result depends
// only on source order and list lengths; there is no random draw.
func Interleave(sources [][]string) []string {
	total := 0
	longest := 0
	for _, s := range sources {
		total += len(s)
		if len(s) > longest {
			longest = len(s)
		}
	}
	merged := make([]string, 0, total)
	for i := 0; i < longest; i++ {
		for _, s := range sources {
			if i < len(s) {
				merged = append(merged, s[i])
			}
		}
	}
	return merged
}

// SortRolls orders roll numbers with a numeric-aware comparison, so
// "P21AI9" sorts before "P21AI10".
func SortRolls(rolls []string) {
	sort.SliceStable(rolls, func(i, j int) bool { return naturalLess(rolls[i], rolls[j]) })
}

// naturalLess compares two strings segment by segment, treating runs
// of digits as numbers.
func naturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := splitNum(a)
			nb, rb := splitNum(b)
			if na != nb {
				// Compare digit runs by length first, then lexically:
				// equal-length runs compare the same as their values.
				if len(na) != len(nb) {
					// Strip leading zeros before length comparison.
					ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
					if len(ta) != len(tb) {
						return len(ta) < len(tb)
					}
					if ta != tb {
						return ta < tb
					}
				} else if na != nb {
					return na < nb
				}
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// splitNum peels the leading digit run off s.
func splitNum(s string) (num, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
