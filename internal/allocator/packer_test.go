package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcell/hall-allocation/internal/model"
)

func room(no string, cols ...model.Column) model.Room {
	return model.Room{RoomNo: no, Columns: cols}
}

func rollsOf(seats []model.SeatAssignment) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.RollNo
	}
	return out
}

func TestPackFillsColumnMajor(t *testing.T) {
	rooms := []model.Room{
		room("R1", model.Column{ColNo: 1, Rows: 3}, model.Column{ColNo: 2, Rows: 2}),
		room("R2", model.Column{ColNo: 1, Rows: 2}),
	}
	rolls := []string{"A1", "A2", "A3", "A4", "A5", "A6"}

	placements, leftover, err := Pack(rolls, rooms, "R1")
	require.NoError(t, err)
	require.Len(t, placements, 2)
	assert.Empty(t, leftover)

	first := placements[0]
	assert.Equal(t, "R1", first.Room.RoomNo)
	require.Len(t, first.Seats, 5)

	// Column 1 fills rows 1..3, then column 2 rows 1..2.
	expected := []struct {
		roll     string
		row, col int
		bench    int
	}{
		{"A1", 1, 1, 1},
		{"A2", 2, 1, 2},
		{"A3", 3, 1, 3},
		{"A4", 1, 2, 4},
		{"A5", 2, 2, 5},
	}
	for i, want := range expected {
		assert.Equal(t, want.roll, first.Seats[i].RollNo)
		assert.Equal(t, want.row, first.Seats[i].Row)
		assert.Equal(t, want.col, first.Seats[i].Col)
		assert.Equal(t, want.bench, first.Seats[i].BenchNo)
	}

	second := placements[1]
	assert.Equal(t, "R2", second.Room.RoomNo)
	require.Len(t, second.Seats, 1)
	// Bench counter restarts per room.
	assert.Equal(t, 1, second.Seats[0].BenchNo)
	assert.Equal(t, "A6", second.Seats[0].RollNo)
}

func TestPackRespectsStartRoom(t *testing.T) {
	rooms := []model.Room{
		room("R1", model.Column{ColNo: 1, Rows: 10}),
		room("R2", model.Column{ColNo: 1, Rows: 2}),
	}

	placements, leftover, err := Pack([]string{"A1", "A2", "A3"}, rooms, "R2")
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, "R2", placements[0].Room.RoomNo)
	// R1 sits before the start room and must never absorb overflow.
	assert.Equal(t, []string{"A3"}, leftover)
}

func TestPackStartRoomNotFound(t *testing.T) {
	rooms := []model.Room{room("R1", model.Column{ColNo: 1, Rows: 5})}
	_, _, err := Pack([]string{"A1"}, rooms, "NOPE")
	assert.ErrorIs(t, err, ErrStartRoomNotFound)
}

func TestPackSkipsRoomsWithoutColumns(t *testing.T) {
	rooms := []model.Room{
		room("R1", model.Column{ColNo: 1, Rows: 1}),
		room("EMPTY"),
		room("R3", model.Column{ColNo: 1, Rows: 1}),
	}
	placements, leftover, err := Pack([]string{"A1", "A2"}, rooms, "R1")
	require.NoError(t, err)
	require.Len(t, placements, 2)
	assert.Equal(t, "R1", placements[0].Room.RoomNo)
	assert.Equal(t, "R3", placements[1].Room.RoomNo)
	assert.Empty(t, leftover)
}

func TestPackSortsPerRoomAndLeftover(t *testing.T) {
	rooms := []model.Room{room("R1", model.Column{ColNo: 1, Rows: 3})}
	rolls := []string{"p21ai10", "P21AI2", "P21AI1", "P21AI9", "P21AI4"}

	placements, leftover, err := Pack(rolls, rooms, "R1")
	require.NoError(t, err)
	require.Len(t, placements, 1)

	// Rolls are upper-cased and naturally sorted within the room.
	assert.Equal(t, []string{"P21AI1", "P21AI2", "P21AI10"}, rollsOf(placements[0].Seats))
	assert.Equal(t, []string{"P21AI4", "P21AI9"}, leftover)
}

func TestPackIsDeterministic(t *testing.T) {
	rooms := []model.Room{
		room("R1", model.Column{ColNo: 1, Rows: 2}, model.Column{ColNo: 2, Rows: 2}),
		room("R2", model.Column{ColNo: 1, Rows: 4}),
	}
	rolls := []string{"B3", "B1", "B7", "B2", "B5", "B4"}

	first, firstLeft, err := Pack(rolls, rooms, "R1")
	require.NoError(t, err)
	second, secondLeft, err := Pack(rolls, rooms, "R1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstLeft, secondLeft)
}

func TestInterleave(t *testing.T) {
	tests := []struct {
		name    string
		sources [][]string
		want    []string
	}{
		{
			name:    "equal lengths",
			sources: [][]string{{"A1", "A2"}, {"B1", "B2"}},
			want:    []string{"A1", "B1", "A2", "B2"},
		},
		{
			name:    "uneven lengths drain the longer tail",
			sources: [][]string{{"A1"}, {"B1", "B2", "B3"}},
			want:    []string{"A1", "B1", "B2", "B3"},
		},
		{
			name:    "single source unchanged",
			sources: [][]string{{"A1", "A2", "A3"}},
			want:    []string{"A1", "A2", "A3"},
		},
		{
			name:    "empty",
			sources: nil,
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interleave(tt.sources))
		})
	}
}

func TestSortRollsNaturalOrder(t *testing.T) {
	rolls := []string{"P21AI10", "P21AI9", "P21AI100", "P21AI1"}
	SortRolls(rolls)
	assert.Equal(t, []string{"P21AI1", "P21AI9", "P21AI10", "P21AI100"}, rolls)
}
