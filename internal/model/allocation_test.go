package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExamDate(t *testing.T) {
	iso, err := ParseExamDate("2026-09-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), iso)

	dayFirst, err := ParseExamDate("10-09-2026")
	require.NoError(t, err)
	assert.True(t, iso.Equal(dayFirst))

	_, err = ParseExamDate("next tuesday")
	assert.Error(t, err)
}

func TestExpiryFor(t *testing.T) {
	exp := ExpiryFor("2026-09-10")
	assert.Equal(t, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), exp)

	// A malformed date anchors the expiry at now instead of never.
	before := time.Now().UTC()
	exp = ExpiryFor("garbage")
	assert.WithinDuration(t, before.Add(ExpiryDays*24*time.Hour), exp, time.Minute)
}

func TestAllocationRefs(t *testing.T) {
	assert.Equal(t, "hall-42", Allocation{ID: 42}.Ref())
	assert.Equal(t, "lab-7", LabAllocation{ID: 7}.Ref())
}

func TestRoomTotalBenches(t *testing.T) {
	r := Room{Columns: []Column{{ColNo: 1, Rows: 3}, {ColNo: 2, Rows: 2}}}
	assert.Equal(t, 5, r.TotalBenches())
	assert.Zero(t, Room{}.TotalBenches())
}
