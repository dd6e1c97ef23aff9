package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackLabsSplitsByCapacity(t *testing.T) {
	rolls := []string{"A3", "A1", "A2", "A5", "A4"}
	labs := []string{"CC1", "CC2", "CC3"}

	groups, err := PackLabs(rolls, labs, "CC1", 2)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "CC1", groups[0].Lab)
	// Each batch is sorted within its lab.
	assert.Equal(t, []string{"A1", "A3"}, groups[0].Rolls)
	assert.Equal(t, []string{"A2", "A5"}, groups[1].Rolls)
	assert.Equal(t, []string{"A4"}, groups[2].Rolls)
}

func TestPackLabsStartsAtRequestedLab(t *testing.T) {
	groups, err := PackLabs([]string{"A1"}, []string{"CC1", "CC2"}, "CC2", 60)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "CC2", groups[0].Lab)
}

func TestPackLabsRefusesWhenShort(t *testing.T) {
	rolls := make([]string, 5)
	for i := range rolls {
		rolls[i] = "A1"
	}
	_, err := PackLabs(rolls, []string{"CC1", "CC2"}, "CC2", 2)
	assert.ErrorIs(t, err, ErrNotEnoughLabs)
}

func TestPackLabsUnknownStart(t *testing.T) {
	_, err := PackLabs([]string{"A1"}, []string{"CC1"}, "CC9", 60)
	assert.ErrorIs(t, err, ErrStartLabNotFound)
}

func TestPackLabsZeroCapacityUsesDefault(t *testing.T) {
	rolls := make([]string, DefaultLabCapacity+1)
	for i := range rolls {
		rolls[i] = "A1"
	}
	groups, err := PackLabs(rolls, []string{"CC1", "CC2"}, "CC1", 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Rolls, DefaultLabCapacity)
	assert.Len(t, groups[1].Rolls, 1)
}
