package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRollRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{
			name:  "padded sequence keeps width",
			start: "P21AI001",
			end:   "P21AI004",
			want:  []string{"P21AI001", "P21AI002", "P21AI003", "P21AI004"},
		},
		{
			name:  "prefix with embedded digits survives",
			start: "23AD098",
			end:   "23AD101",
			want:  []string{"23AD098", "23AD099", "23AD100", "23AD101"},
		},
		{
			name:  "lower case input is normalized",
			start: "p21ai001",
			end:   "p21ai002",
			want:  []string{"P21AI001", "P21AI002"},
		},
		{
			name:  "single roll",
			start: "P21AI007",
			end:   "P21AI007",
			want:  []string{"P21AI007"},
		},
		{
			name:  "inverted range yields nothing",
			start: "P21AI005",
			end:   "P21AI003",
			want:  nil,
		},
		{
			name:  "no trailing digits yields nothing",
			start: "NODIGITS",
			end:   "P21AI003",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateRollRange(tt.start, tt.end))
		})
	}
}

func TestRollInRange(t *testing.T) {
	assert.True(t, RollInRange("P21AI002", "P21AI001", "P21AI010"))
	assert.True(t, RollInRange("p21ai001", "P21AI001", "P21AI010"))
	assert.False(t, RollInRange("P21AI011", "P21AI001", "P21AI010"))
	assert.False(t, RollInRange("", "P21AI001", "P21AI010"))
	assert.False(t, RollInRange("P21AI002", "", ""))
}

func TestRollInRangeString(t *testing.T) {
	assert.True(t, RollInRangeString("P21AI005", "P21AI001 - P21AI010"))
	assert.False(t, RollInRangeString("P21AI011", "P21AI001 - P21AI010"))
	assert.False(t, RollInRangeString("P21AI005", "not a range"))
	assert.False(t, RollInRangeString("P21AI005", ""))
}
