package allocator

import "errors"

// DefaultLabCapacity is the number of machines assumed per lab pair.
const DefaultLabCapacity = 60

// Errors from lab packing.
var (
	ErrStartLabNotFound = errors.New("starting lab not found")
	ErrNotEnoughLabs    = errors.New("not enough labs for all examinees")
)

// LabGroup is the per-lab result of PackLabs: a lab identifier and
// the sorted rolls assigned to it.
type LabGroup struct {
	Lab   string
	Rolls []string
}

// PackLabs splits rolls into consecutive capacity-sized batches over
// the ordered lab list, starting at startLab.  Labs before the start
// are never used.  Unlike room packing there is no leftover bucket:
// when the remaining labs cannot hold everyone the whole request is
// refused, matching how lab allocation is operated.
func PackLabs(rolls []string, labs []string, startLab string, capacity int) ([]LabGroup, error) {
	if capacity <= 0 {
		capacity = DefaultLabCapacity
	}
	start := -1
	for i, l := range labs {
		if l == startLab {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, ErrStartLabNotFound
	}
	usable := labs[start:]

	needed := (len(rolls) + capacity - 1) / capacity
	if needed > len(usable) {
		return nil, ErrNotEnoughLabs
	}

	var groups []LabGroup
	for i := 0; i < len(rolls); i += capacity {
		end := i + capacity
		if end > len(rolls) {
			end = len(rolls)
		}
		batch := make([]string, end-i)
		copy(batch, rolls[i:end])
		SortRolls(batch)
		groups = append(groups, LabGroup{Lab: usable[i/capacity], Rolls: batch})
	}
	return groups, nil
}
