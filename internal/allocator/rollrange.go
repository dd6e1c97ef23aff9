package allocator

import (
	"regexp"
	"strconv"
	"strings"
)

var trailNumRe = regexp.MustCompile(`\d+$`)

// GenerateRollRange expands a start/end roll pair into the full padded
// sequence, e.g. ("P21AI001", "P21AI004") -> P21AI001..P21AI004.  The
// prefix is whatever precedes the trailing digit run, and the numeric
// width of the start roll is preserved.  Rolls without trailing digits
// yield an empty slice.
func GenerateRollRange(start, end string) []string {
	start = strings.ToUpper(strings.TrimSpace(start))
	end = strings.ToUpper(strings.TrimSpace(end))

	startDigits := trailNumRe.FindString(start)
	endDigits := trailNumRe.FindString(end)
	if startDigits == "" || endDigits == "" {
		return nil
	}
	prefix := start[:len(start)-len(startDigits)]
	startNum, _ := strconv.Atoi(startDigits)
	endNum, _ := strconv.Atoi(endDigits)

	var rolls []string
	for i := startNum; i <= endNum; i++ {
		n := strconv.Itoa(i)
		for len(n) < len(startDigits) {
			n = "0" + n
		}
		rolls = append(rolls, prefix+n)
	}
	return rolls
}

// RollInRange reports whether roll falls between start and end
// inclusive, by plain string comparison on the upper-cased values.
func RollInRange(roll, start, end string) bool {
	if roll == "" || start == "" || end == "" {
		return false
	}
	r := strings.ToUpper(roll)
	return r >= strings.ToUpper(start) && r <= strings.ToUpper(end)
}

// RollInRangeString checks roll against a "START - END" range string.
func RollInRangeString(roll, rangeStr string) bool {
	if roll == "" || rangeStr == "" {
		return false
	}
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return false
	}
	return RollInRange(strings.ToUpper(roll), strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}
