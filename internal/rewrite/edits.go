package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Edit is a byte-range replacement of source[Start:End].
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// Range is a half-open byte range.
type Range struct {
	Start int
	End   int
}

func (r Range) overlaps(start, end int) bool { return start < r.End && r.Start < end }

// Apply applies non-overlapping edits to source. It returns the new text and,
// for every edit in source order, the range its replacement occupies in the
// result.
func Apply(source string, edits []Edit) (string, []Range, error) {
	if len(edits) == 0 {
		return source, nil, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return "", nil, fmt.Errorf("invalid edit[%d]: range %d..%d out of bounds", i, e.Start, e.End)
		}
		if i > 0 && e.Start < sorted[i-1].End {
			return "", nil, errors.New("invalid edits: overlapping ranges")
		}
	}

	var b strings.Builder
	b.Grow(len(source))
	ranges := make([]Range, 0, len(sorted))
	cursor := 0
	for _, e := range sorted {
		b.WriteString(source[cursor:e.Start])
		start := b.Len()
		b.WriteString(e.Replacement)
		ranges = append(ranges, Range{Start: start, End: b.Len()})
		cursor = e.End
	}
	b.WriteString(source[cursor:])

	return b.String(), ranges, nil
}
