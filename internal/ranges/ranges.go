// Package ranges implements the line-range algebra behind partial file
// selections: 1-based inclusive intervals kept sorted, disjoint, and
// non-adjacent after every mutation.
package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Range is a 1-based inclusive line interval.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Merge normalizes rs: sorted by start, overlapping or immediately adjacent
// intervals folded together. {1-3} and {4-6} merge to {1-6}.
func Merge(rs []Range) []Range {
	if len(rs) == 0 {
		return nil
	}
	sorted := make([]Range, len(rs))
	copy(sorted, rs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]Range, 0, len(sorted))
	for _, r := range sorted {
		if len(out) > 0 && r.Start <= out[len(out)-1].End+1 {
			if r.End > out[len(out)-1].End {
				out[len(out)-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// Subtract removes the interval s from r, yielding zero, one, or two pieces.
func Subtract(r, s Range) []Range {
	if s.End < r.Start || s.Start > r.End {
		return []Range{r}
	}
	if s.Start <= r.Start && s.End >= r.End {
		return nil
	}
	if s.Start > r.Start && s.End < r.End {
		return []Range{{r.Start, s.Start - 1}, {s.End + 1, r.End}}
	}
	if s.Start <= r.Start {
		return []Range{{s.End + 1, r.End}}
	}
	return []Range{{r.Start, s.Start - 1}}
}

// SubtractAll removes every interval in sel from the set existing,
// returning the normalized remainder.
func SubtractAll(existing, sel []Range) []Range {
	out := existing
	for _, s := range sel {
		next := make([]Range, 0, len(out))
		for _, r := range out {
			next = append(next, Subtract(r, s)...)
		}
		out = next
	}
	return Merge(out)
}

// Clamp fits rs to a file that now has maxLine lines: ranges starting past
// the end are dropped, ranges ending past it are truncated.
func Clamp(rs []Range, maxLine int) []Range {
	out := make([]Range, 0, len(rs))
	for _, r := range rs {
		if r.Start > maxLine {
			continue
		}
		if r.End > maxLine {
			r.End = maxLine
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Format renders rs for report headers, e.g. "1-3, 5-7".
func Format(rs []Range) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return strings.Join(parts, ", ")
}

// Parse reads a comma-separated range list like "1-3,5-7" or "12".
func Parse(s string) ([]Range, error) {
	var out []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, found := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", part, err)
		}
		b := a
		if found {
			b, err = strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", part, err)
			}
		}
		if a < 1 || b < a {
			return nil, fmt.Errorf("invalid range %q: lines are 1-based and start must not exceed end", part)
		}
		out = append(out, Range{Start: a, End: b})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no ranges in %q", s)
	}
	return out, nil
}
