package ranges

import (
	"reflect"
	"testing"
)

func TestMergeAdjacentAndOverlapping(t *testing.T) {
	cases := []struct {
		name string
		in   []Range
		want []Range
	}{
		{"empty", nil, nil},
		{"single", []Range{{5, 9}}, []Range{{5, 9}}},
		{"adjacent", []Range{{1, 3}, {4, 6}}, []Range{{1, 6}}},
		{"overlap", []Range{{1, 5}, {3, 8}}, []Range{{1, 8}}},
		{"gap kept", []Range{{1, 3}, {5, 7}}, []Range{{1, 3}, {5, 7}}},
		{"unsorted", []Range{{10, 12}, {1, 2}, {3, 4}}, []Range{{1, 4}, {10, 12}}},
		{"contained", []Range{{1, 10}, {3, 5}}, []Range{{1, 10}}},
	}
	for _, tc := range cases {
		if got := Merge(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: Merge(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	inputs := [][]Range{
		{{1, 3}, {5, 7}, {4, 4}},
		{{2, 2}, {1, 1}, {9, 20}, {10, 11}},
		{{1, 100}},
		nil,
	}
	for _, in := range inputs {
		once := Merge(in)
		twice := Merge(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("Merge not idempotent for %v: %v != %v", in, once, twice)
		}
	}
}

func TestSubtract(t *testing.T) {
	cases := []struct {
		name string
		r, s Range
		want []Range
	}{
		{"no overlap left", Range{5, 9}, Range{1, 4}, []Range{{5, 9}}},
		{"no overlap right", Range{5, 9}, Range{10, 12}, []Range{{5, 9}}},
		{"covers", Range{5, 9}, Range{5, 9}, nil},
		{"covers wider", Range{5, 9}, Range{1, 20}, nil},
		{"inside", Range{1, 10}, Range{3, 5}, []Range{{1, 2}, {6, 10}}},
		{"left edge", Range{5, 9}, Range{3, 6}, []Range{{7, 9}}},
		{"right edge", Range{5, 9}, Range{8, 12}, []Range{{5, 7}}},
	}
	for _, tc := range cases {
		if got := Subtract(tc.r, tc.s); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: Subtract(%v, %v) = %v, want %v", tc.name, tc.r, tc.s, got, tc.want)
		}
	}
}

// Subtracting s and re-adding the overlap must reconstruct exactly r.
func TestSubtractCompleteness(t *testing.T) {
	cases := []struct{ r, s Range }{
		{Range{1, 10}, Range{3, 5}},
		{Range{5, 9}, Range{1, 6}},
		{Range{5, 9}, Range{8, 20}},
		{Range{5, 9}, Range{1, 3}},
		{Range{1, 10}, Range{1, 10}},
	}
	for _, tc := range cases {
		pieces := Subtract(tc.r, tc.s)
		// Intersection of s and r.
		lo, hi := tc.s.Start, tc.s.End
		if lo < tc.r.Start {
			lo = tc.r.Start
		}
		if hi > tc.r.End {
			hi = tc.r.End
		}
		if lo <= hi {
			pieces = append(pieces, Range{lo, hi})
		}
		if got := Merge(pieces); !reflect.DeepEqual(got, []Range{tc.r}) {
			t.Fatalf("Subtract(%v, %v) + overlap = %v, want [%v]", tc.r, tc.s, got, tc.r)
		}
	}
}

func TestSubtractAll(t *testing.T) {
	got := SubtractAll([]Range{{1, 10}}, []Range{{3, 5}})
	want := []Range{{1, 2}, {6, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SubtractAll = %v, want %v", got, want)
	}

	got = SubtractAll([]Range{{1, 10}, {20, 30}}, []Range{{5, 25}})
	want = []Range{{1, 4}, {26, 30}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SubtractAll = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	got := Clamp([]Range{{1, 3}, {5, 20}, {40, 50}}, 10)
	want := []Range{{1, 3}, {5, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Clamp = %v, want %v", got, want)
	}
	if got := Clamp([]Range{{40, 50}}, 10); got != nil {
		t.Fatalf("Clamp past EOF = %v, want nil", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format([]Range{{1, 3}, {5, 7}}); got != "1-3, 5-7" {
		t.Fatalf("Format = %q", got)
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("1-3, 5-7,12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Range{{1, 3}, {5, 7}, {12, 12}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %v, want %v", got, want)
	}
	for _, bad := range []string{"", "0-3", "5-2", "a-b"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
}
