package pagination

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	orig := Cursor{SortKey: time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.UTC), ID: "msg_42"}
	got, err := Decode(orig.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.SortKey.Equal(orig.SortKey) || got.ID != orig.ID {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, orig)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "not-base64!!", "bm9waXBl", "MTIzNDU2"} {
		if _, err := Decode(token); err == nil {
			t.Errorf("Decode(%q) accepted a malformed cursor", token)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{200, 200},
		{1000, MaxLimit},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTrimPage(t *testing.T) {
	now := time.Now().UTC()
	rows := []Cursor{
		{SortKey: now, ID: "c"},
		{SortKey: now.Add(-time.Minute), ID: "b"},
		{SortKey: now.Add(-2 * time.Minute), ID: "a"},
	}
	self := func(c Cursor) Cursor { return c }

	items, next := TrimPage(rows, 2, self)
	if len(items) != 2 || next == nil {
		t.Fatalf("expected 2 items and a next cursor, got %d items next=%v", len(items), next)
	}
	if next.ID != "b" {
		t.Fatalf("next cursor should point at last retained row, got %q", next.ID)
	}

	items, next = TrimPage(rows, 3, self)
	if len(items) != 3 || next != nil {
		t.Fatalf("exact-fit page must not produce a cursor, got %d items next=%v", len(items), next)
	}
}
