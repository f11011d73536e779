package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBorrowJSONShape(t *testing.T) {
	borrowed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		returnedAt   *time.Time
		wantReturned bool
	}{
		{"open", nil, false},
		{"returned", func() *time.Time { r := borrowed.Add(time.Hour); return &r }(), true},
	}

	for _, tt := range tests {
		b := Borrow{ID: 7, BookID: 1, MemberID: 2, BorrowedAt: borrowed, ReturnedAt: tt.returnedAt}
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tt.name, err)
		}

		var got map[string]any
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("%s: unmarshal: %v", tt.name, err)
		}

		for _, key := range []string{"id", "book_id", "member_id", "borrowed_at", "returned_at", "is_returned"} {
			if _, ok := got[key]; !ok {
				t.Errorf("%s: missing key %q in %s", tt.name, key, data)
			}
		}
		if got["is_returned"] != tt.wantReturned {
			t.Errorf("%s: is_returned = %v, want %v", tt.name, got["is_returned"], tt.wantReturned)
		}
		if tt.returnedAt == nil && got["returned_at"] != nil {
			t.Errorf("%s: returned_at = %v, want null", tt.name, got["returned_at"])
		}
		if got["borrowed_at"] != "2026-03-01T10:00:00Z" {
			t.Errorf("%s: borrowed_at = %v, want ISO-8601", tt.name, got["borrowed_at"])
		}
	}
}
