package todo

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{"high", PriorityHigh, false},
		{" Medium ", PriorityMedium, false},
		{"LOW", PriorityLow, false},
		{"urgent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("ParsePriority(%q) error should wrap ErrInvalidPriority: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityHigh.Rank() < PriorityMedium.Rank() && PriorityMedium.Rank() < PriorityLow.Rank()) {
		t.Errorf("ranks out of order: high=%d medium=%d low=%d",
			PriorityHigh.Rank(), PriorityMedium.Rank(), PriorityLow.Rank())
	}
	if Priority("bogus").Rank() <= PriorityLow.Rank() {
		t.Error("unknown priority should rank after low")
	}
}

func TestPriorityUnmarshalRejectsUnknown(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":1,"priority":"urgent"}`), &task)
	if err == nil {
		t.Fatal("expected error for unknown priority")
	}
	if !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("error should wrap ErrInvalidPriority: %v", err)
	}
}

func TestDateRoundTrip(t *testing.T) {
	due := NewDate(2026, time.October, 20)
	task := Task{ID: 1, Description: "x", Priority: PriorityLow, DueDate: &due}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"due_date":"2026-10-20"`) {
		t.Errorf("due_date not encoded as day: %s", data)
	}

	var back Task
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.DueDate == nil || back.DueDate.Compare(due) != 0 {
		t.Errorf("DueDate: got %v, want %v", back.DueDate, due)
	}
}

func TestNullDueDate(t *testing.T) {
	data, err := json.Marshal(Task{ID: 1, Description: "x", Priority: PriorityLow})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"due_date":null`) {
		t.Errorf("missing due date should encode as null: %s", data)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(2026-02-30): got %v, want ErrInvalidDate", err)
	}
	if _, err := ParseDate("0001-01-01"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(0001-01-01): got %v, want ErrInvalidDate", err)
	}
	if _, err := ParseDate("20/10/2026"); err == nil {
		t.Error("ParseDate should reject non ISO dates")
	}
	d, err := ParseDate(" 2026-10-20 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-10-20" {
		t.Errorf("String: got %q", d.String())
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC)
	yesterday := NewDate(2026, time.October, 17)
	today := NewDate(2026, time.October, 18)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past due pending", Task{DueDate: &yesterday}, true},
		{"due today", Task{DueDate: &today}, false},
		{"past due completed", Task{DueDate: &yesterday, Completed: true}, false},
		{"no due date", Task{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Overdue(now); got != tt.want {
				t.Errorf("Overdue: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	due := NewDate(2026, time.October, 20)
	done := time.Now().UTC()
	orig := Task{ID: 1, DueDate: &due, CompletedAt: &done}

	c := orig.Clone()
	*c.DueDate = NewDate(2027, time.January, 1)
	*c.CompletedAt = time.Time{}

	if orig.DueDate.String() != "2026-10-20" {
		t.Errorf("clone shares DueDate with original: %s", orig.DueDate)
	}
	if orig.CompletedAt.IsZero() {
		t.Error("clone shares CompletedAt with original")
	}
}
