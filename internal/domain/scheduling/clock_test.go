package scheduling

import (
	"encoding/json"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:00", NewClock(9, 0), false},
		{"00:00", 0, false},
		{"23:59", NewClock(23, 59), false},
		{"13:30", NewClock(13, 30), false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClock_String(t *testing.T) {
	if got := NewClock(9, 5).String(); got != "09:05" {
		t.Errorf("expected 09:05, got %s", got)
	}
	if got := NewClock(17, 30).String(); got != "17:30" {
		t.Errorf("expected 17:30, got %s", got)
	}
}

func TestClock_JSONRoundTrip(t *testing.T) {
	c := NewClock(13, 45)
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"13:45"` {
		t.Errorf("expected \"13:45\", got %s", data)
	}
	var back Clock
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != c {
		t.Errorf("round trip changed value: %d != %d", back, c)
	}
}

func TestClock_UnmarshalRejectsBadInput(t *testing.T) {
	var c Clock
	if err := json.Unmarshal([]byte(`"25:00"`), &c); err == nil {
		t.Error("expected error for out-of-range hour")
	}
	if err := json.Unmarshal([]byte(`930`), &c); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestClock_Within(t *testing.T) {
	lo, hi := NewClock(9, 0), NewClock(17, 0)
	tests := []struct {
		point Clock
		want  bool
	}{
		{NewClock(9, 0), true},
		{NewClock(17, 0), true},
		{NewClock(12, 0), true},
		{NewClock(8, 59), false},
		{NewClock(17, 1), false},
	}
	for _, tt := range tests {
		if got := tt.point.Within(lo, hi); got != tt.want {
			t.Errorf("Within(%s) = %v, want %v", tt.point, got, tt.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     Clock
		want                           bool
	}{
		{"disjoint", NewClock(9, 0), NewClock(10, 0), NewClock(11, 0), NewClock(12, 0), false},
		{"touching ends", NewClock(9, 0), NewClock(10, 0), NewClock(10, 0), NewClock(11, 0), false},
		{"partial overlap", NewClock(9, 0), NewClock(10, 30), NewClock(10, 0), NewClock(11, 0), true},
		{"contained", NewClock(9, 0), NewClock(12, 0), NewClock(10, 0), NewClock(11, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Symmetric in its two intervals.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Errorf("Overlaps() not symmetric for %s", tt.name)
			}
		})
	}
}
