package slot

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func rng(t *testing.T, start, end string) Range {
	t.Helper()
	r, err := NewRange(start, end)
	if err != nil {
		t.Fatalf("NewRange(%q, %q) error = %v", start, end, err)
	}
	return r
}

func TestOverlaps(t *testing.T) {
	strict := Policy{TouchingConflicts: false}

	tests := []struct {
		name      string
		existing  [2]string
		candidate [2]string
		policy    Policy
		want      bool
	}{
		// Back-to-back bookings conflict under the default policy. Kept as a
		// regression pin: flip the policy to allow them.
		{"touching after, default", [2]string{"09:00", "10:00"}, [2]string{"10:00", "11:00"}, DefaultPolicy, true},
		{"touching before, default", [2]string{"10:00", "11:00"}, [2]string{"09:00", "10:00"}, DefaultPolicy, true},
		{"touching after, strict", [2]string{"09:00", "10:00"}, [2]string{"10:00", "11:00"}, strict, false},
		{"touching before, strict", [2]string{"10:00", "11:00"}, [2]string{"09:00", "10:00"}, strict, false},
		{"partial overlap", [2]string{"09:00", "10:30"}, [2]string{"10:00", "11:00"}, strict, true},
		{"contained", [2]string{"09:00", "12:00"}, [2]string{"10:00", "11:00"}, strict, true},
		{"containing", [2]string{"10:00", "11:00"}, [2]string{"09:00", "12:00"}, strict, true},
		{"identical", [2]string{"10:00", "11:00"}, [2]string{"10:00", "11:00"}, strict, true},
		{"disjoint", [2]string{"08:00", "09:00"}, [2]string{"10:00", "11:00"}, DefaultPolicy, false},
		{"disjoint strict", [2]string{"12:00", "13:00"}, [2]string{"10:00", "11:00"}, strict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := rng(t, tt.existing[0], tt.existing[1])
			c := rng(t, tt.candidate[0], tt.candidate[1])
			if got := Overlaps(e, c, tt.policy); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", e, c, got, tt.want)
			}
			// The predicate is symmetric.
			if got := Overlaps(c, e, tt.policy); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", c, e, got, tt.want)
			}
		})
	}
}

func TestFirstConflict(t *testing.T) {
	existing := []Range{rng(t, "08:00", "09:00"), rng(t, "11:00", "12:00")}

	if got := FirstConflict(existing, rng(t, "09:30", "10:30"), DefaultPolicy); got != -1 {
		t.Errorf("FirstConflict() = %d, want -1", got)
	}
	if got := FirstConflict(existing, rng(t, "10:30", "11:30"), DefaultPolicy); got != 1 {
		t.Errorf("FirstConflict() = %d, want 1", got)
	}
}

func TestNewRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"valid", "09:00", "10:00", nil},
		{"seconds accepted", "09:00:00", "10:00:00", nil},
		{"equal", "09:00", "09:00", ErrEmptyRange},
		{"reversed", "10:00", "09:00", ErrEmptyRange},
		{"garbage start", "nine", "10:00", ErrInvalidClock},
		{"out of range", "25:00", "26:00", ErrInvalidClock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.start, tt.end)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRange() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	windows := []Range{rng(t, "13:00", "17:00"), rng(t, "09:00", "12:00")}
	booked := []Range{rng(t, "10:00", "11:00"), rng(t, "13:00", "14:00"), rng(t, "16:30", "18:00")}

	got := Subtract(windows, booked)
	want := []Range{
		rng(t, "09:00", "10:00"),
		rng(t, "11:00", "12:00"),
		rng(t, "14:00", "16:30"),
	}

	if len(got) != len(want) {
		t.Fatalf("Subtract() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Subtract()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSubtract_FullyBooked(t *testing.T) {
	got := Subtract([]Range{rng(t, "09:00", "10:00")}, []Range{rng(t, "08:00", "11:00")})
	if len(got) != 0 {
		t.Errorf("Subtract() = %v, want empty", got)
	}
}

func TestContains(t *testing.T) {
	w := rng(t, "09:00", "17:00")
	if !w.Contains(rng(t, "09:00", "10:00")) {
		t.Error("window should contain a range starting at its start")
	}
	if !w.Contains(rng(t, "16:00", "17:00")) {
		t.Error("window should contain a range ending at its end")
	}
	if w.Contains(rng(t, "16:30", "17:30")) {
		t.Error("window should not contain a range that spills past its end")
	}
}

func TestClockScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"text", "14:30:00", "14:30"},
		{"bytes", []byte("08:05:00"), "08:05"},
		{"time", time.Date(0, 1, 1, 7, 45, 0, 0, time.UTC), "07:45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Clock
			if err := c.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if c.String() != tt.want {
				t.Errorf("Scan() = %s, want %s", c, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	d := MustDate("2024-05-05")
	if d.Weekday() != 0 {
		t.Errorf("Weekday() = %d, want 0 (Sunday)", d.Weekday())
	}

	var scanned Date
	if err := scanned.Scan("2024-05-05T00:00:00Z"); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if scanned != d {
		t.Errorf("Scan() = %s, want %s", scanned, d)
	}

	if _, err := ParseDate("05/05/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate() error = %v, want ErrInvalidDate", err)
	}
}

func TestRangeJSON(t *testing.T) {
	var r Range
	if err := json.Unmarshal([]byte(`{"start_time":"09:00","end_time":"10:15"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Minutes() != 75 {
		t.Errorf("Minutes() = %d, want 75", r.Minutes())
	}
	b, _ := json.Marshal(r)
	if string(b) != `{"start_time":"09:00","end_time":"10:15"}` {
		t.Errorf("Marshal() = %s", b)
	}
}
