package domain

import (
	"testing"
	"time"
)

var wib = time.FixedZone("WIB", 7*60*60)

func testPolicy() SlotPolicy {
	return SlotPolicy{Location: wib, SlotHour: 9, SuccessorDelayDays: 3}
}

func TestNextBusinessSlot(t *testing.T) {
	p := testPolicy()
	cases := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{"thursday before slot", time.Date(2026, 10, 15, 8, 0, 0, 0, wib), time.Date(2026, 10, 15, 9, 0, 0, 0, wib)},
		{"thursday at slot", time.Date(2026, 10, 15, 9, 0, 0, 0, wib), time.Date(2026, 10, 16, 9, 0, 0, 0, wib)},
		{"friday afternoon", time.Date(2026, 10, 16, 15, 0, 0, 0, wib), time.Date(2026, 10, 19, 9, 0, 0, 0, wib)},
		{"saturday", time.Date(2026, 10, 17, 7, 0, 0, 0, wib), time.Date(2026, 10, 19, 9, 0, 0, 0, wib)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.NextBusinessSlot(tc.after)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got.In(wib), tc.want)
			}
			if got.Location() != time.UTC {
				t.Fatal("slots are returned in UTC")
			}
		})
	}
}

func TestSuccessorAt(t *testing.T) {
	p := testPolicy()

	// thursday + 3 days is sunday, moved to monday
	got := p.SuccessorAt(time.Date(2026, 10, 15, 14, 0, 0, 0, wib))
	if want := time.Date(2026, 10, 19, 9, 0, 0, 0, wib); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got.In(wib), want)
	}

	got = p.SuccessorAt(time.Date(2026, 10, 20, 10, 0, 0, 0, wib))
	if want := time.Date(2026, 10, 23, 9, 0, 0, 0, wib); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got.In(wib), want)
	}

	p.SuccessorDelayDays = 0
	completed := time.Date(2026, 10, 15, 14, 0, 0, 0, wib)
	if got := p.SuccessorAt(completed); !got.After(completed) {
		t.Fatalf("successor must be after completion, got %s", got)
	}
}

func TestDayBoundsUseLocalCalendarDay(t *testing.T) {
	p := testPolicy()
	// 23:30 UTC on the 15th is already the 16th in Jakarta
	start, end := p.DayBounds(time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC))

	if want := time.Date(2026, 10, 15, 17, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("start = %s, want %s", start, want)
	}
	if want := time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Fatalf("end = %s, want %s", end, want)
	}
}

func TestParseWallClock(t *testing.T) {
	p := testPolicy()

	got, err := p.ParseWallClock("2026-10-16T10:30")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 10, 16, 3, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	got, err = p.ParseWallClock("2026-10-16T10:30:00+08:00")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("explicit offset must win, got %s", got)
	}

	if _, err := p.ParseWallClock("tomorrow"); err == nil {
		t.Fatal("expected error for free text")
	}
}

func TestDateRangeBounds(t *testing.T) {
	p := testPolicy()
	start, _ := p.ParseDate("2026-10-01")
	end, _ := p.ParseDate("2026-10-31")

	r, err := p.DateRangeBounds(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Contains(time.Date(2026, 10, 31, 16, 59, 0, 0, time.UTC)) {
		t.Fatal("last local day must be included")
	}
	if r.Contains(time.Date(2026, 10, 31, 17, 0, 0, 0, time.UTC)) {
		t.Fatal("range end is exclusive")
	}

	if _, err := p.DateRangeBounds(end, start); err == nil {
		t.Fatal("reversed range must fail")
	}
}
