package core

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a time of day, stored as the offset from midnight.
type ClockTime time.Duration

const day = ClockTime(24 * time.Hour)

// Clock builds a ClockTime from hours and minutes.
func Clock(h, m int) ClockTime {
	return ClockTime(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, s, err)
	}
	return Clock(t.Hour(), t.Minute()), nil
}

// ClockOf returns the time of day of a wall-clock instant.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second)
}

// Add returns the time of day d after c, wrapping past midnight.
func (c ClockTime) Add(d time.Duration) ClockTime {
	t := (c + ClockTime(d)) % day
	if t < 0 {
		t += day
	}
	return t
}

func (c ClockTime) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours())%24, int(d.Minutes())%60)
}

// Window is a half-open time-of-day interval [Start, End). A window whose
// End precedes its Start wraps past midnight.
type Window struct {
	Start, End ClockTime
}

// ParseWindow parses a pair of "HH:MM" strings.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate rejects empty windows and values outside one day.
func (w Window) Validate() error {
	if w.Start < 0 || w.Start >= day || w.End < 0 || w.End >= day {
		return fmt.Errorf("%w: %s-%s outside one day", ErrInvalidWindow, w.Start, w.End)
	}
	if w.Start == w.End {
		return fmt.Errorf("%w: empty window %s-%s", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t ClockTime) bool {
	if w.Start < w.End {
		return t >= w.Start && t < w.End
	}
	return t >= w.Start || t < w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
