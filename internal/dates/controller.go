// Package dates owns the selected snapshot date: a single instant exposed
// both as a calendar date and as a day offset from a fixed historical floor.
package dates

import (
	"fmt"
	"math"
	"time"
)

// Horizon is how far past today the ceiling extends.
const Horizon = 14 * 24 * time.Hour

// Controller tracks the selected instant and keeps its two views in sync.
// Selections are normalized to local noon so a date means the same instant
// regardless of which view set it. Out-of-range input is clamped, never
// rejected. Not safe for concurrent use; callers serialize access.
type Controller struct {
	floor    time.Time
	ceiling  time.Time
	selected time.Time
	onChange func(time.Time)
}

// NewController computes the valid range from the clock: floor is the fixed
// historical minimum, ceiling is today plus the forecast horizon. The initial
// selection is the ceiling. onChange fires after every selection change and
// may be nil.
func NewController(onChange func(time.Time)) *Controller {
	floor := time.Date(1992, time.January, 1, 12, 0, 0, 0, time.Local)
	ceiling := noon(clock.Now().Add(Horizon))
	return &Controller{
		floor:    floor,
		ceiling:  ceiling,
		selected: ceiling,
		onChange: onChange,
	}
}

// Date returns the selected instant, always local noon.
func (c *Controller) Date() time.Time {
	return c.selected
}

// Floor returns the earliest selectable instant.
func (c *Controller) Floor() time.Time {
	return c.floor
}

// Ceiling returns the latest selectable instant, fixed at construction.
func (c *Controller) Ceiling() time.Time {
	return c.ceiling
}

// Offset returns the selection as whole days past the floor.
func (c *Controller) Offset() int {
	return daysBetween(c.floor, c.selected)
}

// MaxOffset returns the offset of the ceiling.
func (c *Controller) MaxOffset() int {
	return daysBetween(c.floor, c.ceiling)
}

// Label renders the human-readable form of the selection.
func (c *Controller) Label() string {
	return fmt.Sprintf("Date selected: %s", c.selected.Format("Mon, Jan 2, 2006"))
}

// RequestTime returns the selection as Unix seconds, the form the feed
// request carries.
func (c *Controller) RequestTime() int64 {
	return c.selected.Unix()
}

// SetDate selects a calendar date. The time of day is discarded, the result
// clamped to the valid range.
func (c *Controller) SetDate(t time.Time) {
	c.set(noon(t))
}

// SetOffset selects by day offset from the floor.
func (c *Controller) SetOffset(days int) {
	c.set(noon(c.floor.AddDate(0, 0, days)))
}

func (c *Controller) set(t time.Time) {
	if t.Before(c.floor) {
		t = c.floor
	}
	if t.After(c.ceiling) {
		t = c.ceiling
	}
	c.selected = t
	if c.onChange != nil {
		c.onChange(t)
	}
}

// ParseDate reads a YYYY-MM-DD string in local time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func noon(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local)
}

// daysBetween counts calendar days from a to b. Rounding absorbs daylight
// saving shifts between the two noons.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
