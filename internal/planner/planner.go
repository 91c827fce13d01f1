// Package planner lays posts out on the weekly cadence grid and runs the
// daily housekeeping jobs.
package planner

import (
	"context"
	"time"

	"github.com/orgball2608/contentflow/internal/domain"
)

// Slot is one platform-day cell of the week grid.
type Slot struct {
	Day   time.Time     `json:"day"`
	Posts []domain.Post `json:"posts"`

	// Planned is set when the cadence marks this day.
	Planned bool `json:"planned"`
	// Open is a planned day with nothing scheduled yet.
	Open bool `json:"open"`
}

type Row struct {
	Platform    domain.Platform `json:"platform"`
	Label       string          `json:"label"`
	Days        []Slot          `json:"days"`
	Unscheduled []domain.Post   `json:"unscheduled"`
}

type Week struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
	Rows  []Row     `json:"rows"`
}

type AgendaItem struct {
	Platform domain.Platform `json:"platform"`
	Post     *domain.Post    `json:"post,omitempty"`
}

type Agenda struct {
	Day   time.Time    `json:"day"`
	Items []AgendaItem `json:"items"`
}

//go:generate go run go.uber.org/mock/mockgen -source=planner.go -destination=mocks/mock.go
type Planner interface {
	WeekGrid(ctx context.Context, weekStart time.Time) (Week, error)

	// MoveToDay reschedules a post onto day, keeping its time of day.
	MoveToDay(ctx context.Context, id string, day time.Time) (domain.Post, error)

	Agenda(ctx context.Context, day time.Time) (Agenda, error)
	SendAgenda(ctx context.Context, day time.Time) error

	// CleanupHistories removes chat histories whose post no longer exists.
	CleanupHistories(ctx context.Context) (int, error)

	// Schedule starts the daily jobs until ctx is done.
	Schedule(ctx context.Context) error
}

// WeekStart returns Monday 00:00 of t's week in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// Weekday returns t's index in a Monday-first week.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
