package goal

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/money"
)

// ErrCompleted is returned by repositories when progress is added to a goal
// that already reached its target.
var ErrCompleted = errors.New("goal already completed")

const (
	maxYear       = 9999
	secondsPerDay = 24 * 60 * 60
)

type Goal struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Title         string
	Description   string
	TargetAmount  int64
	CurrentAmount int64
	TargetDate    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g *Goal) Validate() error {
	if g.Title == "" {
		return &ledger.ValidationError{Field: "title", Message: "is required"}
	}

	if len(g.Title) > 100 {
		return &ledger.ValidationError{Field: "title", Message: "must be at most 100 characters"}
	}

	if g.TargetAmount <= 0 {
		return &ledger.ValidationError{Field: "targetAmount", Message: "must be greater than zero"}
	}

	if g.CurrentAmount < 0 {
		return &ledger.ValidationError{Field: "currentAmount", Message: "must not be negative"}
	}

	if g.TargetDate.IsZero() {
		return &ledger.ValidationError{Field: "targetDate", Message: "is required"}
	}

	if g.TargetDate.Year() > maxYear {
		return &ledger.ValidationError{Field: "targetDate", Message: "must be before the year 10000"}
	}

	return nil
}

func (g *Goal) IsCompleted() bool {
	return g.CurrentAmount >= g.TargetAmount
}

// Progress reports current against target. Percentage is not capped at 100.
type Progress struct {
	Percentage    float64
	Remaining     int64
	IsCompleted   bool
	DaysRemaining int
}

// ComputeProgress derives the goal's progress as of today. DaysRemaining is
// negative once the target date has passed.
func ComputeProgress(g *Goal, today time.Time) Progress {
	return Progress{
		Percentage:    money.Percentage(g.CurrentAmount, g.TargetAmount),
		Remaining:     max(g.TargetAmount-g.CurrentAmount, 0),
		IsCompleted:   g.IsCompleted(),
		DaysRemaining: int(dayNumber(g.TargetDate) - dayNumber(today)),
	}
}

// dayNumber counts calendar days since the Unix epoch. time.Duration tops
// out at about 292 years, Unix seconds do not.
func dayNumber(t time.Time) int64 {
	return ledger.DateOnly(t).Unix() / secondsPerDay
}
