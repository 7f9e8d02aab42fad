package goal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, owner, id uuid.UUID) (*Goal, error)
	ListGoals(ctx context.Context, owner uuid.UUID) ([]*Goal, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, owner, id uuid.UUID) error
	// AddProgress increments current_amount in a single statement and returns
	// the updated goal, or ErrCompleted if the target was already reached.
	AddProgress(ctx context.Context, owner, id uuid.UUID, amount int64) (*Goal, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateParams struct {
	Title         string
	Description   string
	TargetAmount  int64
	CurrentAmount int64
	TargetDate    time.Time
}

type UpdateParams struct {
	Title        *string
	Description  *string
	TargetAmount *int64
	TargetDate   *time.Time
}

// View is a goal together with its progress as of the service clock.
type View struct {
	*Goal
	Progress Progress
}

func (s *Service) view(g *Goal) *View {
	return &View{Goal: g, Progress: ComputeProgress(g, s.now())}
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params CreateParams) (*View, error) {
	g := &Goal{
		OwnerID:       owner,
		Title:         params.Title,
		Description:   params.Description,
		TargetAmount:  params.TargetAmount,
		CurrentAmount: params.CurrentAmount,
		TargetDate:    ledger.DateOnly(params.TargetDate),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, g.ID)

	return s.view(g), nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*View, error) {
	g, err := s.repo.GetGoal(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	return s.view(g), nil
}

// List returns the owner's goals ordered by target date.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*View, error) {
	goals, err := s.repo.ListGoals(ctx, owner)
	if err != nil {
		return nil, err
	}

	goals = query.SortByDue(goals,
		func(g *Goal) time.Time { return g.TargetDate },
		func(g *Goal) uuid.UUID { return g.ID },
	)

	out := make([]*View, len(goals))
	for i, g := range goals {
		out[i] = s.view(g)
	}

	return out, nil
}

// Upcoming returns up to limit goals that are not completed yet, soonest
// target date first.
func (s *Service) Upcoming(ctx context.Context, owner uuid.UUID, limit int) ([]*View, error) {
	all, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	out := make([]*View, 0, min(limit, len(all)))

	for _, v := range all {
		if len(out) == limit {
			break
		}

		if !v.Progress.IsCompleted {
			out = append(out, v)
		}
	}

	return out, nil
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params UpdateParams) (*View, error) {
	g, err := s.repo.GetGoal(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		g.Title = *params.Title
	}

	if params.Description != nil {
		g.Description = *params.Description
	}

	if params.TargetAmount != nil {
		g.TargetAmount = *params.TargetAmount
	}

	if params.TargetDate != nil {
		g.TargetDate = ledger.DateOnly(*params.TargetDate)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, id)

	return s.view(g), nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteGoal(ctx, owner, id); err != nil {
		return err
	}

	s.publish(ctx, owner, id)

	return nil
}

// AddProgress adds a positive amount to the goal's current amount.
func (s *Service) AddProgress(ctx context.Context, owner, id uuid.UUID, amount int64) (*View, error) {
	if amount <= 0 {
		return nil, &ledger.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}

	g, err := s.repo.AddProgress(ctx, owner, id, amount)
	if errors.Is(err, ErrCompleted) {
		return nil, &ledger.ValidationError{Field: "amount", Message: "goal is already completed"}
	}

	if err != nil {
		return nil, err
	}

	s.publish(ctx, owner, id)

	return s.view(g), nil
}

func (s *Service) publish(ctx context.Context, owner, id uuid.UUID) {
	if err := s.publisher.Publish(ctx, events.New(events.GoalChanged, owner, id, nil)); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", events.GoalChanged, "error", err)
	}
}
