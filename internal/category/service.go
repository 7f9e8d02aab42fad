package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/events"
	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
	"github.com/MrJamesThe3rd/pennywise/internal/query"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *ledger.Category) error
	GetCategory(ctx context.Context, owner, id uuid.UUID) (*ledger.Category, error)
	ListCategories(ctx context.Context, owner uuid.UUID) ([]*ledger.Category, error)
	UpdateCategory(ctx context.Context, c *ledger.Category) error
	// DeleteCategory fails with ErrConflict while transactions reference it.
	DeleteCategory(ctx context.Context, owner, id uuid.UUID) error
	CategoryInUse(ctx context.Context, owner, id uuid.UUID) (bool, error)

	// FindRule returns the id of the active category of type typ whose longest
	// learned pattern occurs in description, or uuid.Nil.
	FindRule(ctx context.Context, owner uuid.UUID, description string, typ ledger.Type) (uuid.UUID, error)
	CreateRule(ctx context.Context, owner uuid.UUID, pattern string, categoryID uuid.UUID) error
}

type Service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}

	return &Service{repo: repo, publisher: publisher}
}

type CreateParams struct {
	Name        string
	Description string
	Type        ledger.Type
	Color       string
	Icon        string
}

type UpdateParams struct {
	Name        *string
	Description *string
	Type        *ledger.Type
	Color       *string
	Icon        *string
	IsActive    *bool
}

type Stats struct {
	TotalCategories    int
	IncomeCategories   int
	ExpenseCategories  int
	ActiveCategories   int
	InactiveCategories int
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params CreateParams) (*ledger.Category, error) {
	c := &ledger.Category{
		OwnerID:     owner,
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Type:        params.Type,
		Color:       params.Color,
		Icon:        params.Icon,
		IsActive:    true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, c.ID)

	return c, nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*ledger.Category, error) {
	return s.repo.GetCategory(ctx, owner, id)
}

func (s *Service) List(ctx context.Context, owner uuid.UUID, filter query.CategoryFilter) ([]*ledger.Category, error) {
	cats, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}

	return query.Categories(cats, filter), nil
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params UpdateParams) (*ledger.Category, error) {
	c, err := s.repo.GetCategory(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = strings.TrimSpace(*params.Name)
	}

	if params.Description != nil {
		c.Description = *params.Description
	}

	if params.Type != nil && *params.Type != c.Type {
		// Transactions must keep the type of their category.
		inUse, err := s.repo.CategoryInUse(ctx, owner, id)
		if err != nil {
			return nil, err
		}

		if inUse {
			return nil, fmt.Errorf("changing type of category %s: %w", id, ledger.ErrConflict)
		}

		c.Type = *params.Type
	}

	if params.Color != nil {
		c.Color = *params.Color
	}

	if params.Icon != nil {
		c.Icon = *params.Icon
	}

	if params.IsActive != nil {
		c.IsActive = *params.IsActive
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, owner, id)

	return c, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, owner, id); err != nil {
		return err
	}

	s.publish(ctx, owner, id)

	return nil
}

func (s *Service) Stats(ctx context.Context, owner uuid.UUID) (*Stats, error) {
	cats, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}

	st := &Stats{TotalCategories: len(cats)}

	for _, c := range cats {
		if c.Type == ledger.TypeIncome {
			st.IncomeCategories++
		} else {
			st.ExpenseCategories++
		}

		if c.IsActive {
			st.ActiveCategories++
		} else {
			st.InactiveCategories++
		}
	}

	return st, nil
}

func (s *Service) publish(ctx context.Context, owner, id uuid.UUID) {
	if err := s.publisher.Publish(ctx, events.New(events.CategoryChanged, owner, id, nil)); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", events.CategoryChanged, "error", err)
	}
}
