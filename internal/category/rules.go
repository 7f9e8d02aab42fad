package category

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// Suggest tries to find a category for the given raw description.
// Returns uuid.Nil if no rule matches.
func (s *Service) Suggest(ctx context.Context, owner uuid.UUID, description string, typ ledger.Type) (uuid.UUID, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return uuid.Nil, nil
	}

	return s.repo.FindRule(ctx, owner, description, typ)
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, owner uuid.UUID, pattern string, categoryID uuid.UUID) error {
	pattern = strings.TrimSpace(pattern)
	if len(pattern) < 3 {
		return &ledger.ValidationError{Field: "pattern", Message: "must be at least 3 characters"}
	}

	if _, err := s.repo.GetCategory(ctx, owner, categoryID); err != nil {
		return err
	}

	return s.repo.CreateRule(ctx, owner, pattern, categoryID)
}
