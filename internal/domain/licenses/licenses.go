// Package licenses serves the Creative Commons license reference data that
// events are published under.
package licenses

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type License struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Defaults is the reference set inserted into an empty store.
var Defaults = []License{
	{Code: "CC-BY", Description: "Creative Commons Attribution"},
	{Code: "CC-BY-SA", Description: "Attribution-ShareAlike"},
	{Code: "CC-BY-ND", Description: "Attribution-NoDerivs"},
	{Code: "CC-BY-NC", Description: "Attribution-NonCommercial"},
	{Code: "CC-BY-NC-SA", Description: "Attribution-NonCommercial-ShareAlike"},
	{Code: "CC-BY-NC-ND", Description: "Attribution-NonCommercial-NoDerivs"},
}

type Repository interface {
	// List returns every license ordered by code.
	List(ctx context.Context) ([]License, error)
	// SeedIfEmpty inserts defaults only when no license exists yet and
	// reports how many rows were written.
	SeedIfEmpty(ctx context.Context, defaults []License) (int, error)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "licenses").Logger()}
}

func (s *Service) List(ctx context.Context) ([]License, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	if items == nil {
		items = []License{}
	}
	return items, nil
}

// Seed is idempotent; a populated table is left untouched.
func (s *Service) Seed(ctx context.Context) (int, error) {
	inserted, err := s.repo.SeedIfEmpty(ctx, Defaults)
	if err != nil {
		return 0, fmt.Errorf("seed licenses: %w", err)
	}
	if inserted > 0 {
		s.logger.Info().Int("inserted", inserted).Msg("seeded license types")
	}
	return inserted, nil
}
