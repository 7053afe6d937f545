package services

import (
	"context"
	"strings"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/echoremedy/echoremedy-bot/internal/errors"
)

// CategoryAll disables the category filter.
const CategoryAll = "All"

type RemedyService struct {
	repo domain.RemedyRepository
}

func NewRemedyService(repo domain.RemedyRepository) *RemedyService {
	return &RemedyService{repo: repo}
}

func (s *RemedyService) Categories() []string {
	return domain.RemedyCategories
}

// List returns the catalog ordered by category.
func (s *RemedyService) List(ctx context.Context) ([]domain.Remedy, error) {
	remedies, err := s.repo.ListByCategory(ctx)
	if err != nil {
		return nil, errors.NewBackendError(err, "load remedies")
	}
	return remedies, nil
}

// Filter keeps remedies in category (unless "All") whose title or any
// ingredient contains search, ignoring case.
func (s *RemedyService) Filter(ctx context.Context, category, search string) ([]domain.Remedy, error) {
	remedies, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(search)
	matched := make([]domain.Remedy, 0, len(remedies))
	for _, r := range remedies {
		if category != "" && category != CategoryAll && r.Category != category {
			continue
		}
		if term != "" && !remedyMatches(r, term) {
			continue
		}
		matched = append(matched, r)
	}
	return matched, nil
}

func remedyMatches(r domain.Remedy, term string) bool {
	if strings.Contains(strings.ToLower(r.Title), term) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), term) {
			return true
		}
	}
	return false
}
