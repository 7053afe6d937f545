package repository

import (
	"context"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"gorm.io/gorm"
)

// RemedyRepository reads the home remedy catalog
type RemedyRepository struct {
	db *gorm.DB
}

func NewRemedyRepository(db *gorm.DB) *RemedyRepository {
	return &RemedyRepository{db: db}
}

// ListByCategory returns every remedy ordered by category, then title.
func (r *RemedyRepository) ListByCategory(ctx context.Context) ([]domain.Remedy, error) {
	var remedies []domain.Remedy
	if err := r.db.WithContext(ctx).Order("category").Order("title").Find(&remedies).Error; err != nil {
		return nil, err
	}
	return remedies, nil
}
