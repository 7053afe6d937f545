package database

import (
	_ "embed"
	"fmt"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed/home_remedies.yaml
var remediesSeed []byte

// LoadRemedySeed decodes the bundled remedy catalog and assigns fresh IDs.
func LoadRemedySeed() ([]domain.Remedy, error) {
	var remedies []domain.Remedy
	if err := yaml.Unmarshal(remediesSeed, &remedies); err != nil {
		return nil, fmt.Errorf("failed to decode remedy seed: %w", err)
	}
	for i := range remedies {
		remedies[i].ID = uuid.NewString()
	}
	return remedies, nil
}

// SeedRemedies fills home_remedies from the bundled catalog if the table is
// empty and returns how many rows were inserted.
func SeedRemedies(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&domain.Remedy{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	remedies, err := LoadRemedySeed()
	if err != nil {
		return 0, err
	}
	if err := db.Create(&remedies).Error; err != nil {
		return 0, err
	}
	return len(remedies), nil
}
