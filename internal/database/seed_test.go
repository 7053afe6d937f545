package database

import (
	"path/filepath"
	"testing"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sqliteRemediesTable = `CREATE TABLE home_remedies (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	title TEXT NOT NULL,
	ingredients TEXT,
	preparation_steps TEXT,
	precautions TEXT
)`

func TestLoadRemedySeedCoversCategories(t *testing.T) {
	remedies, err := LoadRemedySeed()
	require.NoError(t, err)
	require.NotEmpty(t, remedies)

	seen := map[string]bool{}
	for _, r := range remedies {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Ingredients)
		seen[r.Category] = true
	}
	for _, c := range domain.RemedyCategories[1:] {
		assert.True(t, seen[c], "no seed remedy for %s", c)
	}
}

func TestSeedRemediesOnlyWhenEmpty(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(sqliteRemediesTable).Error)

	n, err := SeedRemedies(db)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	n, err = SeedRemedies(db)
	require.NoError(t, err)
	assert.Zero(t, n)

	var stored domain.Remedy
	require.NoError(t, db.Where("title = ?", "BRAT Diet").First(&stored).Error)
	assert.Equal(t, "Digestive Issues", stored.Category)
	assert.Contains(t, []string(stored.Ingredients), "bananas")
}
