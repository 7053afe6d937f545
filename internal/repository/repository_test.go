package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/echoremedy/echoremedy-bot/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.JournalEntry{}))
	require.NoError(t, db.Exec(`CREATE TABLE home_remedies (
		id TEXT PRIMARY KEY, category TEXT, title TEXT,
		ingredients TEXT, preparation_steps TEXT, precautions TEXT)`).Error)
	return db
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestJournalRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository(openTestDB(t))

	older := &domain.JournalEntry{UserID: "u1", Symptoms: "cough", EntryDate: date("2026-10-01")}
	newer := &domain.JournalEntry{UserID: "u1", Symptoms: "sore throat", EntryDate: date("2026-10-18")}
	other := &domain.JournalEntry{UserID: "u2", Symptoms: "fever", EntryDate: date("2026-10-10")}
	for _, e := range []*domain.JournalEntry{older, newer, other} {
		require.NoError(t, repo.Create(ctx, e))
		assert.NotEmpty(t, e.ID)
	}

	entries, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sore throat", entries[0].Symptoms)
	assert.Equal(t, "cough", entries[1].Symptoms)
	assert.Nil(t, entries[0].EffectivenessRating)

	ok, err := repo.Delete(ctx, "u2", older.ID)
	require.NoError(t, err)
	assert.False(t, ok, "other users cannot delete the entry")

	ok, err = repo.Delete(ctx, "u1", older.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, "u1", older.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, newer.ID, entries[0].ID)
}

func TestRemedyRepositoryOrdersByCategory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.Create([]domain.Remedy{
		{ID: "1", Category: "Headache", Title: "Cold Compress", Ingredients: pq.StringArray{"ice"}},
		{ID: "2", Category: "Common Cold", Title: "Salt Water Gargle", Ingredients: pq.StringArray{"salt", "water"}},
	}).Error)

	remedies, err := NewRemedyRepository(db).ListByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, remedies, 2)
	assert.Equal(t, "Common Cold", remedies[0].Category)
	assert.Equal(t, []string{"salt", "water"}, []string(remedies[0].Ingredients))
}
