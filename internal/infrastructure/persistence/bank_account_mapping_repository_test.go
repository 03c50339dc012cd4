package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBankAccountMappingRepository(t *testing.T) {
	ctx := context.Background()

	mustMapping := func(t *testing.T, identifier string, j *bankfeed.Journal) *bankfeed.BankAccountMapping {
		t.Helper()
		m, err := bankfeed.NewBankAccountMapping(identifier, j)
		require.NoError(t, err)
		return m
	}

	t.Run("saves and finds by id", func(t *testing.T) {
		repo := NewGormBankAccountMappingRepository(newTestDB(t))
		j := mustJournal(t, uuid.New(), "Bank", bankfeed.JournalTypeBank, "")
		m := mustMapping(t, "0011", j)

		require.NoError(t, repo.Save(ctx, m))

		found, err := repo.FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "0011", found.ExternalAccountIdentifier)
		assert.Equal(t, j.ID, found.JournalID)
		assert.Equal(t, j.CompanyID, found.CompanyID)
		assert.True(t, found.Active)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("identifier is unique per company", func(t *testing.T) {
		repo := NewGormBankAccountMappingRepository(newTestDB(t))
		companyID := uuid.New()
		first := mustJournal(t, companyID, "Bank 1", bankfeed.JournalTypeBank, "")
		second := mustJournal(t, companyID, "Bank 2", bankfeed.JournalTypeBank, "")
		elsewhere := mustJournal(t, uuid.New(), "Bank 3", bankfeed.JournalTypeBank, "")

		require.NoError(t, repo.Save(ctx, mustMapping(t, "0011", first)))

		err := repo.Save(ctx, mustMapping(t, "0011", second))
		assert.ErrorIs(t, err, bankfeed.ErrDuplicateMapping)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		assert.NoError(t, repo.Save(ctx, mustMapping(t, "0011", elsewhere)))
	})

	t.Run("active mappings come back oldest first", func(t *testing.T) {
		repo := NewGormBankAccountMappingRepository(newTestDB(t))
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		newer := mustMapping(t, "0011", mustJournal(t, uuid.New(), "Newer", bankfeed.JournalTypeBank, ""))
		newer.CreatedAt = base.Add(2 * time.Hour)
		older := mustMapping(t, "0011", mustJournal(t, uuid.New(), "Older", bankfeed.JournalTypeBank, ""))
		older.CreatedAt = base
		inactive := mustMapping(t, "0011", mustJournal(t, uuid.New(), "Off", bankfeed.JournalTypeBank, ""))
		inactive.CreatedAt = base.Add(-time.Hour)
		inactive.Deactivate()
		unrelated := mustMapping(t, "0099", mustJournal(t, uuid.New(), "Other", bankfeed.JournalTypeBank, ""))

		for _, m := range []*bankfeed.BankAccountMapping{newer, older, inactive, unrelated} {
			require.NoError(t, repo.Save(ctx, m))
		}

		active, err := repo.FindActive(ctx, "0011", nil)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, older.ID, active[0].ID)
		assert.Equal(t, newer.ID, active[1].ID)

		scoped, err := repo.FindActive(ctx, "0011", &newer.CompanyID)
		require.NoError(t, err)
		require.Len(t, scoped, 1)
		assert.Equal(t, newer.ID, scoped[0].ID)

		all, err := repo.FindAll(ctx, bankfeed.MappingFilter{Identifier: "0011"})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, inactive.ID, all[0].ID)
	})

	t.Run("deactivation is persisted", func(t *testing.T) {
		repo := NewGormBankAccountMappingRepository(newTestDB(t))
		m := mustMapping(t, "0011", mustJournal(t, uuid.New(), "Bank", bankfeed.JournalTypeBank, ""))
		require.NoError(t, repo.Save(ctx, m))

		m.Deactivate()
		require.NoError(t, repo.Save(ctx, m))

		active, err := repo.FindActive(ctx, "0011", nil)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}
