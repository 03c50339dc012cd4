//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable postgres, applies the embedded
// migrations and returns a gorm handle configured like the server's
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bankfeed_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(4), version)
	assert.False(t, dirty)

	return db
}

func TestPostgres_StatementLineUniqueness(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormStatementLineRepository(db)

	journals := NewGormJournalRepository(db)
	j, err := bankfeed.NewJournal(uuid.New(), "Bank", "BNK", bankfeed.JournalTypeBank, "0011")
	require.NoError(t, err)
	require.NoError(t, journals.Save(ctx, j))

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			line := newStatementLine(t, "RACE-1")
			line.JournalID = j.ID
			line.CompanyID = j.CompanyID
			err := repo.Create(ctx, line)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, bankfeed.ErrDuplicateExternalID):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, dupes)

	var count int64
	require.NoError(t, db.Table("bank_statement_lines").Where("external_id = ?", "RACE-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_MappingUniqueness(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	journals := NewGormJournalRepository(db)
	mappings := NewGormBankAccountMappingRepository(db)

	j, err := bankfeed.NewJournal(uuid.New(), "Bank", "BNK", bankfeed.JournalTypeBank, "")
	require.NoError(t, err)
	require.NoError(t, journals.Save(ctx, j))

	first, err := bankfeed.NewBankAccountMapping("0011", j)
	require.NoError(t, err)
	require.NoError(t, mappings.Save(ctx, first))

	second, err := bankfeed.NewBankAccountMapping("0011", j)
	require.NoError(t, err)
	assert.ErrorIs(t, mappings.Save(ctx, second), bankfeed.ErrDuplicateMapping)
}

func TestPostgres_ConfigParameters(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormConfigParameterRepository(db)

	require.NoError(t, repo.Set(ctx, bankfeed.ParamHMACSecret, "a"))
	require.NoError(t, repo.Set(ctx, bankfeed.ParamHMACSecret, "b"))

	params, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", params[bankfeed.ParamHMACSecret])
}
