package jobs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cobranzas/internal/database"
	"cobranzas/internal/logger"
	"cobranzas/internal/models"
	"cobranzas/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSweepTemp(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	touch(t, filepath.Join(store.TempDir(), "viejo.xlsx"), 2*time.Hour)
	touch(t, filepath.Join(store.TempDir(), "nuevo.xlsx"), time.Minute)

	s := New(nil, store, time.Hour, logger.Nop())
	n, err := s.SweepTemp()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	files, err := store.TempFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "nuevo.xlsx", files[0].Name)
}

func TestSweepOrphanVouchers(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	portfolio := models.Portfolio{Name: "CARTERA A", Type: "CASTIGO"}
	require.NoError(t, db.Create(&portfolio).Error)
	client := models.Client{DNI: "11111111", Name: "Ana Torres"}
	require.NoError(t, db.Create(&client).Error)
	account := models.Account{ClientID: client.ID, Number: "C-001", PortfolioID: portfolio.ID}
	require.NoError(t, db.Omit("Client", "Portfolio").Create(&account).Error)
	advisor := models.Advisor{DNI: "44444444", Name: "Carla Ruiz"}
	require.NoError(t, db.Create(&advisor).Error)

	used := "usado.pdf"
	require.NoError(t, db.Omit("Account", "Advisor").Create(&models.Assignment{
		AccountID: account.ID, AdvisorID: advisor.ID, Amount: decimal.NewFromInt(10),
		PaymentDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), PaymentMethod: "EFECTIVO", Voucher: &used,
	}).Error)

	touch(t, filepath.Join(store.Root(), "usado.pdf"), 3*time.Hour)
	touch(t, filepath.Join(store.Root(), "huerfano.pdf"), 3*time.Hour)
	touch(t, filepath.Join(store.Root(), "reciente.pdf"), time.Minute)
	touch(t, filepath.Join(store.TempDir(), "carga.xlsx"), 3*time.Hour)

	s := New(database.FromDB(db), store, time.Hour, logger.Nop())
	n, err := s.SweepOrphanVouchers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, store.Contains("usado.pdf"))
	assert.True(t, store.Contains("reciente.pdf"))
	assert.False(t, store.Contains("huerfano.pdf"))

	temp, err := store.TempFiles()
	require.NoError(t, err)
	assert.Len(t, temp, 1)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	s := New(nil, store, time.Hour, logger.Nop())
	assert.Error(t, s.Start("no es cron"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}

func TestRunLogsAtDebugWhenNothingToRemove(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	var buf bytes.Buffer
	s := New(nil, store, time.Hour, logger.NewFromLevel("debug").WithOutput(&buf))
	s.run()

	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), "sin vouchers huérfanos")
}
