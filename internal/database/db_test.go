package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"cobranzas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestProviderAcquireCachesConnection(t *testing.T) {
	p := NewProvider("sqlite", "file::memory:", nil)
	t.Cleanup(func() { _ = p.Close() })

	db1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	db2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	sql1, err := db1.DB()
	require.NoError(t, err)
	sql2, err := db2.DB()
	require.NoError(t, err)
	assert.Same(t, sql1, sql2)
}

func TestProviderClosed(t *testing.T) {
	p := NewProvider("sqlite", "file::memory:", nil)
	_, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Close())

	_, err = p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestProviderSharesOneConnection(t *testing.T) {
	p := NewProvider("sqlite", "file::memory:", nil)
	t.Cleanup(func() { _ = p.Close() })

	var wg sync.WaitGroup
	dbs := make([]*sql.DB, 5)
	for i := range dbs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := p.Acquire(context.Background())
			if assert.NoError(t, err) {
				dbs[i], _ = db.DB()
			}
		}(i)
	}
	wg.Wait()

	for _, db := range dbs[1:] {
		assert.Same(t, dbs[0], db)
	}
}

func TestProviderAcquireHonorsCallerContext(t *testing.T) {
	p := NewProvider("mssql", "whatever", nil)
	t.Cleanup(func() { _ = p.Close() })

	start := time.Now()
	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_, err := p.Acquire(ctx)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Less(t, time.Since(start), retryInterval)

	require.NoError(t, p.Close())
	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mssql", "whatever")
	assert.Error(t, err)
}

func TestSeedAdminOnce(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, SeedAdmin(db, "admin", "Admin123!", nil))
	require.NoError(t, SeedAdmin(db, "otro", "x", nil))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("Admin123!")))
}

func TestAuditLogs(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	uid := uint(7)
	require.NoError(t, CreateAuditLog(db, nil, "import", 0, "clients", "registros=3"))
	require.NoError(t, CreateAuditLog(db, &uid, "assignment", 1, "create", "importe=150.50"))

	all, err := ListAuditLogs(db, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "assignment", all[0].Entity)

	imports, err := ListAuditLogs(db, "import", 10)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Nil(t, imports[0].UserID)
}
