package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cobranzas/internal/logger"
	"cobranzas/internal/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxAttempts   = 10
	retryInterval = 2 * time.Second

	maxOpenConns    = 10
	connMaxIdleTime = 30 * time.Second
)

var ErrClosed = errors.New("database: provider closed")

// Provider abre la conexión en el primer Acquire y la reutiliza. Un solo
// intento de conexión corre a la vez; cada llamador espera con su propio ctx.
type Provider struct {
	driver string
	dsn    string
	log    *logger.Logger

	mu      sync.Mutex
	db      *gorm.DB
	closed  bool
	pending *dialAttempt
}

// dialAttempt es un intento de conexión en curso; done se cierra al terminar.
type dialAttempt struct {
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

func NewProvider(driver, dsn string, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{driver: driver, dsn: dsn, log: log.Component("database")}
}

// FromDB envuelve una conexión ya abierta (tests, CLI).
func FromDB(db *gorm.DB) *Provider {
	return &Provider{db: db, log: logger.Nop()}
}

func (p *Provider) Acquire(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.db != nil {
		db := p.db
		p.mu.Unlock()
		return db.WithContext(ctx), nil
	}
	attempt := p.pending
	if attempt == nil {
		attempt = p.startDial()
	}
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-attempt.done:
	}
	if attempt.err != nil {
		return nil, attempt.err
	}

	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	if db == nil {
		return nil, ErrClosed
	}
	return db.WithContext(ctx), nil
}

// startDial lanza la conexión en segundo plano; requiere p.mu tomado.
func (p *Provider) startDial() *dialAttempt {
	ctx, cancel := context.WithCancel(context.Background())
	attempt := &dialAttempt{done: make(chan struct{}), cancel: cancel}
	p.pending = attempt

	go func() {
		defer cancel()
		db, err := connect(ctx, p.driver, p.dsn, p.log)

		p.mu.Lock()
		defer p.mu.Unlock()
		defer close(attempt.done)

		p.pending = nil
		if p.closed {
			if db != nil {
				if sqlDB, dbErr := db.DB(); dbErr == nil {
					_ = sqlDB.Close()
				}
			}
			attempt.err = ErrClosed
			return
		}
		attempt.err = err
		p.db = db
	}()
	return attempt
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.pending != nil {
		p.pending.cancel()
	}
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	p.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func connect(ctx context.Context, driver, dsn string, log *logger.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		db, err = Open(driver, dsn)
		if err == nil {
			log.Info("connected to DB successfully")
			return db, nil
		}

		log.Error(err, "failed to connect to DB")
		if i == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return nil, fmt.Errorf("failed to connect to db after %d attempts: %w", maxAttempts, err)
}

// Open abre una conexión sin reintentos y configura el pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return db, nil
}

// OpenMemory abre una base sqlite en memoria ya migrada.
// Una sola conexión: cada conexión nueva a :memory: sería otra base.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Portfolio{},
		&models.Account{},
		&models.Advisor{},
		&models.Assignment{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// SeedAdmin crea el administrador solo si todavía no existe ninguno.
func SeedAdmin(db *gorm.DB, username, password string, log *logger.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	if log != nil {
		log.Infof("created default admin user: %s", username)
	}
	return nil
}
