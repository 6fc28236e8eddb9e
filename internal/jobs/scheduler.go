package jobs

import (
	"context"
	"os"
	"time"

	"cobranzas/internal/database"
	"cobranzas/internal/logger"
	"cobranzas/internal/models"
	"cobranzas/internal/storage"

	"github.com/robfig/cron/v3"
)

// Scheduler corre la limpieza periódica de uploads/.
type Scheduler struct {
	cron     *cron.Cron
	provider *database.Provider
	store    *storage.Store
	maxAge   time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func New(provider *database.Provider, store *storage.Store, maxAge time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local)),
		provider: provider,
		store:    store,
		maxAge:   maxAge,
		log:      log.Component("jobs"),
		now:      time.Now,
	}
}

// Start registra las tareas con la expresión dada ("@every 1h", "0 3 * * *")
// y arranca el cron.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("limpieza programada: %s (antigüedad máxima %s)", spec, s.maxAge)
	return nil
}

// Stop detiene el cron y espera a que termine la tarea en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s.log.Debug("limpieza periódica")

	if n, err := s.SweepTemp(); err != nil {
		s.log.Error(err, "limpieza de temp/")
	} else if n > 0 {
		s.log.Infof("temp/: %d archivos eliminados", n)
	} else {
		s.log.Debugf("temp/: nada que borrar (antigüedad máxima %s)", s.maxAge)
	}

	if n, err := s.SweepOrphanVouchers(ctx); err != nil {
		s.log.Error(err, "limpieza de vouchers huérfanos")
	} else if n > 0 {
		s.log.Infof("vouchers huérfanos eliminados: %d", n)
	} else {
		s.log.Debug("sin vouchers huérfanos")
	}
}

// SweepTemp borra los archivos de importación abandonados en temp/.
func (s *Scheduler) SweepTemp() (int, error) {
	files, err := s.store.TempFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if s.now().Sub(f.ModTime) < s.maxAge {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			s.log.Error(err, "no se pudo borrar "+f.Path)
			continue
		}
		removed++
	}
	return removed, nil
}

// SweepOrphanVouchers borra los vouchers que ninguna asignación referencia.
// Los recientes se respetan: pueden pertenecer a una asignación en curso.
func (s *Scheduler) SweepOrphanVouchers(ctx context.Context) (int, error) {
	files, err := s.store.Vouchers()
	if err != nil {
		return 0, err
	}

	var candidates []string
	for _, f := range files {
		if s.now().Sub(f.ModTime) >= s.maxAge {
			candidates = append(candidates, f.Name)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	db, err := s.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	var used []string
	if err := db.Model(&models.Assignment{}).
		Where("voucher IN ?", candidates).
		Pluck("voucher", &used).Error; err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(used))
	for _, name := range used {
		referenced[name] = struct{}{}
	}

	removed := 0
	for _, name := range candidates {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := s.store.Remove(name); err != nil {
			s.log.Error(err, "no se pudo borrar el voucher "+name)
			continue
		}
		removed++
	}
	return removed, nil
}
