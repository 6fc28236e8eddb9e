package handlers

import (
	"cobranzas/internal/config"
	"cobranzas/internal/database"
	"cobranzas/internal/logger"
	"cobranzas/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler agrupa las dependencias de las rutas /api.
type Handler struct {
	provider *database.Provider
	store    *storage.Store
	cfg      *config.Config
	log      *logger.Logger
}

func New(provider *database.Provider, store *storage.Store, cfg *config.Config, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{provider: provider, store: store, cfg: cfg, log: log.Component("api")}
}

// db obtiene la conexión para la petición; si falla ya respondió 500.
func (h *Handler) db(c *gin.Context) (*gorm.DB, bool) {
	db, err := h.provider.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, "Error de conexión a la base de datos", err)
		return nil, false
	}
	return db, true
}
