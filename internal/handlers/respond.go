package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cobranzas/internal/importer"
	"cobranzas/internal/reports"
	"cobranzas/internal/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// respondError escribe el sobre {"error": resumen, "message": detalle}.
func respondError(c *gin.Context, status int, summary, detail string) {
	if detail == "" {
		detail = summary
	}
	c.AbortWithStatusJSON(status, gin.H{"error": summary, "message": detail})
}

func (h *Handler) serverError(c *gin.Context, summary string, err error) {
	h.log.Errorf(err, "%s %s: %s", c.Request.Method, c.FullPath(), summary)
	respondError(c, http.StatusInternalServerError, summary, err.Error())
}

// fail traduce los errores de dominio a su código HTTP.
func (h *Handler) fail(c *gin.Context, summary string, err error) {
	var (
		headerErr *importer.HeaderError
		filterErr *reports.FilterError
	)
	switch {
	case errors.As(err, &headerErr):
		respondError(c, http.StatusBadRequest, err.Error(), "")
	case errors.As(err, &filterErr):
		respondError(c, http.StatusBadRequest, summary, err.Error())
	case errors.Is(err, importer.ErrEmptySheet),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrInvalidType),
		errors.Is(err, storage.ErrTooLarge):
		respondError(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, storage.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, reports.ErrAdvisorNotFound),
		errors.Is(err, reports.ErrClientNotFound):
		respondError(c, http.StatusNotFound, err.Error(), "")
	default:
		h.serverError(c, summary, err)
	}
}

// paramID lee un id numérico de la ruta; responde 400 si no lo es.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Identificador inválido", "el parámetro "+name+" debe ser un número positivo")
		return 0, false
	}
	return uint(id), true
}

// sessionUserID devuelve el usuario de la sesión o nil si no hay login.
func sessionUserID(c *gin.Context) *uint {
	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok && uid > 0 {
		return &uid
	}
	return nil
}
