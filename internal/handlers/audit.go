package handlers

import (
	"net/http"
	"strconv"

	"cobranzas/internal/database"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs: GET /api/auditoria?entidad=import|assignment&limit=N
func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	db, ok := h.db(c)
	if !ok {
		return
	}

	logs, err := database.ListAuditLogs(db, c.Query("entidad"), limit)
	if err != nil {
		h.serverError(c, "Error al obtener auditoría", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
