package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cobranzas/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListAdvisors(c *gin.Context) {
	db, ok := h.db(c)
	if !ok {
		return
	}

	advisors := []models.Advisor{}
	if err := db.Order("name").Find(&advisors).Error; err != nil {
		h.serverError(c, "Error al obtener asesores", err)
		return
	}
	c.JSON(http.StatusOK, advisors)
}

// SearchAdvisors: GET /api/asesores/buscar?tipo=dni|nombres&dni=&nombres=
func (h *Handler) SearchAdvisors(c *gin.Context) {
	db, ok := h.db(c)
	if !ok {
		return
	}

	q := db.Model(&models.Advisor{})
	switch c.Query("tipo") {
	case "dni":
		if dni := strings.TrimSpace(c.Query("dni")); dni != "" {
			q = q.Where("dni = ?", dni)
		}
	case "nombres":
		if name := strings.TrimSpace(c.Query("nombres")); name != "" {
			q = q.Where("name LIKE ?", "%"+name+"%")
		}
	}

	advisors := []models.Advisor{}
	if err := q.Order("name").Limit(searchLimit).Find(&advisors).Error; err != nil {
		h.serverError(c, "Error al buscar asesor", err)
		return
	}
	c.JSON(http.StatusOK, advisors)
}

func (h *Handler) GetAdvisor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	var advisor models.Advisor
	if err := db.First(&advisor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Asesor no encontrado", "")
			return
		}
		h.serverError(c, "Error al obtener asesor", err)
		return
	}
	c.JSON(http.StatusOK, advisor)
}
