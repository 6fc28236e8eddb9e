package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cobranzas/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const searchLimit = 200

// SearchClients: GET /api/clientes/buscar?tipo=dni|nombres&dni=&nombres=
func (h *Handler) SearchClients(c *gin.Context) {
	db, ok := h.db(c)
	if !ok {
		return
	}

	q := db.Model(&models.Client{})
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

	clients := []models.Client{}
	if err := q.Order("name").Limit(searchLimit).Find(&clients).Error; err != nil {
		h.serverError(c, "Error al buscar cliente", err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	var client models.Client
	if err := db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Cliente no encontrado", "")
			return
		}
		h.serverError(c, "Error al obtener cliente", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// ClientPortfolios: carteras en las que el cliente tiene cuentas.
func (h *Handler) ClientPortfolios(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	portfolios := []models.Portfolio{}
	err := db.Model(&models.Portfolio{}).
		Where("id IN (?)", db.Model(&models.Account{}).Select("portfolio_id").Where("client_id = ?", id)).
		Order("name").
		Find(&portfolios).Error
	if err != nil {
		h.serverError(c, "Error al obtener carteras del cliente", err)
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

// ClientAccounts: cuentas del cliente con su cartera; ?cartera=<id> filtra.
func (h *Handler) ClientAccounts(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	q := db.Preload("Portfolio").Where("client_id = ?", id)
	if p := strings.TrimSpace(c.Query("cartera")); p != "" {
		q = q.Where("portfolio_id = ?", p)
	}

	accounts := []models.Account{}
	if err := q.Order("number").Find(&accounts).Error; err != nil {
		h.serverError(c, "Error al obtener cuentas del cliente", err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) ListPortfolios(c *gin.Context) {
	db, ok := h.db(c)
	if !ok {
		return
	}

	portfolios := []models.Portfolio{}
	if err := db.Order("name").Find(&portfolios).Error; err != nil {
		h.serverError(c, "Error al obtener carteras", err)
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	db, ok := h.db(c)
	if !ok {
		return
	}

	campaigns := []string{}
	err := db.Model(&models.Account{}).
		Distinct("campaign").
		Where("campaign IS NOT NULL AND campaign <> ''").
		Order("campaign").
		Pluck("campaign", &campaigns).Error
	if err != nil {
		h.serverError(c, "Error al obtener campañas", err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}
