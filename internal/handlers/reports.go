package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"cobranzas/internal/reports"
	"cobranzas/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bindFilter lee y valida el filtro del cuerpo; responde 400 si no es válido.
func (h *Handler) bindFilter(c *gin.Context, f *reports.Filter) (reports.Criteria, bool) {
	if err := c.ShouldBindJSON(f); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Filtro inválido", err.Error())
		return reports.Criteria{}, false
	}
	crit, err := f.Validate()
	if err != nil {
		h.fail(c, "Filtro inválido", err)
		return reports.Criteria{}, false
	}
	return crit, true
}

// Payments: POST /api/reportes/pagos
func (h *Handler) Payments(c *gin.Context) {
	var f reports.Filter
	crit, ok := h.bindFilter(c, &f)
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	rows, err := reports.Payments(db, crit)
	if err != nil {
		h.serverError(c, "Error al obtener pagos", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DownloadPayments: POST /api/reportes/pagos/descargar -> pagos.xlsx
func (h *Handler) DownloadPayments(c *gin.Context) {
	var f reports.Filter
	crit, ok := h.bindFilter(c, &f)
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	rows, err := reports.Payments(db, crit)
	if err != nil {
		h.serverError(c, "Error al descargar pagos", err)
		return
	}
	book, err := reports.PaymentsWorkbook(rows, baseURL(c), h.store)
	if err != nil {
		h.serverError(c, "Error al descargar pagos", err)
		return
	}
	h.sendWorkbook(c, book, "pagos.xlsx")
}

// Ranking: POST /api/reportes/ranking
func (h *Handler) Ranking(c *gin.Context) {
	var req reports.RankingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Filtro inválido", err.Error())
		return
	}
	crit, err := req.Filter.Validate()
	if err != nil {
		h.fail(c, "Filtro inválido", err)
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	advisor, err := reports.FindAdvisor(db, req.Lookup, req.DNI, req.Name)
	if err != nil {
		h.fail(c, "Error al obtener ranking", err)
		return
	}
	stats, err := reports.AdvisorRate(db, advisor, crit)
	if err != nil {
		h.serverError(c, "Error al obtener ranking", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Leaderboard: GET /api/reportes/ranking/asesores?fecha_inicio=&fecha_fin=
func (h *Handler) Leaderboard(c *gin.Context) {
	f := reports.Filter{
		DateMode: reports.DateModeRange,
		From:     c.Query("fecha_inicio"),
		To:       c.Query("fecha_fin"),
	}
	crit, err := f.Validate()
	if err != nil {
		h.fail(c, "Filtro inválido", err)
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	rows, err := reports.Leaderboard(db, crit)
	if err != nil {
		h.serverError(c, "Error al obtener ranking", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type clientDownloadRequest struct {
	ClientID reports.OptionalID `json:"id_cliente"`
}

// DownloadClient: POST /api/reportes/cliente-asignacion/descargar -> cliente_<id>.xlsx
func (h *Handler) DownloadClient(c *gin.Context) {
	var req clientDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.ClientID.Set {
		respondError(c, http.StatusBadRequest, "id_cliente es obligatorio", "")
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	rows, err := reports.ClientAssignments(db, req.ClientID.Value)
	if err != nil {
		h.fail(c, "Error al descargar datos", err)
		return
	}
	book, err := reports.ClientWorkbook(rows)
	if err != nil {
		h.serverError(c, "Error al descargar datos", err)
		return
	}
	h.sendWorkbook(c, book, fmt.Sprintf("cliente_%d.xlsx", req.ClientID.Value))
}

// Voucher: GET /api/reportes/voucher/*filename, servido inline.
func (h *Handler) Voucher(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filename"), "/")

	path, err := h.store.Resolve(name)
	if err != nil {
		h.fail(c, "Error al obtener voucher", err)
		return
	}

	c.Header("Content-Type", storage.ContentType(path))
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, strings.ReplaceAll(filepath.Base(path), `"`, "")))
	c.File(path)
}

func (h *Handler) sendWorkbook(c *gin.Context, book *excelize.File, filename string) {
	defer func() { _ = book.Close() }()

	buf, err := book.WriteToBuffer()
	if err != nil {
		h.serverError(c, "Error al generar el Excel", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// baseURL arma esquema://host de la petición, respetando un proxy delante.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := c.Request.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host
}
