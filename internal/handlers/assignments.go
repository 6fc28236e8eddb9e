package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cobranzas/internal/database"
	"cobranzas/internal/models"
	"cobranzas/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type assignmentForm struct {
	AccountID     uint
	AdvisorID     uint
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod string
}

func parseAssignmentForm(c *gin.Context) (assignmentForm, error) {
	var f assignmentForm

	account, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("id_cuenta")), 10, 64)
	if err != nil || account == 0 {
		return f, errors.New("id_cuenta es obligatorio y debe ser numérico")
	}
	advisor, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("id_asesor")), 10, 64)
	if err != nil || advisor == 0 {
		return f, errors.New("id_asesor es obligatorio y debe ser numérico")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("importe")))
	if err != nil || !amount.IsPositive() {
		return f, errors.New("importe debe ser un número mayor que cero")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(c.PostForm("fecha_pago")))
	if err != nil {
		return f, errors.New("fecha_pago debe tener el formato AAAA-MM-DD")
	}
	method := strings.TrimSpace(c.PostForm("tipo_pago"))
	if method == "" {
		return f, errors.New("tipo_pago es obligatorio")
	}

	f.AccountID = uint(account)
	f.AdvisorID = uint(advisor)
	f.Amount = amount.Round(2)
	f.PaymentDate = date
	f.PaymentMethod = method
	return f, nil
}

// CreateAssignment: POST /api/asignaciones (multipart, voucher opcional).
func (h *Handler) CreateAssignment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxVoucherSize+formOverhead)

	form, err := parseAssignmentForm(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Datos de asignación inválidos", err.Error())
		return
	}

	db, ok := h.db(c)
	if !ok {
		return
	}

	var n int64
	if err := db.Model(&models.Account{}).Where("id = ?", form.AccountID).Count(&n).Error; err != nil {
		h.serverError(c, "Error al crear asignación", err)
		return
	}
	if n == 0 {
		respondError(c, http.StatusNotFound, "Cuenta no encontrada", "")
		return
	}
	if err := db.Model(&models.Advisor{}).Where("id = ?", form.AdvisorID).Count(&n).Error; err != nil {
		h.serverError(c, "Error al crear asignación", err)
		return
	}
	if n == 0 {
		respondError(c, http.StatusNotFound, "Asesor no encontrado", "")
		return
	}

	var voucher *string
	fh, err := c.FormFile("voucher")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		respondError(c, http.StatusBadRequest, "Voucher inválido", err.Error())
		return
	default:
		name, err := h.store.SaveVoucher(fh)
		if err != nil {
			h.fail(c, "Error al guardar el voucher", err)
			return
		}
		voucher = &name
	}

	assignment := models.Assignment{
		AccountID:     form.AccountID,
		AdvisorID:     form.AdvisorID,
		Amount:        form.Amount,
		PaymentDate:   form.PaymentDate,
		PaymentMethod: form.PaymentMethod,
		Voucher:       voucher,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Account", "Advisor").Create(&assignment).Error; err != nil {
			return err
		}
		details := fmt.Sprintf("cuenta=%d asesor=%d importe=%s", assignment.AccountID, assignment.AdvisorID, assignment.Amount.StringFixed(2))
		return database.CreateAuditLog(tx, sessionUserID(c), "assignment", assignment.ID, "create", details)
	})
	if err != nil {
		if voucher != nil {
			if rmErr := h.store.Remove(*voucher); rmErr != nil {
				h.log.Error(rmErr, "no se pudo borrar el voucher huérfano "+*voucher)
			}
		}
		h.serverError(c, "Error al crear asignación", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asignación guardada correctamente",
		"id":      assignment.ID,
		"voucher": voucher,
	})
}

// assignmentView es una asignación con los datos de cuenta y asesor.
type assignmentView struct {
	ID            uint            `gorm:"column:id" json:"id"`
	AccountID     uint            `gorm:"column:account_id" json:"id_cuenta"`
	AccountNumber string          `gorm:"column:account_number" json:"numero_cuenta"`
	AdvisorID     uint            `gorm:"column:advisor_id" json:"id_asesor"`
	AdvisorName   string          `gorm:"column:advisor_name" json:"asesor_nombre"`
	AdvisorDNI    string          `gorm:"column:advisor_dni" json:"asesor_dni"`
	Amount        decimal.Decimal `gorm:"column:amount" json:"importe"`
	PaymentDate   time.Time       `gorm:"column:payment_date" json:"fecha_pago"`
	PaymentMethod string          `gorm:"column:payment_method" json:"tipo_pago"`
	Voucher       *string         `gorm:"column:voucher" json:"voucher"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
}

func assignmentsQuery(db *gorm.DB) *gorm.DB {
	return db.Table("assignments AS ac").
		Select(`ac.id, ac.account_id, cu.number AS account_number,
			ac.advisor_id, a.name AS advisor_name, a.dni AS advisor_dni,
			ac.amount, ac.payment_date, ac.payment_method, ac.voucher, ac.created_at`).
		Joins("JOIN accounts cu ON ac.account_id = cu.id").
		Joins("JOIN advisors a ON ac.advisor_id = a.id").
		Order("ac.payment_date DESC, ac.id DESC")
}

// AccountAssignments: GET /api/asignaciones/cuenta/:id
func (h *Handler) AccountAssignments(c *gin.Context) {
	h.listAssignments(c, "ac.account_id = ?")
}

// ClientAssignments: GET /api/asignaciones/cliente/:id
func (h *Handler) ClientAssignments(c *gin.Context) {
	h.listAssignments(c, "cu.client_id = ?")
}

func (h *Handler) listAssignments(c *gin.Context, where string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	db, ok := h.db(c)
	if !ok {
		return
	}

	rows := []assignmentView{}
	if err := assignmentsQuery(db).Where(where, id).Scan(&rows).Error; err != nil {
		h.serverError(c, "Error al obtener asignaciones", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
