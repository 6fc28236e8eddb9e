package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DateModeDay   = "dia"
	DateModeRange = "rango"

	dateLayout = "2006-01-02"
)

// FilterError es un error de validación del filtro (400).
type FilterError struct {
	Field   string
	Message string
}

func (e *FilterError) Error() string {
	return e.Message
}

// OptionalID acepta un número o un texto numérico; "" y null quedan sin valor.
type OptionalID struct {
	Value uint
	Set   bool
}

func ID(v uint) OptionalID { return OptionalID{Value: v, Set: true} }

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	*o = OptionalID{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("identificador inválido: %s", raw)
	}
	*o = OptionalID{Value: uint(n), Set: true}
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(uint64(o.Value), 10)), nil
}

// Flag es el estado de un checkbox: true, "true", "on", "1" o 1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), `"`))
	switch s {
	case "true", "on", "1", "si", "sí":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Filter es el cuerpo JSON de los reportes de pagos.
type Filter struct {
	DateMode string `json:"tipo_fecha"`
	From     string `json:"fecha_inicio"`
	To       string `json:"fecha_fin"`

	ByPortfolio Flag       `json:"filtro_cartera"`
	PortfolioID OptionalID `json:"cartera"`

	ByCampaign Flag   `json:"filtro_campana"`
	Campaign   string `json:"campana"`

	ByAdvisor Flag       `json:"filtro_asesor"`
	AdvisorID OptionalID `json:"id_asesor"`
}

// Criteria es un Filter validado. Las fechas forman el rango [From, Until).
type Criteria struct {
	From        *time.Time
	Until       *time.Time
	PortfolioID *uint
	Campaign    *string
	AdvisorID   *uint
}

// Validate convierte el filtro en criterios. Un toggle apagado ignora su
// valor; uno encendido exige valor y lo aplica tal cual.
func (f Filter) Validate() (Criteria, error) {
	var c Criteria

	from, err := parseDay("fecha_inicio", f.From)
	if err != nil {
		return c, err
	}
	to, err := parseDay("fecha_fin", f.To)
	if err != nil {
		return c, err
	}

	switch f.DateMode {
	case DateModeDay:
		if from != nil {
			next := from.AddDate(0, 0, 1)
			c.From, c.Until = from, &next
		}
	case DateModeRange:
		if from != nil && to != nil && to.Before(*from) {
			return c, &FilterError{Field: "fecha_fin", Message: "La fecha fin no puede ser anterior a la fecha inicio"}
		}
		c.From = from
		if to != nil {
			next := to.AddDate(0, 0, 1)
			c.Until = &next
		}
	case "":
	default:
		return c, &FilterError{Field: "tipo_fecha", Message: fmt.Sprintf("tipo_fecha inválido: %q (use dia o rango)", f.DateMode)}
	}

	if f.ByPortfolio {
		if !f.PortfolioID.Set {
			return c, &FilterError{Field: "cartera", Message: "Seleccione una cartera"}
		}
		id := f.PortfolioID.Value
		c.PortfolioID = &id
	}
	if f.ByCampaign {
		campaign := strings.TrimSpace(f.Campaign)
		if campaign == "" {
			return c, &FilterError{Field: "campana", Message: "Seleccione una campaña"}
		}
		c.Campaign = &campaign
	}
	if f.ByAdvisor {
		if !f.AdvisorID.Set {
			return c, &FilterError{Field: "id_asesor", Message: "Seleccione un asesor"}
		}
		id := f.AdvisorID.Value
		c.AdvisorID = &id
	}

	return c, nil
}

func parseDay(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, &FilterError{Field: field, Message: fmt.Sprintf("%s inválida: use el formato AAAA-MM-DD", field)}
	}
	return &t, nil
}

// applyDates filtra por ac.payment_date.
func (c Criteria) applyDates(q *gorm.DB) *gorm.DB {
	if c.From != nil {
		q = q.Where("ac.payment_date >= ?", *c.From)
	}
	if c.Until != nil {
		q = q.Where("ac.payment_date < ?", *c.Until)
	}
	return q
}

// apply espera los alias ac (assignments) y cu (accounts).
func (c Criteria) apply(q *gorm.DB) *gorm.DB {
	q = c.applyDates(q)
	if c.PortfolioID != nil {
		q = q.Where("cu.portfolio_id = ?", *c.PortfolioID)
	}
	if c.Campaign != nil {
		q = q.Where("cu.campaign = ?", *c.Campaign)
	}
	if c.AdvisorID != nil {
		q = q.Where("ac.advisor_id = ?", *c.AdvisorID)
	}
	return q
}

// dateJoinCondition arma la condición de fechas para un LEFT JOIN.
func (c Criteria) dateJoinCondition() (string, []interface{}) {
	var (
		cond []string
		args []interface{}
	)
	if c.From != nil {
		cond = append(cond, "ac.payment_date >= ?")
		args = append(args, *c.From)
	}
	if c.Until != nil {
		cond = append(cond, "ac.payment_date < ?")
		args = append(args, *c.Until)
	}
	if len(cond) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(cond, " AND "), args
}
