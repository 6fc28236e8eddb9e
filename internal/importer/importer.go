package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cobranzas/internal/database"
	"cobranzas/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const SuccessMessage = "Importación exitosa"

// Result: Registros cuenta todas las filas de datos del archivo, incluidas
// las omitidas; Procesados y Omitidos desglosan ese total.
type Result struct {
	Registros  int `json:"registros"`
	Procesados int `json:"procesados"`
	Omitidos   int `json:"omitidos"`
}

// ImportFile lee el archivo del disco e importa su primera hoja.
func ImportFile(ctx context.Context, db *gorm.DB, kind Kind, path string, userID *uint) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	rows, err := ReadRows(f, filepath.Base(path))
	if err != nil {
		return Result{}, err
	}
	return Import(ctx, db, kind, rows, userID)
}

// Import resuelve encabezados y persiste todas las filas en una sola
// transacción: si una fila falla no se guarda ninguna.
func Import(ctx context.Context, db *gorm.DB, kind Kind, rows [][]string, userID *uint) (Result, error) {
	if len(rows) < 2 {
		return Result{}, ErrEmptySheet
	}

	cols, err := resolveColumns(kind, rows[0])
	if err != nil {
		return Result{}, err
	}
	data := rows[1:]

	var res Result
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch kind {
		case KindClients:
			res, err = importClients(tx, cols, data)
		case KindAdvisors:
			res, err = importAdvisors(tx, cols, data)
		default:
			return fmt.Errorf("tipo de importación desconocido: %q", kind)
		}
		if err != nil {
			return err
		}

		details := fmt.Sprintf("registros=%d procesados=%d omitidos=%d", res.Registros, res.Procesados, res.Omitidos)
		return database.CreateAuditLog(tx, userID, "import", 0, string(kind), details)
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func importClients(tx *gorm.DB, cols columns, data [][]string) (Result, error) {
	res := Result{Registros: len(data)}
	portfolios := map[string]uint{}

	for i, row := range data {
		rec := clientRecord(cols, row)
		if !rec.complete() {
			res.Omitidos++
			continue
		}

		if err := saveClientRecord(tx, rec, portfolios); err != nil {
			return Result{}, fmt.Errorf("fila %d: %w", i+2, err)
		}
		res.Procesados++
	}
	return res, nil
}

func saveClientRecord(tx *gorm.DB, rec ClientRecord, portfolios map[string]uint) error {
	clientID, err := upsertClient(tx, rec)
	if err != nil {
		return err
	}

	portfolioID, ok := portfolios[rec.Portfolio]
	if !ok {
		portfolioID, err = upsertPortfolio(tx, rec.Portfolio, rec.PortfolioType)
		if err != nil {
			return err
		}
		portfolios[rec.Portfolio] = portfolioID
	}

	account := models.Account{
		ClientID:     clientID,
		Number:       rec.AccountNumber,
		PortfolioID:  portfolioID,
		Principal:    rec.Principal,
		TotalDebt:    rec.TotalDebt,
		Product:      rec.Product,
		SubPortfolio: rec.SubPortfolio,
		Campaign:     rec.Campaign,
		WriteOffDate: rec.WriteOffDate,
	}
	return tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_id"}, {Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"portfolio_id", "principal", "total_debt", "product",
				"sub_portfolio", "campaign", "write_off_date", "updated_at",
			}),
		}).
		Create(&account).Error
}

// upsertClient inserta el cliente si el DNI es nuevo; uno existente se
// reutiliza sin modificar su nombre ni dirección.
func upsertClient(tx *gorm.DB, rec ClientRecord) (uint, error) {
	client := models.Client{DNI: rec.DNI, Name: rec.Name, Address: rec.Address}
	if err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dni"}}, DoNothing: true}).
		Create(&client).Error; err != nil {
		return 0, err
	}

	var id uint
	if err := tx.Model(&models.Client{}).Where("dni = ?", rec.DNI).Select("id").Scan(&id).Error; err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("cliente %s no encontrado tras insertar", rec.DNI)
	}
	return id, nil
}

func upsertPortfolio(tx *gorm.DB, name, kind string) (uint, error) {
	if kind == "" {
		kind = models.DefaultPortfolioType
	}
	portfolio := models.Portfolio{Name: name, Type: kind}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&portfolio).Error; err != nil {
		return 0, err
	}

	var id uint
	if err := tx.Model(&models.Portfolio{}).Where("name = ?", name).Select("id").Scan(&id).Error; err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("cartera %s no encontrada tras insertar", name)
	}
	return id, nil
}

func importAdvisors(tx *gorm.DB, cols columns, data [][]string) (Result, error) {
	res := Result{Registros: len(data)}

	for i, row := range data {
		rec := advisorRecord(cols, row)
		if !rec.complete() {
			res.Omitidos++
			continue
		}

		if err := upsertAdvisor(tx, rec); err != nil {
			return Result{}, fmt.Errorf("fila %d: %w", i+2, err)
		}
		res.Procesados++
	}
	return res, nil
}

// upsertAdvisor actualiza solo los campos que la fila trae con valor;
// el nombre de un asesor existente se conserva.
func upsertAdvisor(tx *gorm.DB, rec AdvisorRecord) error {
	advisor := models.Advisor{
		DNI:          rec.DNI,
		Name:         rec.Name,
		Role:         rec.Role,
		Status:       rec.Status,
		HiredAt:      rec.HiredAt,
		TerminatedAt: rec.TerminatedAt,
	}
	if rec.Quota != nil {
		advisor.Quota = *rec.Quota
	}

	var update []string
	if rec.Role != "" {
		update = append(update, "role")
	}
	if rec.Quota != nil {
		update = append(update, "quota")
	}
	if rec.Status != "" {
		update = append(update, "status")
	}
	if rec.HiredAt != nil {
		update = append(update, "hired_at")
	}
	if rec.TerminatedAt != nil {
		update = append(update, "terminated_at")
	}

	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "dni"}}, DoNothing: true}
	if len(update) > 0 {
		conflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "dni"}},
			DoUpdates: clause.AssignmentColumns(append(update, "updated_at")),
		}
	}
	return tx.Clauses(conflict).Create(&advisor).Error
}
