package importer

import (
	"context"
	"errors"
	"testing"

	"cobranzas/internal/database"
	"cobranzas/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var clientHeader = []string{"DNI", "NOMBRE Y APELLIDOS", "NUMERO DE CUENTA", "CARTERA"}

func TestImportClientsThreeRows(t *testing.T) {
	db := newTestDB(t)
	rows := [][]string{
		clientHeader,
		{"11111111", "Ana Torres", "C-001", "CARTERA A"},
		{"22222222", "Luis Paz", "C-002", "CARTERA A"},
		{"33333333", "Rosa Diaz", "C-003", "CARTERA A"},
	}

	res, err := Import(context.Background(), db, KindClients, rows, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Registros: 3, Procesados: 3, Omitidos: 0}, res)

	assert.EqualValues(t, 3, count(t, db, &models.Client{}))
	assert.EqualValues(t, 3, count(t, db, &models.Account{}))
	assert.EqualValues(t, 1, count(t, db, &models.Portfolio{}))

	var portfolio models.Portfolio
	require.NoError(t, db.First(&portfolio).Error)
	assert.Equal(t, models.DefaultPortfolioType, portfolio.Type)

	var audit models.AuditLog
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, "import", audit.Entity)
	assert.Equal(t, "clientes", audit.Action)
}

func TestImportClientsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	header := append(append([]string{}, clientHeader...), "CAPITAL", "FECHA CASTIGO", "TIPO CARTERA")
	first := [][]string{
		header,
		{"11111111", "Ana Torres", "C-001", "CARTERA A", "1000", "44927", "VIGENTE"},
		{"11111111", "Ana Torres", "C-002", "CARTERA B", "500", "", ""},
	}

	_, err := Import(context.Background(), db, KindClients, first, nil)
	require.NoError(t, err)

	second := [][]string{
		header,
		{"11111111", "Otro Nombre", "C-001", "CARTERA B", "1200.50", "", "OTRO"},
		{"11111111", "Ana Torres", "C-002", "CARTERA B", "500", "", ""},
	}
	res, err := Import(context.Background(), db, KindClients, second, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Procesados)

	assert.EqualValues(t, 1, count(t, db, &models.Client{}))
	assert.EqualValues(t, 2, count(t, db, &models.Account{}))
	assert.EqualValues(t, 2, count(t, db, &models.Portfolio{}))

	var client models.Client
	require.NoError(t, db.First(&client).Error)
	assert.Equal(t, "Ana Torres", client.Name)

	var account models.Account
	require.NoError(t, db.Preload("Portfolio").Where("number = ?", "C-001").First(&account).Error)
	assert.Equal(t, "CARTERA B", account.Portfolio.Name)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(account.Principal), "principal %s", account.Principal)
	assert.Nil(t, account.WriteOffDate)

	var kinds []models.Portfolio
	require.NoError(t, db.Order("name").Find(&kinds).Error)
	assert.Equal(t, "VIGENTE", kinds[0].Type)
	assert.Equal(t, models.DefaultPortfolioType, kinds[1].Type)
}

func TestImportClientsCountsSkippedRows(t *testing.T) {
	db := newTestDB(t)
	rows := [][]string{
		clientHeader,
		{"11111111", "Ana Torres", "C-001", "CARTERA A"},
		{"22222222", "Luis Paz", "", "CARTERA A"},
		{"33333333", "Rosa Diaz", "C-003", ""},
		{"", "Sin Documento", "C-004", "CARTERA A"},
	}

	res, err := Import(context.Background(), db, KindClients, rows, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Registros: 4, Procesados: 1, Omitidos: 3}, res)
	assert.EqualValues(t, 1, count(t, db, &models.Client{}))
}

func TestImportClientsRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_account", func(tx *gorm.DB) {
		if acc, ok := tx.Statement.Dest.(*models.Account); ok && acc.Number == "FAIL" {
			_ = tx.AddError(errors.New("forced failure"))
		}
	}))

	rows := [][]string{
		clientHeader,
		{"11111111", "Ana Torres", "C-001", "CARTERA A"},
		{"22222222", "Luis Paz", "FAIL", "CARTERA A"},
	}

	_, err := Import(context.Background(), db, KindClients, rows, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fila 3")
	assert.Contains(t, err.Error(), "forced failure")

	assert.EqualValues(t, 0, count(t, db, &models.Client{}))
	assert.EqualValues(t, 0, count(t, db, &models.Account{}))
	assert.EqualValues(t, 0, count(t, db, &models.Portfolio{}))
	assert.EqualValues(t, 0, count(t, db, &models.AuditLog{}))
}

func TestImportMissingHeaderTouchesNothing(t *testing.T) {
	db := newTestDB(t)
	rows := [][]string{
		{"DNI", "NOMBRES"},
		{"11111111", "Ana Torres"},
	}

	_, err := Import(context.Background(), db, KindClients, rows, nil)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{"NUMERO DE CUENTA"}, headerErr.Missing)
	assert.EqualValues(t, 0, count(t, db, &models.AuditLog{}))
}

func TestImportClientsWithoutPortfolioColumnSkipsRows(t *testing.T) {
	db := newTestDB(t)
	rows := [][]string{
		{"DNI", "NOMBRE Y APELLIDOS", "NUMERO DE CUENTA"},
		{"11111111", "Ana Torres", "C-001"},
		{"22222222", "Luis Paz", "C-002"},
	}

	res, err := Import(context.Background(), db, KindClients, rows, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Registros: 2, Procesados: 0, Omitidos: 2}, res)
	assert.EqualValues(t, 0, count(t, db, &models.Client{}))
	assert.EqualValues(t, 0, count(t, db, &models.Account{}))
}

func TestImportEmptySheet(t *testing.T) {
	db := newTestDB(t)
	_, err := Import(context.Background(), db, KindClients, [][]string{clientHeader}, nil)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestImportAdvisorsKeepsNameAndUnsetFields(t *testing.T) {
	db := newTestDB(t)
	header := []string{"DNI", "NOMBRE Y APELLIDOS", "CARGO", "META", "ESTADO", "FECHA INGRESO"}

	_, err := Import(context.Background(), db, KindAdvisors, [][]string{
		header,
		{"44444444", "Carla Ruiz", "GESTOR", "5000", "ACTIVO", "2022-05-02"},
		{"55555555", "Jorge Vega", "", "", "", ""},
	}, nil)
	require.NoError(t, err)

	uid := uint(1)
	res, err := Import(context.Background(), db, KindAdvisors, [][]string{
		header,
		{"44444444", "Nombre Nuevo", "SUPERVISOR", "", "", ""},
		{"55555555", "Jorge Vega", "", "", "", ""},
		{"", "", "", "", "", "x"},
	}, &uid)
	require.NoError(t, err)
	assert.Equal(t, Result{Registros: 3, Procesados: 2, Omitidos: 1}, res)

	var advisor models.Advisor
	require.NoError(t, db.Where("dni = ?", "44444444").First(&advisor).Error)
	assert.Equal(t, "Carla Ruiz", advisor.Name)
	assert.Equal(t, "SUPERVISOR", advisor.Role)
	assert.Equal(t, "ACTIVO", advisor.Status)
	assert.True(t, decimal.NewFromInt(5000).Equal(advisor.Quota), "quota %s", advisor.Quota)
	require.NotNil(t, advisor.HiredAt)
	assert.Equal(t, 2022, advisor.HiredAt.Year())

	assert.EqualValues(t, 2, count(t, db, &models.Advisor{}))

	var audit models.AuditLog
	require.NoError(t, db.Order("id DESC").First(&audit).Error)
	require.NotNil(t, audit.UserID)
	assert.Equal(t, uid, *audit.UserID)
}
