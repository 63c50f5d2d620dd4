package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"syntra-pos/internal/database/models"
)

// Partial unique indexes backing the "at most one OPEN" invariants.
var openStateIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_registers_open ON cash_registers (status) WHERE status = 'OPEN'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_shifts_open_operator ON shifts (opened_by) WHERE status = 'OPEN'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_table_sessions_open ON table_sessions (table_id) WHERE status = 'OPEN'`,
}

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open DB")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping DB")
	}

	return db, nil
}

func MigratePOSDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Combo{},
		&models.ComboItem{},
		&models.ModifierGroup{},
		&models.Modifier{},
		&models.ProductModifierGroup{},
		&models.PaymentMethod{},
		&models.Table{},
		&models.TableSession{},
		&models.CashRegister{},
		&models.Shift{},
		&models.CashMovement{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Payment{},
		&models.OrderEvent{},
		&models.StockMovement{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	for _, stmt := range openStateIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "create index: %s", stmt)
		}
	}

	return SeedPaymentMethods(db)
}

// SeedPaymentMethods inserts the default tenders, leaving existing rows untouched.
func SeedPaymentMethods(db *gorm.DB) error {
	for _, m := range models.DefaultPaymentMethods() {
		m.ID = uuid.New()
		if err := db.Where(models.PaymentMethod{Code: m.Code}).FirstOrCreate(&m).Error; err != nil {
			return errors.Wrapf(err, "seed payment method %s", m.Code)
		}
	}
	log.Info("payment methods seeded")
	return nil
}
