package config

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

// SchemaMigration records an applied migration step
type SchemaMigration struct {
	ID        string    `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the SchemaMigration model
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migration is a single versioned migration step. Steps must be additive
// and safe to apply to a database that already holds rows.
type Migration struct {
	ID  string
	Run func(db *gorm.DB) error
}

// migrations is the ordered list of schema changes. Never reorder or edit
// an entry once it has shipped; append a new step instead.
var migrations = []Migration{
	{
		ID: "001_baseline",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&models.User{},
				&models.Category{},
				&models.Product{},
				&models.Order{},
				&models.OrderItem{},
				&models.Notification{},
				&models.WishlistItem{},
				&models.Banner{},
				&models.Setting{},
			)
		},
	},
	{
		ID: "002_return_cancellation_system",
		Run: func(db *gorm.DB) error {
			// Adds the returns and order_cancellations tables. AutoMigrate
			// is additive for existing tables: new columns arrive nullable
			// or with defaults, historical rows keep working.
			return db.AutoMigrate(
				&models.Return{},
				&models.OrderCancellation{},
			)
		},
	},
	{
		ID: "003_order_delivered_at",
		Run: func(db *gorm.DB) error {
			// Nullable column; historical delivered orders have no anchor
			// and are treated as outside the return window.
			return db.AutoMigrate(&models.Order{})
		},
	},
	{
		ID: "004_offers",
		Run: func(db *gorm.DB) error {
			return db.AutoMigrate(&models.Offer{})
		},
	},
}

// RunMigrations applies all unapplied migration steps in order. Each step
// is recorded in schema_migrations so reruns are no-ops.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied int64
		if err := db.Model(&SchemaMigration{}).Where("id = ?", m.ID).Count(&applied).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.ID, err)
		}
		if applied > 0 {
			continue
		}

		log.Printf("Applying migration %s", m.ID)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{ID: m.ID, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", m.ID, err)
		}
	}

	return nil
}
