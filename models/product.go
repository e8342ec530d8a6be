package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products in the catalog
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Product represents a catalog product. Products referenced by order items
// are deactivated, never hard-deleted.
type Product struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"not null" json:"name"`
	SKU               string         `gorm:"uniqueIndex;not null" json:"sku"`
	Description       string         `json:"description"`
	CategoryID        *uint          `gorm:"index" json:"category_id"`
	Category          *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	StockQty          int            `gorm:"not null;default:0;check:stock_qty >= 0" json:"stock_qty"`
	LowStockThreshold int            `gorm:"not null;default:5" json:"low_stock_threshold"`
	CostPrice         float64        `gorm:"not null;default:0" json:"cost_price"`
	SellingPrice      float64        `gorm:"not null" json:"selling_price"`
	ImageS3Key        *string        `json:"image_s3_key"`
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
