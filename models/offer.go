package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount types for offers
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFlat       = "flat"
)

// Offer is a promotional discount shown on the storefront. The image is
// optional and lives in S3; ImageURL is a presigned URL computed on read.
type Offer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `json:"description"`
	DiscountType  string         `gorm:"not null;default:'percentage'" json:"discount_type"`
	DiscountValue float64        `gorm:"not null" json:"discount_value"`
	ImageS3Key    string         `json:"image_s3_key"`
	ImageURL      string         `gorm:"-" json:"image_url,omitempty"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Offer model
func (Offer) TableName() string {
	return "offers"
}
