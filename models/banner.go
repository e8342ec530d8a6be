package models

import (
	"time"

	"gorm.io/gorm"
)

// Banner is a promotional banner shown on the storefront. The image lives
// in S3; ImageURL is a presigned URL computed on read.
type Banner struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	ImageS3Key string         `gorm:"not null" json:"image_s3_key"`
	ImageURL   string         `gorm:"-" json:"image_url,omitempty"`
	LinkURL    string         `json:"link_url"`
	SortOrder  int            `gorm:"not null;default:0" json:"sort_order"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Banner model
func (Banner) TableName() string {
	return "banners"
}
