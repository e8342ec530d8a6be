package models

import (
	"time"
)

// Setting types
const (
	SettingBusinessProfile = "business_profile"
	SettingGST             = "gst"
	SettingBranding        = "branding"
)

// Setting is a singleton-per-type configuration record (business profile,
// GST, branding). Read-mostly.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"uniqueIndex;not null" json:"type"`
	Value     JSONMap   `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}
