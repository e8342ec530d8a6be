package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies a row-level FOR UPDATE lock on databases that
// support it. SQLite serializes writers at the database level, so the
// clause is omitted there (it is not valid SQLite syntax).
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
