package specification

import "gorm.io/gorm"

// Specification narrows a query before it hits the database.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
