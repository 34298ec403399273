package specification

import "gorm.io/gorm"

// Specification composes query conditions onto a gorm query. Repositories
// accept any number of them so callers decide the filtering.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
