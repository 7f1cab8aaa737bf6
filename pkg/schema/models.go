// Package schema holds GORM models of tables owned by gnviews.
package schema

import (
	"time"

	"github.com/gnames/gnviews/pkg/config"
)

// ManagedView is a row of the metadata table. There is one row for every
// view or materialized view created by gnviews.
type ManagedView struct {
	// Name of the relation.
	Name string `gorm:"type:text;primaryKey"`

	// Owner is the identifier of the declaring entity.
	Owner string `gorm:"type:text;not null;uniqueIndex"`

	// Checksum of the SQL body the view was created from.
	Checksum string `gorm:"type:text;not null"`

	// Options are JSON encoded views.Options.
	Options string `gorm:"type:json;not null;default:'{}'"`

	// RefreshedAt is the UTC time of the last refresh.
	RefreshedAt *time.Time `gorm:"type:timestamp"`
}

// TableName overrides the default GORM table name.
func (ManagedView) TableName() string {
	return config.MetaTable
}
