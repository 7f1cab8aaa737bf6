package iometa

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
)

// NotConnectedError is returned when the store is opened without a
// connection pool.
func NotConnectedError() error {
	msg := "Metadata store opened without database connection"
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

<em>How to fix:</em>
  1. Ensure database operator is connected
  2. Check database configuration`

	return &gn.Error{
		Code: errcode.MetaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// CreateError is returned when the metadata table or its schema cannot
// be created.
func CreateError(err error) error {
	msg := `Cannot create metadata table

<em>How to fix:</em>
  Check that the database user has CREATE permission on the schema.`
	return &gn.Error{
		Code: errcode.MetaCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to create metadata table: %w", err),
	}
}

// ResetError is returned when a legacy metadata table cannot be
// replaced.
func ResetError(err error) error {
	msg := "Cannot reset legacy metadata table and views it tracks"
	return &gn.Error{
		Code: errcode.MetaResetError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to reset legacy metadata: %w", err),
	}
}

// UpgradeError is returned when a column cannot be added to the
// metadata table.
func UpgradeError(version string, err error) error {
	msg := "Cannot upgrade metadata table from <em>%s</em> layout"
	return &gn.Error{
		Code: errcode.MetaUpgradeError,
		Msg:  msg,
		Vars: []any{version},
		Err:  fmt.Errorf("failed to upgrade metadata from %s: %w", version, err),
	}
}

// DecodeError is returned when stored options cannot be decoded.
func DecodeError(name string, err error) error {
	msg := "Cannot decode options of view <em>%s</em>"
	return &gn.Error{
		Code: errcode.MetaDecodeError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("failed to decode options of %s: %w", name, err),
	}
}
