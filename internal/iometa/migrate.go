package iometa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnames/gnviews/pkg/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SchemaVersion is a known layout of the metadata table.
type SchemaVersion int

const (
	// SchemaAbsent means there is no metadata table.
	SchemaAbsent SchemaVersion = iota
	// SchemaLegacy has no owner column. It cannot be upgraded, views it
	// tracks are dropped and the table is created from scratch.
	SchemaLegacy
	// SchemaOwner has owner, but no options column.
	SchemaOwner
	// SchemaOptions has options, but no refreshed_at column.
	SchemaOptions
	// SchemaCurrent is the layout of schema.ManagedView.
	SchemaCurrent
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaAbsent:
		return "absent"
	case SchemaLegacy:
		return "legacy"
	case SchemaOwner:
		return "owner"
	case SchemaOptions:
		return "options"
	case SchemaCurrent:
		return "current"
	}
	return fmt.Sprintf("SchemaVersion(%d)", int(v))
}

func openGORM(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB, nil
}

// inspectVersion finds the layout of the metadata table.
func inspectVersion(m gorm.Migrator) SchemaVersion {
	model := &schema.ManagedView{}
	switch {
	case !m.HasTable(model):
		return SchemaAbsent
	case !m.HasColumn(model, schema.ColumnOwner):
		return SchemaLegacy
	case !m.HasColumn(model, schema.ColumnOptions):
		return SchemaOwner
	case !m.HasColumn(model, schema.ColumnRefreshedAt):
		return SchemaOptions
	}
	return SchemaCurrent
}

// migrate brings the metadata table to the current layout one step at a
// time.
func migrate(gormDB *gorm.DB, schemaName string) error {
	model := &schema.ManagedView{}
	v := inspectVersion(gormDB.Migrator())
	for v != SchemaCurrent {
		var next SchemaVersion
		var err error

		switch v {
		case SchemaAbsent:
			err = gormDB.Migrator().CreateTable(schema.AllModels()...)
			if err != nil {
				return CreateError(err)
			}
			next = SchemaCurrent
		case SchemaLegacy:
			if err = reset(gormDB, schemaName); err != nil {
				return ResetError(err)
			}
			next = SchemaAbsent
		case SchemaOwner:
			err = gormDB.Migrator().AddColumn(model,
				schema.FieldOf(schema.ColumnOptions))
			if err != nil {
				return UpgradeError(v.String(), err)
			}
			next = SchemaOptions
		case SchemaOptions:
			err = gormDB.Migrator().AddColumn(model,
				schema.FieldOf(schema.ColumnRefreshedAt))
			if err != nil {
				return UpgradeError(v.String(), err)
			}
			next = SchemaCurrent
		default:
			return UpgradeError(v.String(),
				fmt.Errorf("unknown metadata schema version"))
		}

		slog.Info("Migrated metadata table",
			"table", model.TableName(),
			"from", v.String(),
			"to", next.String(),
		)
		v = next
	}
	return nil
}

// reset drops every view the legacy table knows about together with the
// table itself. Everything happens in one transaction.
func reset(gormDB *gorm.DB, schemaName string) error {
	model := &schema.ManagedView{}
	return gormDB.Transaction(func(tx *gorm.DB) error {
		var names []string
		err := tx.Table(model.TableName()).Pluck("name", &names).Error
		if err != nil {
			return err
		}

		for _, name := range names {
			slog.Warn("Dropping view tracked by legacy metadata table",
				"view", name)
			q := "DROP VIEW IF EXISTS " +
				pgx.Identifier{schemaName, name}.Sanitize() + " CASCADE"
			if err = tx.Exec(q).Error; err != nil {
				return err
			}
		}

		return tx.Migrator().DropTable(model)
	})
}

// ensureSchema creates the schema of managed views if it is missing.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool, schemaName string) error {
	q := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schemaName}.Sanitize()
	if _, err := pool.Exec(ctx, q); err != nil {
		return CreateError(err)
	}
	return nil
}
