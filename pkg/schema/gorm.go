package schema

// AllModels returns all schema models for GORM migrator.
func AllModels() []any {
	return []any{
		&ManagedView{},
	}
}

// Column names of ManagedView. The metadata store upgrades older tables
// by adding missing columns one by one.
const (
	ColumnOwner       = "owner"
	ColumnOptions     = "options"
	ColumnRefreshedAt = "refreshed_at"
)

// FieldOf returns the Go field name GORM uses for a ManagedView column.
func FieldOf(column string) string {
	switch column {
	case ColumnOwner:
		return "Owner"
	case ColumnOptions:
		return "Options"
	case ColumnRefreshedAt:
		return "RefreshedAt"
	}
	return ""
}
