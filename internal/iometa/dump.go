package iometa

import (
	"slices"
	"strings"

	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
)

// FormatDump renders records in PostgreSQL COPY text format. Rows are
// sorted by name and refreshed_at is always NULL, so dumps of equal
// declarations are equal byte to byte.
func FormatDump(schemaName, table string, recs []views.Record) (string, error) {
	recs = slices.Clone(recs)
	slices.SortFunc(recs, func(a, b views.Record) int {
		return strings.Compare(a.Name, b.Name)
	})

	var sb strings.Builder
	sb.WriteString("COPY ")
	sb.WriteString(pgx.Identifier{schemaName, table}.Sanitize())
	sb.WriteString(" (name, owner, checksum, options, refreshed_at) FROM stdin;\n")

	for _, r := range recs {
		opts, err := views.MarshalOptions(r.Options)
		if err != nil {
			return "", DecodeError(r.Name, err)
		}
		fields := []string{
			copyEscape(r.Name),
			copyEscape(r.Owner),
			copyEscape(r.Checksum),
			copyEscape(string(opts)),
			`\N`,
		}
		sb.WriteString(strings.Join(fields, "\t"))
		sb.WriteByte('\n')
	}
	sb.WriteString("\\.\n")
	return sb.String(), nil
}

var copyReplacer = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
)

func copyEscape(s string) string {
	return copyReplacer.Replace(s)
}
