package views

import (
	"strings"

	"github.com/gnames/gnuuid"
)

// Checksum returns a content hash of a SQL body. It is a UUIDv5 of the
// text, so any change of the text gives a different value.
func Checksum(sql string) string {
	return gnuuid.New(sql).String()
}

// TrimSQL removes trailing semicolons and white space, so the body can be
// embedded into a CREATE VIEW statement.
func TrimSQL(sql string) string {
	res := strings.TrimSpace(sql)
	for strings.HasSuffix(res, ";") {
		res = strings.TrimSpace(strings.TrimSuffix(res, ";"))
	}
	return res
}
