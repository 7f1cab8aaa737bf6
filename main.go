// Package main provides the gnviews CLI application.
// gnviews keeps declared PostgreSQL views and materialized views in sync
// with their definitions.
package main

import "github.com/gnames/gnviews/cmd"

func main() {
	cmd.Execute()
}
