/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnviews/internal/iofs"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/spf13/cobra"
)

// getListCmd returns the list command.
func getListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List managed views",
		Long: `Print managed views with their owners, kinds and refresh times.

Examples:
  gnviews list`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runList(cmd.OutOrStdout())
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return listCmd
}

func runList(w io.Writer) error {
	ctx := context.Background()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	recs, err := s.meta.List(ctx, s.pool())
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		gn.Info("There are no managed views")
		return nil
	}
	_, err = io.WriteString(w, formatList(recs))
	return err
}

// formatList renders records as an aligned table.
func formatList(recs []views.Record) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOWNER\tKIND\tREFRESHED")
	for _, r := range recs {
		kind := "view"
		refreshed := "-"
		if r.Options.Materialized {
			kind = "materialized"
			refreshed = "never"
		}
		if r.RefreshedAt != nil {
			refreshed = humanize.Time(*r.RefreshedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Owner, kind, refreshed)
	}
	_ = w.Flush()
	return sb.String()
}

// getDumpCmd returns the dump command.
func getDumpCmd() *cobra.Command {
	var output string

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump records of managed views",
		Long: `Write records of managed views in PostgreSQL COPY format.

Rows are sorted by name and refresh times are left out, so the output
changes only when declarations change. Append it to a structure dump
to restore records together with the views.

Examples:
  gnviews dump
  gnviews dump -o db/managed_views.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDump(output)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	dumpCmd.Flags().StringVarP(&output, "output", "o", "",
		"output file (default STDOUT)")

	return dumpCmd
}

func runDump(output string) error {
	ctx := context.Background()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	w, closeFn, err := iofs.Output(output)
	if err != nil {
		return err
	}
	if err = s.meta.Export(ctx, s.pool(), w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}
