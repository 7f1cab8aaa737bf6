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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getDropCmd returns the drop command.
func getDropCmd() *cobra.Command {
	dropCmd := &cobra.Command{
		Use:   "drop NAME",
		Short: "Drop a managed view",
		Long: `Drop a view or a materialized view and forget its record.

The command fails if other views that are not managed by gnviews
depend on the view.

Examples:
  gnviews drop accounts_v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDrop(args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return dropCmd
}

func runDrop(name string) error {
	ctx := context.Background()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err = s.sync.DropView(ctx, s.pool(), name); err != nil {
		return err
	}
	gn.Info("Dropped view <em>%s</em>", name)
	return nil
}

// getDropAllCmd returns the drop-all command.
func getDropAllCmd() *cobra.Command {
	var force bool

	dropAllCmd := &cobra.Command{
		Use:   "drop-all",
		Short: "Drop all managed views",
		Long: `Drop every view managed by gnviews, dependent views first.

Views that are not managed by gnviews are not touched. If such a view
depends on a managed one, the command fails and nothing is dropped.

Use --force to skip confirmation.

Examples:
  gnviews drop-all
  gnviews drop-all --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDropAll(force)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	dropAllCmd.Flags().BoolVarP(&force, "force", "f",
		false, "drop views without confirmation")

	return dropAllCmd
}

func runDropAll(force bool) error {
	ctx := context.Background()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	names, err := s.meta.Names(ctx, s.pool())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		gn.Info("There are no managed views. No changes made.")
		return nil
	}

	if !force {
		gn.Warn("\nWarning: %s managed views will be dropped.",
			humanize.Comma(int64(len(names))))
		fmt.Print("\nDo you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}

	if err = s.sync.DropAllViews(ctx, s.pool()); err != nil {
		return err
	}
	gn.Info("Dropped <em>%s</em> managed views",
		humanize.Comma(int64(len(names))))
	return nil
}
