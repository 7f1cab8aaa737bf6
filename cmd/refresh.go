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

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/config"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/spf13/cobra"
)

// getRefreshCmd returns the refresh command.
func getRefreshCmd() *cobra.Command {
	var concurrently string

	refreshCmd := &cobra.Command{
		Use:   "refresh NAME",
		Short: "Refresh a materialized view",
		Long: `Refresh a managed materialized view and record the refresh time.

--concurrently accepts:
  never   plain refresh, locks the view for reading
  always  concurrent refresh, needs a unique index and data
  auto    concurrent refresh when it is possible (default)

The default comes from views.refresh of config.yaml.

Examples:
  gnviews refresh recent_mv
  gnviews refresh recent_mv --concurrently never`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRefresh(cmd, args[0], concurrently)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	refreshCmd.Flags().StringVarP(&concurrently, "concurrently", "c", "",
		"never, always or auto")

	return refreshCmd
}

func runRefresh(cmd *cobra.Command, name, concurrently string) error {
	ctx := context.Background()

	if cmd.Flags().Changed("concurrently") {
		cfg.Update([]config.Option{config.OptViewsRefresh(concurrently)})
	}
	mode, err := views.ParseRefreshMode(cfg.Views.Refresh)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err = s.sync.Refresh(ctx, s.pool(), name, mode); err != nil {
		return err
	}
	gn.Info("Refreshed <em>%s</em>", name)
	return nil
}

// getPopulateCmd returns the populate command.
func getPopulateCmd() *cobra.Command {
	populateCmd := &cobra.Command{
		Use:   "populate NAME",
		Short: "Populate a view and its dependencies",
		Long: `Make sure a view and all managed views it depends on have data.

Materialized views that were created but never refreshed are refreshed,
dependencies first. Populated views are left alone.

Examples:
  gnviews populate recent_mv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runPopulate(args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return populateCmd
}

func runPopulate(name string) error {
	ctx := context.Background()
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err = s.sync.EnsurePopulated(ctx, s.pool(), name); err != nil {
		return err
	}
	gn.Info("View <em>%s</em> is populated", name)
	return nil
}
