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
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnviews/internal/iodecl"
	"github.com/gnames/gnviews/internal/ioviews"
	"github.com/gnames/gnviews/pkg/config"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
)

// getSyncCmd returns the sync command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSyncCmd() *cobra.Command {
	var (
		manifest string
		enqueue  bool
		prune    bool
	)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update all declared views",
		Long: `Synchronize views declared in the manifest with the database.

This command:
  1. Reads the manifest and SQL files of declared views
  2. Orders declarations so dependencies come first
  3. Skips views whose SQL and options did not change
  4. Replaces views in place where PostgreSQL allows it,
     recreates them otherwise (dependent views are rebuilt)
  5. With --prune, drops managed views that are not declared anymore

Manifest location is taken from views.manifest of config.yaml
unless --manifest is given.

Examples:
  gnviews sync
  gnviews sync --manifest db/views.yaml
  gnviews sync --enqueue --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSync(cmd, manifest, enqueue, prune)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	syncCmd.Flags().StringVarP(&manifest, "manifest", "m", "",
		"path to the views manifest")
	syncCmd.Flags().BoolVarP(&enqueue, "enqueue", "e", false,
		"collect all declarations first and apply them in one pass")
	syncCmd.Flags().BoolVarP(&prune, "prune", "p", false,
		"drop managed views that are not declared anymore")

	return syncCmd
}

func runSync(
	cmd *cobra.Command,
	manifest string,
	enqueue, prune bool,
) error {
	ctx := context.Background()
	start := time.Now()
	runID := xid.New().String()

	var syncOpts []config.Option
	if cmd.Flags().Changed("manifest") {
		syncOpts = append(syncOpts, config.OptViewsManifest(manifest))
	}
	if enqueue {
		syncOpts = append(syncOpts, config.OptViewsMode(views.ModeEnqueue.String()))
	}
	if len(syncOpts) > 0 {
		cfg.Update(syncOpts)
	}

	mode, err := views.ParseMode(cfg.Views.Mode)
	if err != nil {
		return err
	}

	src, err := iodecl.Load(ctx, cfg.Views.Manifest, cfg.JobsNumber)
	if err != nil {
		return err
	}
	decls := src.Declarations()
	slog.Info("Starting sync",
		"run", runID,
		"manifest", cfg.Views.Manifest,
		"views", len(decls),
		"mode", mode.String(),
	)

	s, err := newSession(ctx, ioviews.OptRegistry(src), ioviews.OptMode(mode))
	if err != nil {
		return err
	}
	defer s.close()

	bar := pb.Full.Start(len(decls))
	bar.Set("prefix", "Syncing views: ")
	bar.Set(pb.CleanOnFinish, true)
	for _, d := range decls {
		if err = s.sync.CreateView(ctx, s.pool(), d); err != nil {
			bar.Finish()
			slog.Error("Sync failed", "run", runID, "view", d.Name, "error", err)
			return err
		}
		bar.Increment()
	}
	bar.Finish()

	if mode == views.ModeEnqueue {
		gn.Info("Applying %s queued views",
			humanize.Comma(int64(len(s.sync.Pending()))))
		if err = s.sync.Flush(ctx, s.pool()); err != nil {
			slog.Error("Sync failed", "run", runID, "error", err)
			return err
		}
	}

	if prune {
		dropped, err := s.sync.DropUnregistered(ctx, s.pool())
		if err != nil {
			slog.Error("Prune failed", "run", runID, "error", err)
			return err
		}
		for _, v := range dropped {
			gn.Info("Dropped undeclared view <em>%s</em>", v)
		}
	}

	dur := time.Since(start)
	slog.Info("Sync finished",
		"run", runID,
		"views", len(decls),
		"duration", gnfmt.TimeString(dur.Seconds()),
	)
	gn.Info("Synchronized <em>%s</em> views in %s",
		humanize.Comma(int64(len(decls))), gnfmt.TimeString(dur.Seconds()))
	return nil
}
