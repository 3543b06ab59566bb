// Package watch provides the watch command, which re-matches the table
// whenever the binary is rebuilt.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/archsync"
	"github.com/agentstation/archsync/cmd/application"
	"github.com/agentstation/archsync/cmd/archsync/cmd/match"
	"github.com/agentstation/archsync/internal/cmd/alerts"
	"github.com/agentstation/archsync/internal/cmd/cmdutil"
	"github.com/agentstation/archsync/internal/cmd/emoji"
	"github.com/agentstation/archsync/pkg/constants"
	"github.com/agentstation/archsync/pkg/errors"
	"github.com/agentstation/archsync/pkg/logging"
)

// NewCommand creates the watch command.
func NewCommand(app application.Application) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [binary]",
		Short: "Re-match the table every time the binary changes",
		Long: `Watch matches the binary once, then watches it and matches again
after every rebuild, saving the project each time. It stops on interrupt.`,
		Args:    cobra.MaximumNArgs(1),
		Example: `  archsync watch build/firmware.elf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cmdutil.Binary(app, args)
			if path == "" {
				return errors.NewValidationError("binary", "", "no binary given and none configured")
			}

			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			w := &Watcher{
				Workspace: ws,
				Path:      path,
				Debounce:  debounce,
				Alerts:    cmdutil.Alerts(cmd, app),
				Logger:    app.Logger(),
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", constants.WatchDebounce, "quiet period after a write before matching")
	return cmd
}

// Watcher re-matches a binary into a workspace on every change.
type Watcher struct {
	Workspace archsync.Workspace
	Path      string
	Debounce  time.Duration
	Alerts    *alerts.Writer
	Logger    *zerolog.Logger

	// matched is signalled after every match attempt (tests only)
	matched chan error
}

// Run matches once and then on every change until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.Logger = logging.OrDefault(w.Logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", w.Path, err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: linkers replace the file, which drops a file watch.
	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return errors.WrapIO("watch", dir, err)
	}
	target := filepath.Clean(w.Path)

	w.rematch(ctx)
	_ = w.Alerts.Info(emoji.Watching + " Watching " + w.Path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.Logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Binary changed")
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.rematch(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn().Err(err).Str("path", w.Path).Msg("Watch error")
		}
	}
}

// rematch runs one match. Failures are reported and the watch goes on,
// since a half-written binary fails to parse until the linker finishes.
func (w *Watcher) rematch(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
	defer cancel()

	report, err := match.Run(runCtx, w.Workspace, w.Path, true)
	if err != nil {
		w.Logger.Error().Err(err).Str("path", w.Path).Msg("Match failed")
		_ = w.Alerts.Write(alerts.New(alerts.LevelError, "Match failed: "+err.Error()))
	} else {
		_ = match.Report(w.Alerts, report)
	}
	if w.matched != nil {
		w.matched <- err
	}
}
