package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchDebounce collapses the burst of events an editor emits on save.
const watchDebounce = 200 * time.Millisecond

// NewWatchCmd creates the watch subcommand. It runs the story once, then runs
// it again every time the story file changes, until interrupted.
func NewWatchCmd(reader StoryReader, catalog CatalogSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "watch <story-file>",
		Short:        "Re-run a story each time its file changes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("type")
			nested, _ := cmd.Flags().GetBool("nested")
			path := filepath.Clean(args[0])

			typ, err := lookupType(catalog, target)
			if err != nil {
				return err
			}
			eng := newEngine(cmd)
			rerun := func() {
				data, err := reader.ReadStory(path)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "ERROR %s: %s\n", typ.Name(), sanitizeText(err.Error()))
					return
				}
				st, err := loadStory(path, data)
				switch {
				case err != nil:
				case nested:
					err = eng.RunStoryNested(st, typ)
				default:
					err = eng.RunStory(st, typ)
				}
				printRunOutput(cmd.OutOrStdout(), newRunOutput(typ.Name(), err))
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer watcher.Close()
			// Editors often replace the file on save, so watch its directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rerun()
			watchLoop(ctx, loggerFrom(cmd), watcher.Events, watcher.Errors, path, watchDebounce, rerun)
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "Registered target type to run the story against")
	cmd.Flags().Bool("nested", false, "Search nested types when the target declares no matching Given")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// storyChanged reports whether event alters the file at path.
func storyChanged(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// watchLoop calls rerun once per debounced burst of changes to path. It
// returns when ctx is done or either channel closes.
func watchLoop(ctx context.Context, logger *zap.Logger, events <-chan fsnotify.Event, errs <-chan error, path string, debounce time.Duration, rerun func()) {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if storyChanged(event, path) {
				logger.Debug("Story file changed", zap.String("path", path), zap.Stringer("op", event.Op))
				pending = time.After(debounce)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("Watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			rerun()
		}
	}
}
