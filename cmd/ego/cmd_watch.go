package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

// watchCmd re-runs the apply pipeline whenever a registry file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-apply artifacts whenever the policy registry changes",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&applyTarget, "target", "t", ".", "target repository to write artifacts into")
	watchCmd.Flags().StringSliceVar(&applyScopes, "scope", []string{"global"}, "scope precedence, lowest first")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before re-applying after a change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the registry root and every subdirectory (fsnotify is not
	// recursive).
	if err := filepath.WalkDir(reg.Root(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("watch registry: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// First pass before waiting for changes.
	if err := runApply(cmd, nil); err != nil {
		logger.Warn("initial apply failed", zap.Error(err))
	}

	fmt.Println("Watching", reg.Root(), "for changes (Ctrl-C to stop)")

	var timer *time.Timer
	timerCh := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("registry changed", zap.String("path", event.Name))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case timerCh <- struct{}{}:
				default:
				}
			})

		case <-timerCh:
			if err := runApply(cmd, nil); err != nil {
				logger.Warn("apply failed", zap.Error(err))
				fmt.Fprintln(os.Stderr, "apply failed:", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-sigCh:
			fmt.Println("\nStopping watch.")
			return nil
		}
	}
}
