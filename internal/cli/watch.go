package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/pkg/definition"
	"github.com/goliatone/go-dynform/pkg/form"
)

// watchResult reports the outcome of re-checking one file.
type watchResult struct {
	Path  string
	ID    string
	Slots int
	Err   error
}

func (a *app) watchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-lint definitions in a directory whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("debounce") {
				debounce = a.config.GetDuration(keyDebounce)
			}
			return a.watch(ctx, args[0], debounce, func(res watchResult) {
				if res.Err != nil {
					fmt.Fprintf(a.errOut, "%s: %v\n", res.Path, res.Err)
					return
				}
				fmt.Fprintf(a.out, "%s: %s ok (%d fields)\n", res.Path, res.ID, res.Slots)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "quiet period before a changed file is re-checked")
	return cmd
}

// watch blocks until ctx is done. Every definition file written or created
// under dir is reloaded, linted, and built once it has been quiet for
// debounce, and the outcome passed to report.
func (a *app) watch(ctx context.Context, dir string, debounce time.Duration, report func(watchResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	a.logger.WithField("dir", dir).Info("watching definitions")

	checks := newPendingChecks(debounce)
	defer checks.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, known := definition.FormatFromPath(event.Name); !known {
				continue
			}
			a.logger.WithFields(log.Fields{"file": event.Name, "op": event.Op.String()}).Debug("definition changed")
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				path := filepath.Clean(event.Name)
				checks.schedule(path, func() { report(a.check(ctx, path)) })
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.WithError(err).Warn("watch error")
		}
	}
}

func (a *app) check(ctx context.Context, path string) watchResult {
	def, err := a.loadDefinition(ctx, path)
	if err != nil {
		return watchResult{Path: path, Err: err}
	}
	if err := def.Validate(); err != nil {
		return watchResult{Path: path, ID: def.ID, Err: err}
	}
	state, err := def.Build(form.New(form.WithLogger(a.log())))
	if err != nil {
		return watchResult{Path: path, ID: def.ID, Err: err}
	}
	defer state.Close()
	return watchResult{Path: path, ID: def.ID, Slots: state.Len()}
}

// pendingChecks runs one debounced callback per path. A newer schedule for
// the same path replaces a timer that has not fired yet.
type pendingChecks struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func newPendingChecks(delay time.Duration) *pendingChecks {
	return &pendingChecks{delay: delay, timers: make(map[string]*time.Timer)}
}

func (p *pendingChecks) schedule(path string, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduleLocked(path, fn)
}

func (p *pendingChecks) scheduleLocked(path string, fn func()) {
	if timer, ok := p.timers[path]; ok && timer.Stop() {
		p.wg.Done()
	}
	p.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(p.delay, func() {
		defer p.wg.Done()
		p.mu.Lock()
		// A callback that fired late must not drop its replacement.
		if p.timers[path] == timer {
			delete(p.timers, path)
		}
		p.mu.Unlock()
		fn()
	})
	p.timers[path] = timer
}

// stop cancels timers that have not fired and waits for running callbacks.
func (p *pendingChecks) stop() {
	p.mu.Lock()
	for path, timer := range p.timers {
		if timer.Stop() {
			p.wg.Done()
		}
		delete(p.timers, path)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
