package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"antimony"
	"antimony/internal/crawler"
	"antimony/internal/metrics"

	"github.com/spf13/cobra"
)

var watchFlags outputFlags

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Reconvert model files below DIR whenever they change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := watchFlags.resolve(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w, err := crawler.NewWatcher(crawler.NewCrawler(), crawler.WatcherConfig{Root: args[0], Logger: logger})
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		fmt.Printf("👀 Watching %s (Ctrl-C to stop)\n", args[0])

		reg := metrics.NewRegistry()
		if metricsPath != "" {
			defer reg.WriteTextfile(metricsPath)
		}
		watchLoop(ctx, w.Events(), opts, reg, func() *antimony.Session { return newSession(reg) })
		return nil
	},
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics in text format to this file on exit")
}

// watchLoop reconverts every created or modified file until events is
// closed or ctx is done.
func watchLoop(ctx context.Context, events <-chan crawler.WatchEvent, opts convertOptions, reg *metrics.Registry, session func() *antimony.Session) {
	watched := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Operation == crawler.OpDelete {
				delete(watched, ev.Path)
				reg.SetFilesWatched(len(watched))
				logger.Info("model file removed", "path", ev.Path)
				continue
			}
			watched[ev.Path] = true
			reg.SetFilesWatched(len(watched))

			out, err := convertFile(session(), ev.Path, opts)
			reg.RecordReconversion(err)
			if err != nil {
				logger.Warn("reconversion failed", "path", ev.Path, "error", err)
				continue
			}
			logger.Info("reconverted", "path", ev.Path, "output", out, "operation", ev.Operation)
		}
	}
}
