package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/observability"
	"github.com/aretw0/quill/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type replaySummary struct {
	Anchor  string `json:"anchor"`
	Frames  int    `json:"frames"`
	Strokes int    `json:"strokes"`
	Points  int    `json:"points"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <trace.yaml>",
	Short: "Replay a recorded input trace into the session store",
	Long: `Loads the stored session for the anchor, steps it with every frame of the
trace, and saves it again. Interrupting the replay still saves.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := getLogger(cmd)
		if err != nil {
			return err
		}
		settings, err := getSettings(cmd)
		if err != nil {
			return err
		}
		src, err := runner.LoadTrace(args[0])
		if err != nil {
			return err
		}

		be, err := getBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		reg := prometheus.NewRegistry()
		metrics := observability.NewMetrics(reg)
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				logger.Info("serving replay metrics", "addr", addr)
				if err := http.ListenAndServe(addr, mux); err != nil {
					logger.Error("metrics server stopped", "err", err)
				}
			}()
		}

		opts := []quill.Option{
			quill.WithStore(be.Store),
			quill.WithPublisher(memory.NewPublisher()),
			quill.WithLogger(logger),
			quill.WithLifecycleHooks(observability.LoggingHooks(logger)),
			quill.WithLifecycleHooks(metrics.Hooks()),
		}
		if anchor, _ := cmd.Flags().GetString("anchor"); anchor != "" {
			opts = append(opts, quill.WithAnchor(anchor))
		}

		pen, err := quill.New(settings, opts...)
		if err != nil {
			return err
		}

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		if err := pen.Load(ctx); err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		r := runner.NewRunner(runner.WithLogger(logger), runner.WithInterval(interval))
		stats, err := r.Run(ctx, pen, src)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("replay failed: %w", err)
		}

		state := pen.Snapshot()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(replaySummary{
			Anchor:  pen.Anchor(),
			Frames:  stats.Frames,
			Strokes: len(state.Strokes),
			Points:  state.PointCount(),
		})
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("anchor", "", "Anchor to bind the session to (default from settings)")
	replayCmd.Flags().Duration("interval", 0, "Wall-clock pacing between frames (0 = as fast as possible)")
	replayCmd.Flags().String("metrics-addr", "", "Expose replay metrics on this address, e.g. :2112")
}
