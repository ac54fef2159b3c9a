package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/quill/internal/logging"
	"github.com/aretw0/quill/pkg/adapters/file"
	"github.com/aretw0/quill/pkg/adapters/redis"
	"github.com/aretw0/quill/pkg/config"
	"github.com/aretw0/quill/pkg/persistence/middleware"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/aretw0/quill/pkg/session"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill is a gesture-driven freehand 3D pen",
	Long: `Quill records freehand strokes from tracked hands and pens.
Recorded input traces can be replayed into a session store, inspected, and served over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding .quill/ and quill.yaml")
	rootCmd.PersistentFlags().String("config", "", "Settings file (default <dir>/quill.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; stores anchors in Redis instead of files")
	rootCmd.PersistentFlags().String("encryption-key", "", "Hex AES-256 key; encrypts stored sessions (env QUILL_ENCRYPTION_KEY)")
}

func getLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func getSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		dir, _ := cmd.Flags().GetString("dir")
		path = filepath.Join(dir, "quill.yaml")
	}
	return config.Load(path)
}

// backend is the store selected by flags, wrapped for encryption and locking.
type backend struct {
	Store ports.BlobStore
	Close func() error
}

func getBackend(cmd *cobra.Command) (backend, error) {
	var (
		store  ports.BlobStore
		locker ports.DistributedLocker
		closer = func() error { return nil }
	)

	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		rs := redis.New(addr, "", 0)
		store, locker, closer = rs, redis.NewLocker(rs.Client(), "quill:"), rs.Close
	} else {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = "."
		}
		store = file.New(filepath.Join(dir, ".quill", "anchors"))
	}

	key, _ := cmd.Flags().GetString("encryption-key")
	if key == "" {
		key = os.Getenv("QUILL_ENCRYPTION_KEY")
	}
	if key != "" {
		raw, err := hex.DecodeString(key)
		if err != nil {
			_ = closer()
			return backend{}, fmt.Errorf("invalid encryption key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})
		if err != nil {
			_ = closer()
			return backend{}, err
		}
		store = mw(store)
	}

	var opts []session.Option
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return backend{
		Store: session.NewManager(store, opts...),
		Close: closer,
	}, nil
}
