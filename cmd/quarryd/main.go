// Command quarryd runs the SQL server: a line-framed TCP listener plus an
// admin HTTP surface over one storage engine, on-disk by default or
// in-memory (spec §6), grounded on
// original_source/src/bin/server.rs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quarrydb/quarry/internal/config"
	"github.com/quarrydb/quarry/internal/logging"
	"github.com/quarrydb/quarry/internal/mvcc"
	"github.com/quarrydb/quarry/internal/server"
	"github.com/quarrydb/quarry/internal/sql/engine"
	"github.com/quarrydb/quarry/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "quarryd",
		Short: "Run the quarry SQL server",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Re-apply every flag set on the command line on top of the
			// loaded file, so flags win over the config file.
			overrides := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
			loaded.BindFlags(overrides)
			var setErr error
			cmd.Flags().Visit(func(f *pflag.Flag) {
				if o := overrides.Lookup(f.Name); o != nil && setErr == nil {
					setErr = o.Value.Set(f.Value.String())
				}
			})
			if setErr != nil {
				return setErr
			}
			return run(loaded)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cfg.BindFlags(cmd.Flags())
	return cmd
}

func run(cfg config.Config) error {
	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(cfg.LogLevel))

	logger, err := logging.NewServerLogger(level, logging.FileConfig{Path: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logger.Sync()

	var storageEngine storage.Engine
	var compactor server.Compactor // left nil for the memory engine
	switch cfg.Engine {
	case "memory":
		storageEngine = storage.NewMemoryEngine()
	case "disk", "":
		fs := afero.NewOsFs()
		if err := fs.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return err
		}
		disk, err := storage.OpenDiskEngine(fs, filepath.Join(cfg.DataDir, "quarry.db"), storage.DiskOptions{
			Logger:          logger,
			CacheSize:       cfg.CacheSize,
			CompactCompress: cfg.CompressOnCompact,
		})
		if err != nil {
			return err
		}
		defer disk.Close()
		storageEngine = disk
		compactor = disk
	default:
		return fmt.Errorf("config: unknown engine %q, want \"disk\" or \"memory\"", cfg.Engine)
	}

	logger.Info("compaction is manual only, see POST /compact",
		zap.Stringer("compact_threshold", cfg.CompactThreshold))

	dbEngine := engine.NewKVEngine(mvcc.New(storageEngine, logger), logger)
	srv := server.New(dbEngine, compactor, cfg.ListenAddr, cfg.AdminAddr, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}
