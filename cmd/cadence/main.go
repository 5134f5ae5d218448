package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cadencelearn/cadence/internal/profile"
	"github.com/cadencelearn/cadence/internal/version"
	"github.com/cadencelearn/cadence/learning/metrics"
	"github.com/cadencelearn/cadence/learning/observability/logging"
	"github.com/cadencelearn/cadence/store"
	"github.com/cadencelearn/cadence/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: `Adaptive learning analytics for spaced-repetition study: cognitive load, forgetting curves, difficulty calibration, and personalization.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Load .env for direct binary execution only; service deployments
		// pass environment through the process manager.
		if !isRunningAsService() {
			_ = godotenv.Load()
		}
		logging.Setup(viper.GetString("mode"))
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile, storeInstance, err := openStore(context.Background())
		if err != nil {
			slog.Error("failed to open store", "error", err)
			return
		}
		defer storeInstance.Close()

		exporter := metrics.NewExporter(metrics.DefaultConfig())

		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", viper.GetString("addr"), viper.GetInt("port")),
			Handler: mux,
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := make(chan os.Signal, 1)
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
			cancel()
		}()

		printGreetings(instanceProfile, srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
			return
		}
		<-ctx.Done()
	},
}

// openStore builds the profile from flags/env, opens the database driver,
// and runs migrations. Shared by every subcommand.
func openStore(ctx context.Context) (*profile.Profile, *store.Store, error) {
	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, nil, err
	}

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, nil, err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, nil, err
	}
	return instanceProfile, storeInstance, nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "bind address for the metrics endpoint")
	rootCmd.PersistentFlags().Int("port", 28090, "port for the metrics endpoint")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	for _, key := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("cadence")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(p *profile.Profile, addr string) {
	fmt.Printf("Cadence %s started successfully!\n", p.Version)
	if p.IsDev() && p.DSN != "" {
		fmt.Fprintf(os.Stderr, "Database: %s\n", p.DSN)
	}
	fmt.Printf("Data directory: %s\n", p.Data)
	fmt.Printf("Database driver: %s\n", p.Driver)
	fmt.Printf("Mode: %s\n", p.Mode)
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	fmt.Printf("Metrics endpoint: http://%s/metrics\n", addr)
}

// isRunningAsService detects whether the process runs under systemd.
func isRunningAsService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
