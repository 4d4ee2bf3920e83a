// Package main is the production entry point for the Encore player.
//
// Encore keeps a listening session (current song, playback status, volume,
// favorites and playlists) and drives an audio sink from a console:
// - Event-driven communication between the session and the console
// - Dependency injection for testability
// - Session state persisted to SQLite or Fyne preferences
//
// Build:
//
//	go build -o build/encore ./cmd
//
// Run:
//
//	./build/encore --scan ~/Music
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tejashwikalptaru/encore/internal/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "encore",
	Short: "Encore - a console music player",
	Long: `Encore plays a song catalog from the terminal and remembers the last song,
volume, favorites and playlists between runs.`,
	SilenceUsage: true,
	RunE:         runEncore,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.GetVersionInfo().FullString())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaults := app.DefaultConfig()

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "TOML config file")
	flags.String("catalog", "", "TOML catalog file (default is the built-in catalog)")
	flags.String("scan", "", "build the catalog from the audio files under a folder")
	flags.String("media-root", "", "folder catalog sources are resolved against")
	flags.String("store", defaults.Store, "session store (sqlite, preferences, memory)")
	flags.String("store-path", "", "SQLite database file (default is in the XDG data directory)")
	flags.String("sink", defaults.Sink, "media sink (beep, mock)")
	flags.Duration("start-delay", defaults.StartDelay, "pause between loading a song and starting it")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.LogFormat, "log format (text, json)")

	rootCmd.Version = app.GetVersionInfo().String()
	rootCmd.AddCommand(versionCmd)
}

// buildConfig layers the config file over the defaults, then the flags the
// user set over both.
func buildConfig(flags *pflag.FlagSet) (app.Config, error) {
	config := app.DefaultConfig()

	if cfgFile != "" {
		loaded, err := app.LoadConfigFile(cfgFile, config)
		if err != nil {
			return config, err
		}
		config = loaded
	}

	stringFlags := map[string]*string{
		"catalog":    &config.CatalogPath,
		"scan":       &config.ScanDir,
		"media-root": &config.MediaRoot,
		"store":      &config.Store,
		"store-path": &config.StorePath,
		"sink":       &config.Sink,
		"log-level":  &config.LogLevel,
		"log-format": &config.LogFormat,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return config, err
		}
		*target = value
	}

	if flags.Changed("start-delay") {
		delay, err := flags.GetDuration("start-delay")
		if err != nil {
			return config, err
		}
		config.StartDelay = delay
	}

	return config, nil
}

func runEncore(cmd *cobra.Command, _ []string) error {
	config, err := buildConfig(cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the application with dependency injection
	application, err := app.NewApplication(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until quit, EOF or a signal)
	return application.Run(ctx, os.Stdin)
}
