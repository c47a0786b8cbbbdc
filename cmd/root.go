package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/gotrakt/config"
	"github.com/s0up4200/gotrakt/trakt"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	appVersion   = "dev"
	appBuildTime = "unknown"

	// Command flags
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gotrakt",
	Short: "A CLI for the Trakt.tv API",
	Long: `gotrakt is a CLI for the Trakt.tv API. It can search the catalog, manage
your watchlist, collection, history and ratings, list saved playback
positions, and check in to whatever you are watching right now.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion wires the build metadata into the root command and into the
// version the updater and checkin endpoints report.
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of formatted output")

	rootCmd.AddCommand(testCmd)
}

// initializeApp loads the configuration, sets up the logger and installs
// the library defaults.
func initializeApp(cmd *cobra.Command, args []string) error {
	// Self-updating must keep working when no config file exists yet
	if cmd.Name() == "update" {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	trakt.Configure(trakt.Options{
		BaseURL:         cfg.Trakt.BaseURL,
		SiteURL:         cfg.Trakt.SiteURL,
		ClientID:        cfg.Trakt.ClientID,
		ClientSecret:    cfg.Trakt.ClientSecret,
		RedirectURI:     cfg.Trakt.RedirectURI,
		ApplicationID:   cfg.Trakt.ApplicationID,
		AuthMethod:      trakt.AuthMethod(cfg.Trakt.AuthMethod),
		CredentialsFile: cfg.Trakt.CredentialsFile,
		Logger:          logger,
	})

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only when writing to a real terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the Trakt API",
	Long:  `Test that the stored credentials are accepted by the Trakt API.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	client, err := trakt.DefaultClient()
	if err != nil {
		return err
	}

	auth := client.Auth()
	fmt.Printf("Testing connection to %s...\n", client.BaseURL())
	fmt.Printf("- Auth method: %s\n", auth.Method())

	if !auth.Credentials().HasToken() {
		fmt.Println("✗ No tokens stored. Run 'gotrakt login' first.")
		return nil
	}

	switch {
	case !auth.Expired():
		fmt.Println("- Token status: valid")
	case auth.CanRefresh():
		fmt.Println("- Token status: expired, will refresh")
	default:
		fmt.Println("✗ Token expired and no refresh token stored. Run 'gotrakt login' again.")
		return nil
	}

	ctx := context.Background()
	entries, err := client.Watchlist(ctx, trakt.MediaTypeMovies, "")
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}

	fmt.Println("✓ Connection successful!")
	fmt.Printf("- Watchlist movies: %d\n", len(entries))

	return nil
}
