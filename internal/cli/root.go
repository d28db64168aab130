// Package cli provides the command-line interface for r3.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/remoteit/remoteit-go/internal/config"
	"github.com/remoteit/remoteit-go/internal/logging"
	"github.com/remoteit/remoteit-go/internal/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	debug   bool

	// Settings from flags, R3_* environment variables and the settings file
	settings *viper.Viper

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	settings = config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "r3",
		Short: "r3 - command-line client for the remote.it API",
		Long: `r3 ` + version.Version + ` - Built: ` + version.BuildTime + `
Manage remote.it device scripts, jobs, devices and organizations.

Requests are signed with an R3 access key. Credentials come from the
R3_ACCESS_KEY_ID / R3_SECRET_ACCESS_KEY environment variables or from a
profile in ~/.remoteit/credentials (see 'r3 configure').`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logger
			logger = logging.NewLogger(cmd.ErrOrStderr())
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			return config.ReadFile(settings, cfgFile)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Settings file (default ~/.remoteit/r3.yaml)")
	flags.StringP("profile", "p", "", "Credentials profile (default \"default\") [R3_PROFILE]")
	flags.String("credentials", "", "Credentials file (default ~/.remoteit/credentials) [R3_CREDENTIALS_FILE]")
	flags.String("api-url", "", "API base URL, for testing against a mock server [R3_API_URL]")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each API request [R3_TIMEOUT]")
	flags.Int("max-retries", 0, "Retries for failed requests [R3_MAX_RETRIES]")
	flags.Float64("rate-limit", 0, "Maximum requests per second, 0 for unlimited [R3_RATE_LIMIT]")
	flags.String("proxy-mode", "", "Proxy mode: no-proxy, system, basic, ntlm [R3_PROXY_MODE]")
	flags.String("proxy-url", "", "Proxy URL for basic and ntlm modes [R3_PROXY_URL]")
	flags.String("no-proxy", "", "Comma-separated hosts and CIDRs that bypass the proxy [R3_NO_PROXY]")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	flags.BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	// BindPFlag only fails on a nil flag; every bound flag is defined above.
	_ = config.BindFlags(settings, flags)

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// newCompletionCmd creates the 'completion' command.
func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate a shell completion script for r3.

Examples:
  source <(r3 completion bash)
  r3 completion zsh > "${fpath[1]}/_r3"
  r3 completion fish | source`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletion(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			// A closed channel yields nil and ends the loop.
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newApplicationTypesCmd())
	rootCmd.AddCommand(newOrgCmd())
	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newProfilesCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSignCmd())
	rootCmd.AddCommand(newOperationsCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}
