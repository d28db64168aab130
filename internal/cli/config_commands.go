package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/internal/config"
	"github.com/remoteit/remoteit-go/internal/constants"
	rhttp "github.com/remoteit/remoteit-go/internal/http"
	"github.com/remoteit/remoteit-go/pkg/credentials"
	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// loadProfilesForUpdate loads the credentials file, or starts an empty set
// when it does not exist yet.
func loadProfilesForUpdate(path string) (*credentials.Profiles, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return credentials.NewProfiles(), nil
	}
	return credentials.Load(credentials.LoadOptions{Path: path})
}

// newConfigureCmd creates the 'configure' command.
func newConfigureCmd() *cobra.Command {
	var accessKeyID string
	var force bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save an access key to a credentials profile",
		Long: `Interactively store an R3 access key in ~/.remoteit/credentials.

Create access keys in the remote.it web portal under Account > Access Keys.
The secret is read without echo when run in a terminal.

Examples:
  r3 configure
  r3 configure --profile work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			s, err := loadSettings()
			if err != nil {
				return err
			}

			profiles, err := loadProfilesForUpdate(s.CredentialsFile)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if _, err := profiles.Profile(s.Profile); err == nil && !force {
				overwrite, err := p.confirm(fmt.Sprintf("Profile %q exists. Overwrite?", s.Profile))
				if err != nil {
					return err
				}
				if !overwrite {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed")
					return nil
				}
			}

			if accessKeyID == "" {
				if accessKeyID, err = p.line("R3 access key ID", ""); err != nil {
					return err
				}
			}
			secret, err := p.secret("R3 secret access key")
			if err != nil {
				return err
			}

			creds, err := credentials.New(accessKeyID, secret)
			if err != nil {
				return err
			}
			profiles.Set(s.Profile, creds)

			if err := profiles.Save(s.CredentialsFile); err != nil {
				return err
			}
			logger.Info().Str("path", s.CredentialsFile).Str("profile", s.Profile).Msg("Credentials saved")

			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q to %s\n", s.Profile, s.CredentialsFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&accessKeyID, "access-key-id", "", "Access key ID (prompted when omitted)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing profile without asking")

	return cmd
}

// newProfilesCmd creates the 'profiles' command.
func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles in the credentials file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			profiles, err := credentials.Load(credentials.LoadOptions{Path: s.CredentialsFile})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if profiles.IsEmpty() {
				fmt.Fprintf(out, "No profiles in %s\n", s.CredentialsFile)
				return nil
			}
			for _, name := range profiles.Names() {
				marker := " "
				if name == s.Profile {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
	return cmd
}

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect r3 settings",
		Long: `Settings are resolved in this order (highest first):
  1. Command-line flags (--profile, --api-url, ...)
  2. Environment variables (R3_PROFILE, R3_API_URL, ...)
  3. Settings file (~/.remoteit/r3.yaml or --config)
  4. Defaults`,
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())
	configCmd.AddCommand(newConfigTestCmd())

	return configCmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			apiURL := s.APIURL
			if apiURL == "" {
				apiURL = remoteit.BaseURL
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "profile:          %s\n", s.Profile)
			fmt.Fprintf(out, "credentials_file: %s\n", s.CredentialsFile)
			fmt.Fprintf(out, "api_url:          %s\n", apiURL)
			fmt.Fprintf(out, "timeout:          %s\n", s.Timeout)
			fmt.Fprintf(out, "max_retries:      %d\n", s.MaxRetries)
			if s.RateLimit > 0 {
				fmt.Fprintf(out, "rate_limit:       %g/s\n", s.RateLimit)
			}
			fmt.Fprintf(out, "proxy_mode:       %s\n", s.ProxyMode)
			if s.ProxyURL != "" {
				proxyURL, err := s.ParsedProxyURL()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "proxy_url:        %s\n", proxyURL.Redacted())
			}
			if s.NoProxy != "" {
				fmt.Fprintf(out, "no_proxy:         %s\n", s.NoProxy)
			}

			if creds, source, err := config.ResolveCredentials(s); err == nil {
				fmt.Fprintf(out, "access_key_id:    %s (%s)\n", creds.AccessKeyID(), source)
			} else {
				fmt.Fprintf(out, "access_key_id:    <none> (%v)\n", err)
			}
			return nil
		},
	}
	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show settings and credentials file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			settingsPath := cfgFile
			if settingsPath == "" {
				settingsPath = config.DefaultSettingsPath()
			}

			out := cmd.OutOrStdout()
			for _, f := range []struct{ label, path string }{
				{"Settings:   ", settingsPath},
				{"Credentials:", s.CredentialsFile},
			} {
				status := "missing"
				if info, err := os.Stat(f.path); err == nil {
					status = fmt.Sprintf("%d bytes, modified %s", info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(out, "%s %s (%s)\n", f.label, f.path, status)
			}
			return nil
		},
	}
	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity and credentials",
		Long: `Reach the API through the configured proxy, then make one signed call.

Use this to verify your access key and network connectivity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			s, err := loadSettings()
			if err != nil {
				return err
			}
			creds, err := loadCredentials(s)
			if err != nil {
				return err
			}

			apiURL := s.APIURL
			if apiURL == "" {
				apiURL = remoteit.BaseURL
			}
			fmt.Fprintf(out, "API URL: %s\n", apiURL)

			httpClient, err := rhttp.NewClient(s, logger.Zerolog())
			if err != nil {
				return err
			}
			if err := rhttp.Warmup(GetContext(), httpClient, apiURL); err != nil {
				fmt.Fprintln(out, "✗ Network FAILED")
				return fmt.Errorf("connection test failed: %w", err)
			}
			fmt.Fprintln(out, "✓ Network reachable")

			apiClient, err := newAPIClient(s, creds)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(GetContext(), constants.APIContextTimeout)
			defer cancel()

			data, err := apiClient.GetOrganizationSelfMembership(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Authentication FAILED")
				return fmt.Errorf("connection test failed: %w", err)
			}

			fmt.Fprintln(out, "✓ Authentication SUCCESSFUL")
			if data.Login.Email != "" {
				fmt.Fprintf(out, "  Signed in as: %s\n", data.Login.Email)
			}
			return nil
		},
	}
	return cmd
}
