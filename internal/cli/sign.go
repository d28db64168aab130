package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/pkg/auth"
	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// newSignCmd creates the 'sign' command.
func newSignCmd() *cobra.Command {
	var method, path, contentType, date string
	var showString bool

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print signed request headers",
		Long: `Compute the Date and Authorization headers for a request, using the
resolved credentials. Useful for calling the API from curl or other tools.

Examples:
  r3 sign
  r3 sign --method GET --path /apv/v27/user
  r3 sign --date "Tue, 01 Jan 2025 00:00:00 GMT" --show-string`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			creds, err := loadCredentials(s)
			if err != nil {
				return err
			}

			if date == "" {
				date = auth.Date()
			} else if _, err := time.Parse(auth.DateFormat, date); err != nil {
				GetLogger().Warn().Str("date", date).Msg("Date does not match the expected layout; the API will reject it")
			}

			out := cmd.OutOrStdout()
			if showString {
				fmt.Fprintf(out, "%s\n\n", auth.SigningString(method, path, date, contentType))
			}
			fmt.Fprintf(out, "Date: %s\n", date)
			fmt.Fprintf(out, "Content-Type: %s\n", contentType)
			fmt.Fprintf(out, "Authorization: %s\n", auth.BuildAuthHeader(auth.Request{
				KeyID:       creds.AccessKeyID(),
				Key:         creds.Key(),
				ContentType: contentType,
				Method:      method,
				Path:        path,
				Date:        date,
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "POST", "HTTP method")
	cmd.Flags().StringVar(&path, "path", remoteit.GraphQLPath, "Request path")
	cmd.Flags().StringVar(&contentType, "content-type", remoteit.ContentTypeJSON, "Content-Type of the request")
	cmd.Flags().StringVar(&date, "date", "", "Date header value (default now)")
	cmd.Flags().BoolVar(&showString, "show-string", false, "Also print the signing string")

	return cmd
}
