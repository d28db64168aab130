package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// newOperationsCmd creates the 'operations' command.
func newOperationsCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "operations [name]",
		Short: "List the GraphQL operations r3 sends",
		Long: `List the GraphQL operations r3 sends, or print one operation's document.

Examples:
  r3 operations
  r3 operations GetJobs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				d, ok := remoteit.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown operation: %s", args[0])
				}
				if outputJSON {
					return printJSON(out, d)
				}
				fmt.Fprintln(out, d.Document)
				return nil
			}

			catalog := remoteit.Catalog()
			if outputJSON {
				return printJSON(out, catalog)
			}
			tw := newTable(out, "NAME\tKIND")
			for _, d := range catalog {
				fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Kind)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}
