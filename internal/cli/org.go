package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newApplicationTypesCmd creates the 'application-types' command.
func newApplicationTypesCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:     "application-types",
		Aliases: []string{"app-types"},
		Short:   "List the service types known to remote.it",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.GetApplicationTypes(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list application types: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, data.ApplicationTypes)
			}

			tw := newTable(out, "ID\tNAME\tPORT\tPROTOCOL\tDESCRIPTION")
			for _, a := range data.ApplicationTypes {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", a.ID, a.Name, a.Port, a.Protocol, truncate(a.Description, 50))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// newOrgCmd creates the 'org' command group.
func newOrgCmd() *cobra.Command {
	orgCmd := &cobra.Command{
		Use:   "org",
		Short: "Organizations (owned, memberships)",
	}

	orgCmd.AddCommand(newOrgOwnedCmd())
	orgCmd.AddCommand(newOrgMembershipsCmd())

	return orgCmd
}

// newOrgOwnedCmd creates the 'org owned' command.
func newOrgOwnedCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "owned",
		Short: "Show the organization you own",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.GetOwnedOrganization(GetContext())
			if err != nil {
				return fmt.Errorf("failed to get organization: %w", err)
			}
			org := data.Login.Organization

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, org)
			}
			if org == nil {
				fmt.Fprintln(out, "You do not own an organization")
				return nil
			}
			fmt.Fprintf(out, "ID:      %s\n", org.ID)
			fmt.Fprintf(out, "Name:    %s\n", org.Name)
			if org.Domain != "" {
				fmt.Fprintf(out, "Domain:  %s\n", org.Domain)
			}
			fmt.Fprintf(out, "Created: %s\n", formatTime(org.Created))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// newOrgMembershipsCmd creates the 'org memberships' command.
func newOrgMembershipsCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "memberships",
		Short: "List the organizations you belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.GetOrganizationSelfMembership(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list memberships: %w", err)
			}
			memberships := data.Login.Membership

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, memberships)
			}
			if len(memberships) == 0 {
				fmt.Fprintln(out, "No organization memberships")
				return nil
			}

			tw := newTable(out, "ORG ID\tNAME\tROLE\tJOINED")
			for _, m := range memberships {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Organization.ID, truncate(m.Organization.Name, 40), m.Role, formatTime(m.Created))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}
