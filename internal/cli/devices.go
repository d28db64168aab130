package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/internal/constants"
	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// newDevicesCmd creates the 'devices' command group.
func newDevicesCmd() *cobra.Command {
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "Devices (list, csv)",
	}

	devicesCmd.AddCommand(newDevicesListCmd())
	devicesCmd.AddCommand(newDevicesCSVCmd())

	return devicesCmd
}

// fetchAllDevices pages through GetDevices until the server reports no more.
func fetchAllDevices(ctx context.Context, apiClient *remoteit.Client, orgID string) (remoteit.DeviceList, error) {
	logger := GetLogger()
	var all remoteit.DeviceList

	for page := 0; page < constants.MaxPaginationPages; page++ {
		data, err := apiClient.GetDevices(ctx, remoteit.GetDevicesOptions{
			OrgID:  orgID,
			Limit:  remoteit.Int(constants.DevicePageSize),
			Offset: remoteit.Int(len(all.Items)),
		})
		if err != nil {
			return all, err
		}
		list := data.Devices()
		all.Total = list.Total
		all.Items = append(all.Items, list.Items...)
		logger.Debug().Int("page", page+1).Int("fetched", len(all.Items)).Int("total", list.Total).Msg("Fetched device page")

		if !list.HasMore || len(list.Items) == 0 {
			return all, nil
		}
	}

	logger.Warn().Int("pages", constants.MaxPaginationPages).Msg("Stopped listing devices at the page limit")
	all.HasMore = true
	return all, nil
}

// newDevicesListCmd creates the 'devices list' command.
func newDevicesListCmd() *cobra.Command {
	var opts remoteit.GetDevicesOptions
	var limit, offset int
	var all, outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Long: `List devices one page at a time, or all of them with --all.

Examples:
  r3 devices list --limit 20
  r3 devices list --limit 20 --offset 20
  r3 devices list --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 || offset < 0 {
				return fmt.Errorf("--limit and --offset must not be negative")
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = remoteit.Int(limit)
			}
			if cmd.Flags().Changed("offset") {
				opts.Offset = remoteit.Int(offset)
			}

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			var devices remoteit.DeviceList
			if all {
				devices, err = fetchAllDevices(GetContext(), apiClient, opts.OrgID)
			} else {
				var data *remoteit.LoginData
				data, err = apiClient.GetDevices(GetContext(), opts)
				if data != nil {
					devices = data.Devices()
				}
			}
			if err != nil {
				return fmt.Errorf("failed to list devices: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, devices)
			}

			if len(devices.Items) == 0 {
				fmt.Fprintln(out, "No devices found")
				return nil
			}

			tw := newTable(out, "ID\tNAME\tSTATE\tSERVICES\tLAST REPORTED")
			for _, d := range devices.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.ID, truncate(d.Name, 40), d.State, len(d.Services), formatTime(d.LastReported))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Showing %d of %d device(s)\n", len(devices.Items), devices.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.OrgID, "org", "", "Organization ID (default: your own account)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Devices per page (default: server default)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of devices to skip")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("all", "offset")

	return cmd
}

// newDevicesCSVCmd creates the 'devices csv' command.
func newDevicesCSVCmd() *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Print a download link for the device list as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}
			data, err := apiClient.GetDevicesCSV(GetContext(), orgID)
			if err != nil {
				return fmt.Errorf("failed to export devices: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), data.DevicesCSV())
			return nil
		},
	}

	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID (default: your own account)")

	return cmd
}
