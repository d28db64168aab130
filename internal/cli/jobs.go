package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// newJobsCmd creates the 'jobs' command group.
func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Script jobs (start, cancel, list)",
		Long:  `Commands for running scripts on devices and tracking the resulting jobs.`,
	}

	jobsCmd.AddCommand(newJobsStartCmd())
	jobsCmd.AddCommand(newJobsCancelCmd())
	jobsCmd.AddCommand(newJobsListCmd())

	return jobsCmd
}

// parseArguments turns name=value pairs into job arguments.
func parseArguments(pairs []string) ([]remoteit.Argument, error) {
	args := make([]remoteit.Argument, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q: expected name=value", pair)
		}
		args = append(args, remoteit.Argument{Name: name, Value: value})
	}
	return args, nil
}

// parseStatuses validates job status names, case-insensitively.
func parseStatuses(names []string) ([]remoteit.JobStatus, error) {
	statuses := make([]remoteit.JobStatus, 0, len(names))
	for _, name := range names {
		st, ok := remoteit.ParseJobStatus(strings.ToUpper(name))
		if !ok {
			return nil, fmt.Errorf("invalid job status %q (valid: %s)", name, validStatuses())
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func validStatuses() string {
	names := make([]string, len(remoteit.JobStatuses))
	for i, st := range remoteit.JobStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// newJobsStartCmd creates the 'jobs start' command.
func newJobsStartCmd() *cobra.Command {
	var fileID string
	var deviceIDs, arguments []string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run a script on one or more devices",
		Long: `Start a job that runs a script on the given devices.

Examples:
  r3 jobs start --file-id 1f2e... --device-id 80:00:... --device-id 80:00:...
  r3 jobs start --file-id 1f2e... --device-id 80:00:... --arg target=prod --arg verbose=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobArgs, err := parseArguments(arguments)
			if err != nil {
				return err
			}

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.StartJob(GetContext(), remoteit.StartJobInput{
				FileID:    fileID,
				DeviceIDs: deviceIDs,
				Arguments: jobArgs,
			})
			if err != nil {
				return fmt.Errorf("failed to start job: %w", err)
			}

			GetLogger().Info().Str("job_id", data.StartJob).Int("devices", len(deviceIDs)).Msg("Job started")
			fmt.Fprintln(cmd.OutOrStdout(), data.StartJob)
			return nil
		},
	}

	cmd.Flags().StringVar(&fileID, "file-id", "", "Script file ID (required)")
	cmd.Flags().StringSliceVar(&deviceIDs, "device-id", nil, "Device ID to run on (repeatable, required)")
	cmd.Flags().StringArrayVar(&arguments, "arg", nil, "Script argument as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("file-id")
	_ = cmd.MarkFlagRequired("device-id")

	return cmd
}

// newJobsCancelCmd creates the 'jobs cancel' command.
func newJobsCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a waiting or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}
			if _, err := apiClient.CancelJob(GetContext(), args[0]); err != nil {
				return fmt.Errorf("failed to cancel job %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
			return nil
		},
	}
	return cmd
}

// newJobsListCmd creates the 'jobs list' command.
func newJobsListCmd() *cobra.Command {
	var opts remoteit.GetJobsOptions
	var limit int
	var statuses []string
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long: `List jobs, newest first.

Examples:
  r3 jobs list --limit 10
  r3 jobs list --status failed --status cancelled
  r3 jobs list --job-id 5c1a... --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", limit)
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = remoteit.Int(limit)
			}
			parsed, err := parseStatuses(statuses)
			if err != nil {
				return err
			}
			opts.Statuses = parsed

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.GetJobs(GetContext(), opts)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			jobs := data.Jobs()

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, jobs)
			}

			if len(jobs.Items) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}

			tw := newTable(out, "ID\tSTATUS\tFILE\tDEVICES\tCREATED")
			for _, j := range jobs.Items {
				file := "-"
				if j.File != nil {
					file = truncate(j.File.Name, 30)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", j.ID, j.Status, file, len(j.JobDevices.Items), formatTime(j.Created))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if jobs.HasMore {
				fmt.Fprintln(out, "(more jobs available; raise --limit)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.OrgID, "org", "", "Organization ID (default: your own account)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of jobs (default: server default)")
	cmd.Flags().StringSliceVar(&opts.JobIDs, "job-id", nil, "Only these job IDs (repeatable)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only jobs with these statuses (repeatable): "+validStatuses())
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}
