package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remoteit/remoteit-go/internal/constants"
	"github.com/remoteit/remoteit-go/pkg/remoteit"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Device script and asset files (list, upload, delete)",
		Long:  `Commands for managing the scripts and assets stored in your remote.it account.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())
	filesCmd.AddCommand(newFilesDeleteVersionCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files",
		Long: `List the scripts and assets in your account.

Examples:
  r3 files list
  r3 files list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			data, err := apiClient.GetFiles(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, data.Files)
			}

			if len(data.Files) == 0 {
				fmt.Fprintln(out, "No files found")
				return nil
			}

			tw := newTable(out, "ID\tNAME\tTYPE\tVERSION\tUPDATED")
			for _, f := range data.Files {
				kind := "asset"
				if f.Executable {
					kind = "script"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, truncate(f.Name, 40), kind, latestVersion(f), formatTime(f.Updated))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// latestVersion returns the highest version number of f, or "-".
func latestVersion(f remoteit.File) string {
	latest := 0
	for _, v := range f.Versions.Items {
		if v.Version > latest {
			latest = v.Version
		}
	}
	if latest == 0 {
		return "-"
	}
	return fmt.Sprintf("v%d", latest)
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var name, shortDesc, longDesc string
	var executable, outputJSON bool

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a script or asset",
		Long: `Upload a local file. Uploading a name that already exists creates a new version.

Examples:
  # Upload a script, named after the file
  r3 files upload ./reboot.sh --executable

  # Upload an asset under a different name
  r3 files upload ./config.json --name device-config --short-desc "Fleet config"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			path := args[0]
			if name == "" {
				name = filepath.Base(path)
			}

			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(GetContext(), constants.UploadContextTimeout)
			defer cancel()

			resp, err := apiClient.UploadFile(ctx, remoteit.FileUpload{
				Name:       name,
				Path:       path,
				Executable: executable,
				ShortDesc:  shortDesc,
				LongDesc:   longDesc,
			})
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", path, err)
			}
			logger.Info().Str("file_id", resp.FileID).Int("version", resp.Version).Msg("Upload complete")

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "Uploaded %s as %s version %d\n", path, resp.Name, resp.Version)
			fmt.Fprintf(out, "  File ID:         %s\n", resp.FileID)
			fmt.Fprintf(out, "  File version ID: %s\n", resp.FileVersionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name in remote.it (default: file name)")
	cmd.Flags().BoolVar(&executable, "executable", false, "Upload as an executable script rather than an asset")
	cmd.Flags().StringVar(&shortDesc, "short-desc", "", "Short description")
	cmd.Flags().StringVar(&longDesc, "long-desc", "", "Long description")
	cmd.Flags().BoolVarP(&outputJSON, "json", "J", false, "Output as JSON")

	return cmd
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <file-id> [file-id...]",
		Short: "Delete files and all their versions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}

			var failed []string
			for _, id := range args {
				if _, err := apiClient.DeleteFile(GetContext(), id); err != nil {
					GetLogger().Error().Err(err).Str("file_id", id).Msg("Delete failed")
					failed = append(failed, id)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted file %s\n", id)
			}
			if len(failed) > 0 {
				return fmt.Errorf("failed to delete %d file(s): %s", len(failed), strings.Join(failed, ", "))
			}
			return nil
		},
	}
	return cmd
}

// newFilesDeleteVersionCmd creates the 'files delete-version' command.
func newFilesDeleteVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-version <file-version-id>",
		Short: "Delete a single version of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := getAPIClient()
			if err != nil {
				return err
			}
			if _, err := apiClient.DeleteFileVersion(GetContext(), args[0]); err != nil {
				return fmt.Errorf("failed to delete file version %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted file version %s\n", args[0])
			return nil
		},
	}
	return cmd
}
