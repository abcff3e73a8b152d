package commands

import (
	"fmt"
	"uclasoc/lib/serviceutil"
	"uclasoc/services/catalog"

	"github.com/spf13/cobra"
)

var quiet *bool
var humanReadable *bool
var csvExport *bool
var quietCSV *bool

func init() {
	quiet = classesCmd.Flags().BoolP("quiet", "q", false, "Just list course subject, number and title.")
	humanReadable = classesCmd.Flags().BoolP("human-readable", "h", false, "Keep the portal's human readable field values.")
	csvExport = classesCmd.Flags().Bool("csv", false, "Export results to a CSV file.")
	quietCSV = classesCmd.Flags().Bool("quiet-csv", false, "Suppress terminal output when exporting to CSV.")
	// -h is taken by --human-readable, so the help flag is registered
	// without a shorthand before cobra installs its default
	classesCmd.Flags().Bool("help", false, "Show help for classes.")

	rootCmd.AddCommand(classesCmd)
}

var classesCmd = &cobra.Command{
	Use:   "classes <term> subject-area <subject area>",
	Short: "Search for classes offered in a term.",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		term := args[0]
		if args[1] != "subject-area" {
			serviceutil.Fatal(
				"unknown search criteria",
				fmt.Errorf("expected subject-area, got %q", args[1]),
			)
		}

		mode := catalog.ModeHacker
		if *humanReadable {
			mode = catalog.ModePlain
		}

		service := catalog.NewService(newFetcher())
		err := service.Subject(cmd.Context(), catalog.SubjectOptions{
			Term:     term,
			Subject:  args[2],
			Details:  !*quiet,
			Mode:     mode,
			CSV:      *csvExport,
			QuietCSV: *quietCSV,
		})
		if err != nil {
			serviceutil.Fatal("failed to search subject area", err)
		}
	},
}
