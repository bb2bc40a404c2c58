package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/appcfg/internal/doctor"
	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/paths"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair fixable problems, then check again")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the configuration file.

Checks that the file exists, is UTF-8 encoded, parses as TOML, has every
required section with the right shape, uses a known log level, and is not
world-readable while holding credentials. The file is inspected as it is on
disk; doctor never creates it.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	PreRunE:     validateDoctorFlags,
	RunE:        runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}

	if count > 1 {
		return errors.NewUserError(
			errors.New("flags --json, --quiet, and --verbose are mutually exclusive"),
			"Pick one output mode")
	}
	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner(doctor.DefaultChecks(resolvedConfigPath(), paths.ExampleFile())...)
	report := runner.Run()

	w := cmd.OutOrStdout()
	if doctorFix {
		fixes := runner.Fix()
		if !doctorQuiet && !doctorJSON {
			outputFixes(w, fixes)
		}
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	// Determine exit code based on results
	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputFixes(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(w, "%s fixed %s: %s\n", color.GreenString("✓"), f.Path, f.Description)
			continue
		}
		fmt.Fprintf(w, "%s could not fix %s: %s\n", color.RedString("✗"), f.Path, f.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	// In normal mode, show only errors and warnings
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
		if showAll {
			for k, v := range result.Details {
				fmt.Fprintf(w, "  %s: %v\n", k, v)
			}
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")
