package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// HandleError reports err on w and returns the process exit code.
// Doctor results are already printed, so only their exit code is returned.
func HandleError(w io.Writer, err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	code := errors.ExitUser
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	if errors.Is(err, errDoctorWarnings) || errors.Is(err, errDoctorErrors) {
		return code
	}

	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
	if exitErr != nil && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
	return code
}
