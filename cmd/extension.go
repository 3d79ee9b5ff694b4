package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment passed to extensions.
const (
	EnvOwner   = "FOLIO_OWNER"
	EnvEnvFile = "FOLIO_ENV_FILE"
	EnvHTML    = "FOLIO_HTML"
)

// RunExtension attempts to find and execute an external invest-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "invest-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = append(os.Environ(),
		EnvOwner+"="+*owner,
		EnvEnvFile+"="+*envFile,
		EnvHTML+"="+strconv.FormatBool(*html),
	)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
