// Command boolog is the command-line front end of the boolog client core.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/boolog/internal/errs"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main wires the command tree and maps failures to exit codes.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode: 2 bad input, 3 identity/permission, 4 not found, 1 anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errs.ErrValidation):
		return 2
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrUnauthorized),
		errors.Is(err, errs.ErrForbidden),
		errors.Is(err, errs.ErrRateLimited),
		errors.Is(err, errs.ErrDuplicateIdentity):
		return 3
	case errors.Is(err, errs.ErrNotFound):
		return 4
	default:
		return 1
	}
}
