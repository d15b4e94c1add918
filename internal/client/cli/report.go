package cli

import (
	"errors"
	"fmt"
	"io"
)

// Report writes err and then each cause in its chain, one per line.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "caused by: %s\n", cause)
	}
}
