package completion_helper

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete prints the flags of the current command, skipping the
// ones already on the command line, so shells can complete them.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	w := cmd.Root().Writer
	for _, f := range cmd.Flags {
		names := f.Names()
		if len(names) > 0 && cmd.IsSet(names[0]) {
			continue
		}
		for _, name := range names {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(w, "-"+name)
			} else {
				_, _ = fmt.Fprintln(w, "--"+name)
			}
		}
	}
}
