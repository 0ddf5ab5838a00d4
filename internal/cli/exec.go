package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/console"
	"github.com/mesh-intelligence/hbnb/internal/storage"
)

func newExecCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <line>...",
		Short: "Run command lines without entering the interpreter",
		Long: "Each argument is executed as one interpreter line, in order.\n" +
			"Example: console exec \"create State\" \"count State\"",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withEngine(func(e *storage.Engine) error {
				c := console.New(e, cmd.OutOrStdout(), console.WithLogger(s.logger))
				for _, line := range args {
					quit, err := c.Exec(line)
					if err != nil {
						return sysError(err)
					}
					if quit {
						break
					}
				}
				return nil
			})
		},
	}
}
