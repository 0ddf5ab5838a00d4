package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/storage"
)

func newInitCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an empty object store",
		Long: "Write config.yaml if missing, then load the configured store and\n" +
			"write it back, creating an empty store on first use.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := s.withEngine(func(e *storage.Engine) error {
				if err := e.Persist(); err != nil {
					return sysError(err)
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "hbnb initialized")
			fmt.Fprintln(out, "  config:", filepath.Join(s.configDir, configFileExt))
			fmt.Fprintln(out, "  store: ", s.cfg.StorePath())
			return nil
		},
	}
}
