// Package cli implements the console command-line interface: the
// interactive interpreter plus exec, init and version subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hbnb/internal/console"
	"github.com/mesh-intelligence/hbnb/internal/paths"
	"github.com/mesh-intelligence/hbnb/internal/storage"
	"github.com/mesh-intelligence/hbnb/pkg/store"
	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
}

// session is the state shared by subcommands once configuration is loaded.
type session struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	logger    *slog.Logger
}

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a persistence or environment failure.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// NewRootCmd creates the top-level "console" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:   "console",
		Short: "Command interpreter for the HBnB object store",
		Long: "console manages BaseModel, User, State, City, Amenity, Place and Review\n" +
			"objects. Without a subcommand it reads commands from standard input.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return s.load(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withEngine(func(e *storage.Engine) error {
				in := cmd.InOrStdin()
				c := console.New(e, cmd.OutOrStdout(),
					console.WithInteractive(isTerminal(in)),
					console.WithLogger(s.logger))
				if err := c.Run(in); err != nil {
					return sysError(err)
				}
				return nil
			})
		},
	}

	root.PersistentFlags().StringVar(&s.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/hbnb)")
	root.PersistentFlags().StringVar(&s.flags.dataDir, "data-dir", "", "directory holding the object file (default: current directory)")

	root.AddCommand(newExecCmd(s))
	root.AddCommand(newInitCmd(s))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command against the process streams and exits with
// the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes the command line args and returns the process exit code.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(errOut, "console:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return exitUserError
	}
	return exitSuccess
}

// load resolves directories, reads configuration and installs the logger.
func (s *session) load(errOut io.Writer) error {
	configDir, err := paths.ResolveConfigDir(s.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := loadDotEnv(configDir); err != nil {
		return err
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir, err = paths.ResolveDataDir(s.flags.dataDir, cfg.DataDir); err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", configDir, err)
	}

	level, err := parseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}

	s.configDir = configDir
	s.cfg = cfg
	s.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	s.logger.Debug("configuration loaded", "config_dir", configDir, "backend", cfg.Backend, "store", cfg.StorePath())
	return nil
}

// withEngine opens and loads the configured store, runs fn, and closes the
// store. Corrupt state aborts before fn runs.
func (s *session) withEngine(fn func(e *storage.Engine) error) error {
	e, err := store.OpenEngine(s.cfg, s.logger)
	if err != nil {
		return sysError(err)
	}
	defer e.Close()
	return fn(e)
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
