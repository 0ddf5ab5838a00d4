// Package console implements the line-oriented command interpreter. Each
// line is parsed in canonical ("update User 1234 name Bob") or call form
// ("User.update(1234, name, Bob)"), validated in a fixed order, and
// dispatched against a storage engine.
package console

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Prompt is written before each line when the console is interactive.
const Prompt = "(hbnb) "

// User-facing messages.
const (
	msgClassMissing    = "** class name missing **"
	msgIDMissing       = "** instance id missing **"
	msgClassUnknown    = "** class doesn't exist **"
	msgNoInstance      = "** no instance found **"
	msgAttrMissing     = "** attribute name missing **"
	msgValueMissing    = "** value missing **"
	msgNotSimple       = "** only 'simple' attributes can be updated: string, integer, and float **"
	msgProtectedFormat = "** cannot update '%s' attribute **"
	msgInvalidFormat   = "** invalid value for '%s' attribute type **"
	msgUnknownFormat   = "*** Unknown syntax: %s"
)

// Engine is the registry the console operates on. *storage.Engine
// satisfies it.
type Engine interface {
	All(variants ...types.Variant) []types.Model
	Get(v types.Variant, id string) (types.Model, error)
	Count(tag string) int
	New(v types.Variant) (types.Model, error)
	Unregister(m types.Model)
	Save(m types.Model) error
	Persist() error
}

// Console reads command lines and writes their results.
type Console struct {
	engine      Engine
	out         io.Writer
	interactive bool
	logger      *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithInteractive controls whether the prompt is written before each line.
func WithInteractive(interactive bool) Option {
	return func(c *Console) { c.interactive = interactive }
}

// WithLogger sets the console logger. A nil logger uses slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) { c.logger = logger }
}

// New creates a console writing to out.
func New(engine Engine, out io.Writer, opts ...Option) *Console {
	c := &Console{engine: engine, out: out}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run executes lines from in until quit, EOF, or end of input. Only
// persistence failures and read errors are returned; every other problem is
// reported on the output and the loop continues. Lines have no length
// limit.
func (c *Console) Run(in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		if c.interactive {
			fmt.Fprint(c.out, Prompt)
		}
		line, readErr := r.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return readErr
		}
		if line == "" && readErr == io.EOF {
			if c.interactive {
				fmt.Fprintln(c.out)
			}
			return nil
		}

		quit, err := c.Exec(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return err
		}
		if quit || readErr == io.EOF {
			return nil
		}
	}
}

// Exec runs a single line. It reports whether the line asked the console
// to terminate.
func (c *Console) Exec(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	tokens, err := parseLine(line)
	if err != nil {
		c.printf(msgUnknownFormat, line)
		return false, nil
	}

	name, args := tokens[0], tokens[1:]
	cmd, ok := commands[name]
	if !ok {
		c.printf(msgUnknownFormat, line)
		return false, nil
	}

	c.logger.Debug("dispatch", "command", name, "args", len(args))
	if cmd.quit {
		return true, nil
	}
	return false, cmd.run(c, args)
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format+"\n", a...)
}
