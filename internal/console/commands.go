package console

import (
	"sort"
	"strings"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// command is one interpreter verb. run returns only persistence errors.
type command struct {
	run  func(c *Console, args []string) error
	quit bool
	help string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"create":  {run: (*Console).create, help: "Creates a new instance of a class, saves it and prints its id.\nUsage: create <class>"},
		"show":    {run: (*Console).show, help: "Prints the string representation of an instance.\nUsage: show <class> <id>"},
		"destroy": {run: (*Console).destroy, help: "Deletes an instance and saves the change.\nUsage: destroy <class> <id>"},
		"all":     {run: (*Console).all, help: "Prints every instance, or every instance of a class.\nUsage: all [<class>]"},
		"update":  {run: (*Console).update, help: "Updates one simple attribute of an instance and saves it.\nUsage: update <class> <id> <attribute> \"<value>\""},
		"count":   {run: (*Console).count, help: "Prints the number of instances of a class.\nUsage: count <class>"},
		"help":    {run: (*Console).help, help: "List available commands with \"help\" or detailed help with \"help <command>\"."},
		"quit":    {quit: true, help: "Quit command to exit the program."},
		"EOF":     {quit: true, help: "End Of File command to exit the program."},
	}
}

// resolve checks the class and id arguments shared by show and destroy and
// returns the addressed model, or nil after printing why there is none.
func (c *Console) resolve(args []string) types.Model {
	if len(args) == 0 {
		c.println(msgClassMissing)
		return nil
	}
	if len(args) == 1 {
		c.println(msgIDMissing)
		return nil
	}
	v, err := types.ParseVariant(args[0])
	if err != nil {
		c.println(msgClassUnknown)
		return nil
	}
	m, err := c.engine.Get(v, args[1])
	if err != nil {
		c.println(msgNoInstance)
		return nil
	}
	return m
}

func (c *Console) create(args []string) error {
	if len(args) == 0 {
		c.println(msgClassMissing)
		return nil
	}
	v, err := types.ParseVariant(args[0])
	if err != nil {
		c.println(msgClassUnknown)
		return nil
	}
	m, err := c.engine.New(v)
	if err != nil {
		return err
	}
	if err := c.engine.Persist(); err != nil {
		return err
	}
	c.println(m.Base().ID)
	return nil
}

func (c *Console) show(args []string) error {
	if m := c.resolve(args); m != nil {
		c.println(types.Describe(m))
	}
	return nil
}

func (c *Console) destroy(args []string) error {
	m := c.resolve(args)
	if m == nil {
		return nil
	}
	c.engine.Unregister(m)
	if err := c.engine.Persist(); err != nil {
		return err
	}
	c.printf("Instance %s deleted.", types.Key(m))
	return nil
}

func (c *Console) all(args []string) error {
	var filter []types.Variant
	if len(args) > 0 {
		v, err := types.ParseVariant(args[0])
		if err != nil {
			c.println(msgClassUnknown)
			return nil
		}
		filter = append(filter, v)
	}
	for _, m := range c.engine.All(filter...) {
		c.println(types.Describe(m))
	}
	return nil
}

func (c *Console) update(args []string) error {
	switch len(args) {
	case 0:
		c.println(msgClassMissing)
		return nil
	case 1:
		c.println(msgIDMissing)
		return nil
	case 2:
		c.println(msgAttrMissing)
		return nil
	case 3:
		c.println(msgValueMissing)
		return nil
	}

	v, err := types.ParseVariant(args[0])
	if err != nil {
		c.println(msgClassUnknown)
		return nil
	}
	m, err := c.engine.Get(v, args[1])
	if err != nil {
		c.println(msgNoInstance)
		return nil
	}

	name, raw := args[2], args[3]
	if types.IsReserved(name) {
		c.printf(msgProtectedFormat, name)
		return nil
	}

	var val types.Value
	if kind, ok := types.FieldKind(m, name); ok {
		if !kind.Scalar() {
			c.println(msgNotSimple)
			return nil
		}
		if val, err = types.ParseValue(kind, raw); err != nil {
			c.printf(msgInvalidFormat, name)
			return nil
		}
	} else {
		val = types.InferValue(raw)
	}

	if err := types.Assign(m, name, val); err != nil {
		c.printf(msgInvalidFormat, name)
		return nil
	}
	if err := c.engine.Save(m); err != nil {
		return err
	}
	c.printf("Update successful for %s: %s.", types.Key(m), name)
	return nil
}

func (c *Console) count(args []string) error {
	if len(args) == 0 {
		c.println(msgClassMissing)
		return nil
	}
	c.println(c.engine.Count(args[0]))
	return nil
}

func (c *Console) help(args []string) error {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			c.printf("*** No help on %s", args[0])
			return nil
		}
		c.println(cmd.help)
		return nil
	}
	c.println()
	c.println("Documented commands (type help <topic>):")
	c.println("========================================")
	c.println(strings.Join(commandNames(), "  "))
	c.println()
	return nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
