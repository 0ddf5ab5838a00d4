package console

import (
	"errors"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
)

// errUnknownSyntax marks a line that is neither canonical nor call form.
var errUnknownSyntax = errors.New("unknown syntax")

// callPattern matches the call form "<Variant>.<command>(<args>)".
var callPattern = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)

// callVerbs are the commands reachable through the call form.
var callVerbs = map[string]bool{
	"create":  true,
	"show":    true,
	"destroy": true,
	"all":     true,
	"update":  true,
	"count":   true,
}

// parseLine tokenizes a trimmed, non-empty line into a command followed by
// its arguments. The call form is rewritten to the canonical order.
func parseLine(line string) ([]string, error) {
	if m := callPattern.FindStringSubmatch(line); m != nil {
		if !callVerbs[m[2]] {
			return nil, errUnknownSyntax
		}
		args, err := splitCallArgs(m[3])
		if err != nil {
			return nil, err
		}
		return append([]string{m[2], m[1]}, args...), nil
	}

	tokens, err := shellquote.Split(line)
	if err != nil || len(tokens) == 0 {
		return nil, errUnknownSyntax
	}
	return tokens, nil
}

// splitCallArgs splits the argument list of a call on commas that are not
// inside quotes, then unquotes each argument.
func splitCallArgs(s string) ([]string, error) {
	var (
		parts []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, errUnknownSyntax
	}
	parts = append(parts, cur.String())

	var args []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens, err := shellquote.Split(p)
		if err != nil {
			return nil, errUnknownSyntax
		}
		if len(tokens) == 0 {
			// A quoted empty string is still an argument.
			tokens = []string{""}
		}
		args = append(args, tokens...)
	}
	return args, nil
}
