package forgeterm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// CommandKind tells the router how a command is executed.
type CommandKind int

const (
	// BuiltinCommand runs directly against the session's virtual filesystem.
	BuiltinCommand CommandKind = iota
	// ExternalCommand is forwarded to the GuardedExecutor.
	ExternalCommand
)

func (k CommandKind) String() string {
	if k == ExternalCommand {
		return "external"
	}
	return "builtin"
}

// Handler executes a command for a session and returns its output and exit code.
type Handler func(ctx context.Context, s *Session, args []string) (string, int)

// Command is a registry entry.
type Command struct {
	Name        string
	Description string
	Kind        CommandKind
	Handler     Handler
}

// CommandRegistry maps command names to handlers. It is filled before use
// and only read afterwards, so one registry may back many sessions.
type CommandRegistry struct {
	commands map[string]*Command
	order    []string
}

// NewCommandRegistry creates an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]*Command)}
}

// Register adds cmd. Returns an error if the name is empty, already
// registered, or has no handler.
func (r *CommandRegistry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command '%s' has no handler", cmd.Name)
	}
	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command '%s' is already registered", cmd.Name)
	}
	c := cmd
	r.commands[cmd.Name] = &c
	r.order = append(r.order, cmd.Name)
	return nil
}

// RegisterExternal adds an external tool that is dispatched through the
// session's GuardedExecutor.
func (r *CommandRegistry) RegisterExternal(name, description string) error {
	return r.Register(Command{
		Name:        name,
		Description: description,
		Kind:        ExternalCommand,
		Handler:     externalHandler(name),
	})
}

// Lookup returns the command registered under name.
func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Names returns command names in registration order.
func (r *CommandRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Commands returns all commands in registration order.
func (r *CommandRegistry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.commands[name])
	}
	return out
}

// DefaultRegistry returns the builtins plus the allowlisted external tools.
func DefaultRegistry() *CommandRegistry {
	r := NewCommandRegistry()

	builtins := []Command{
		{Name: "pwd", Description: "Print the current working directory", Handler: builtinPwd},
		{Name: "ls", Description: "List directory contents (-a, -l)", Handler: builtinLs},
		{Name: "cd", Description: "Change the current directory", Handler: builtinCd},
		{Name: "mkdir", Description: "Create directories", Handler: builtinMkdir},
		{Name: "touch", Description: "Create files or update their timestamps", Handler: builtinTouch},
		{Name: "cat", Description: "Print file contents", Handler: builtinCat},
		{Name: "history", Description: "Show command history", Handler: builtinHistory},
		{Name: "alias", Description: "Define or list aliases", Handler: builtinAlias},
		{Name: "clear", Description: "Clear the terminal screen", Handler: builtinClear},
		{Name: "help", Description: "Show available commands", Handler: builtinHelp},
	}
	for _, b := range builtins {
		b.Kind = BuiltinCommand
		_ = r.Register(b)
	}

	for _, e := range DefaultAllowlist() {
		_ = r.RegisterExternal(e.CommandName, e.Description)
	}
	return r
}

func externalHandler(name string) Handler {
	return func(ctx context.Context, s *Session, args []string) (string, int) {
		res := s.executor.Execute(ctx, name, args)
		return res.Output, res.ExitCode
	}
}

var (
	shellMetaChars   = regexp.MustCompile("[;&|`$(){}\\[\\]]")
	traversalPattern = regexp.MustCompile(`\.\./|/\.\.`)
)

// Sanitize strips shell metacharacters and "../" or "/.." sequences, then
// trims surrounding whitespace.
func Sanitize(input string) string {
	s := shellMetaChars.ReplaceAllString(input, "")
	s = traversalPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Tokenize splits input on runs of whitespace.
func Tokenize(input string) []string {
	return strings.Fields(input)
}

func commandNotFound(name string, known []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: command not found", name)
	if suggestions := Suggest(name, known); len(suggestions) > 0 {
		fmt.Fprintf(&b, "\nDid you mean: %s?", strings.Join(suggestions, ", "))
	} else {
		b.WriteString("\nType 'help' to see available commands.")
	}
	return b.String()
}
