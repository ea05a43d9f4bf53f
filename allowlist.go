package forgeterm

import (
	"regexp"
	"sort"
)

// CommandValidator decides whether an external tool invocation is admitted.
type CommandValidator interface {
	Validate(command string, args []string) error
}

// AllowlistEntry is the static policy for one external tool.
type AllowlistEntry struct {
	CommandName      string
	AllowedArgTokens map[string]bool
	RequiresArgs     bool
	MaxArgs          int
	Description      string
}

// AllowlistValidator admits only allowlisted tools with well-shaped
// arguments. It holds no mutable state and is safe for concurrent use.
type AllowlistValidator struct {
	entries map[string]AllowlistEntry
}

// Argument shapes accepted in addition to an entry's explicit tokens.
var argumentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--[a-zA-Z0-9-]+$`),  // long flag
	regexp.MustCompile(`^-[a-zA-Z0-9]$`),     // short flag
	regexp.MustCompile(`^[a-zA-Z0-9._-]+$`),  // bare identifier
	regexp.MustCompile(`^"[^"]*"$`),          // double-quoted string
	regexp.MustCompile(`^'[^']*'$`),          // single-quoted string
	regexp.MustCompile(`^[a-zA-Z0-9 ._-]+$`), // plain text
}

func tokenSet(tokens ...string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// DefaultAllowlist is the static policy table for the external developer tools.
func DefaultAllowlist() []AllowlistEntry {
	return []AllowlistEntry{
		{
			CommandName:      "cargo",
			AllowedArgTokens: tokenSet("build", "run", "test", "check", "clippy", "fmt", "new", "init", "doc", "clean", "--release", "--version", "--help", "-V", "-h"),
			MaxArgs:          10,
			Description:      "Rust package manager",
		},
		{
			CommandName:      "rustc",
			AllowedArgTokens: tokenSet("--version", "--help", "-V", "-h", "--explain", "--edition"),
			MaxArgs:          8,
			Description:      "Rust compiler",
		},
		{
			CommandName:      "rustup",
			AllowedArgTokens: tokenSet("show", "update", "default", "toolchain", "target", "component", "list", "stable", "nightly", "--version", "--help"),
			RequiresArgs:     true,
			MaxArgs:          6,
			Description:      "Rust toolchain installer",
		},
		{
			CommandName:      "claude",
			AllowedArgTokens: tokenSet("--version", "--help", "-p", "--print", "chat", "config"),
			MaxArgs:          10,
			Description:      "Claude CLI",
		},
		{
			CommandName:      "claude-code",
			AllowedArgTokens: tokenSet("--version", "--help", "-p", "--print", "chat", "config"),
			MaxArgs:          10,
			Description:      "Claude Code CLI",
		},
		{
			CommandName:      "which",
			AllowedArgTokens: tokenSet("-a"),
			RequiresArgs:     true,
			MaxArgs:          5,
			Description:      "Locate a command",
		},
		{
			CommandName:      "gemini",
			AllowedArgTokens: tokenSet("--version", "--help", "-p", "--prompt", "-m", "--model", "chat"),
			MaxArgs:          10,
			Description:      "Gemini CLI",
		},
	}
}

// NewAllowlistValidator builds a validator over entries. Later entries with a
// duplicate name replace earlier ones.
func NewAllowlistValidator(entries []AllowlistEntry) *AllowlistValidator {
	v := &AllowlistValidator{entries: make(map[string]AllowlistEntry, len(entries))}
	for _, e := range entries {
		v.entries[e.CommandName] = e
	}
	return v
}

// NewDefaultAllowlistValidator is NewAllowlistValidator(DefaultAllowlist()).
func NewDefaultAllowlistValidator() *AllowlistValidator {
	return NewAllowlistValidator(DefaultAllowlist())
}

// Entry returns the policy for command.
func (v *AllowlistValidator) Entry(command string) (AllowlistEntry, bool) {
	e, ok := v.entries[command]
	return e, ok
}

// Names returns the allowlisted command names, sorted.
func (v *AllowlistValidator) Names() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate returns nil when the invocation is admitted, otherwise a
// *RejectionError. It never panics.
func (v *AllowlistValidator) Validate(command string, args []string) error {
	entry, ok := v.entries[command]
	if !ok {
		return &RejectionError{Code: RejectNotAllowlisted, Command: command}
	}
	if len(args) > entry.MaxArgs {
		return &RejectionError{Code: RejectTooManyArguments, Command: command, Max: entry.MaxArgs}
	}
	if entry.RequiresArgs && len(args) == 0 {
		return &RejectionError{Code: RejectMissingArguments, Command: command}
	}
	for _, arg := range args {
		if !argumentAllowed(entry, arg) {
			return &RejectionError{Code: RejectInvalidArgument, Command: command, Argument: arg}
		}
	}
	return nil
}

func argumentAllowed(entry AllowlistEntry, arg string) bool {
	if entry.AllowedArgTokens[arg] {
		return true
	}
	for _, re := range argumentPatterns {
		if re.MatchString(arg) {
			return true
		}
	}
	return false
}
