package forgeterm

import (
	"errors"
	"strings"
	"testing"
)

func rejectionCode(t *testing.T, err error) RejectionCode {
	t.Helper()
	if err == nil {
		return ""
	}
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("Expected *RejectionError, got %T: %v", err, err)
	}
	return rej.Code
}

func TestAllowlistValidate(t *testing.T) {
	v := NewDefaultAllowlistValidator()

	tests := []struct {
		name    string
		command string
		args    []string
		want    RejectionCode
	}{
		{"version flag", "cargo", []string{"--version"}, ""},
		{"subcommand", "cargo", []string{"build", "--release"}, ""},
		{"no args allowed", "gemini", nil, ""},
		{"identifier", "which", []string{"cargo"}, ""},
		{"double quoted", "claude", []string{"-p", `"hello world"`}, ""},
		{"single quoted", "gemini", []string{"-p", "'hi there'"}, ""},
		{"plain text with space", "claude", []string{"-p", "explain this code"}, ""},
		{"not allowlisted", "rm", []string{"-rf", "/"}, RejectNotAllowlisted},
		{"builtin is not allowlisted", "ls", nil, RejectNotAllowlisted},
		{"too many", "which", []string{"a", "b", "c", "d", "e", "f"}, RejectTooManyArguments},
		{"missing", "rustup", nil, RejectMissingArguments},
		{"missing which", "which", []string{}, RejectMissingArguments},
		{"slash", "cargo", []string{"build/x"}, RejectInvalidArgument},
		{"tilde", "rustc", []string{"~/main.rs"}, RejectInvalidArgument},
		{"equals", "cargo", []string{"--features=foo"}, RejectInvalidArgument},
		{"mismatched quotes", "gemini", []string{`"oops'`}, RejectInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rejectionCode(t, v.Validate(tt.command, tt.args))
			if got != tt.want {
				t.Errorf("Validate(%q, %v) = %q, want %q", tt.command, tt.args, got, tt.want)
			}
		})
	}
}

func TestAllowlistCheckOrder(t *testing.T) {
	v := NewDefaultAllowlistValidator()

	// Too many arguments wins over invalid arguments.
	args := make([]string, 11)
	for i := range args {
		args[i] = "bad/arg"
	}
	if got := rejectionCode(t, v.Validate("cargo", args)); got != RejectTooManyArguments {
		t.Errorf("Expected TooManyArguments, got %q", got)
	}

	// The first offending argument is named.
	err := v.Validate("cargo", []string{"build", "a/b", "c/d"})
	var rej *RejectionError
	if !errors.As(err, &rej) || rej.Argument != "a/b" {
		t.Errorf("Expected rejection naming a/b, got %v", err)
	}
}

func TestAllowlistTotal(t *testing.T) {
	v := NewDefaultAllowlistValidator()

	commands := append(v.Names(), "", "rm", "CARGO", "cargo ")
	argSets := [][]string{
		nil,
		{},
		{""},
		{"--"},
		{"-"},
		{"--help"},
		{"\x00"},
		{"é"},
		{strings.Repeat("a", 10000)},
		{"'", `"`},
		{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
	}

	valid := map[RejectionCode]bool{
		"":                     true,
		RejectNotAllowlisted:   true,
		RejectTooManyArguments: true,
		RejectMissingArguments: true,
		RejectInvalidArgument:  true,
	}

	for _, cmd := range commands {
		for _, args := range argSets {
			code := rejectionCode(t, v.Validate(cmd, args))
			if !valid[code] {
				t.Errorf("Validate(%q, %q) returned unknown code %q", cmd, args, code)
			}
		}
	}
}

func TestRejectionMessages(t *testing.T) {
	tests := []struct {
		err  *RejectionError
		want string
	}{
		{&RejectionError{Code: RejectNotAllowlisted, Command: "rm"}, "Command 'rm' is not allowlisted"},
		{&RejectionError{Code: RejectTooManyArguments, Command: "gemini", Max: 10}, "Too many arguments for 'gemini' (max 10)"},
		{&RejectionError{Code: RejectMissingArguments, Command: "rustup"}, "Command 'rustup' requires arguments"},
		{&RejectionError{Code: RejectInvalidArgument, Command: "cargo", Argument: "a/b"}, "Invalid argument 'a/b' for 'cargo'"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
