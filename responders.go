package forgeterm

import (
	"fmt"
	"sort"
	"strings"
)

// Responder produces the canned output for a simulated tool. It must be a
// pure function of its arguments.
type Responder func(args []string) string

// ResponderRegistry maps external tool names to simulated responders.
type ResponderRegistry struct {
	responders map[string]Responder
}

// NewResponderRegistry creates an empty registry.
func NewResponderRegistry() *ResponderRegistry {
	return &ResponderRegistry{responders: make(map[string]Responder)}
}

// Register adds a responder. Returns an error if name is already registered.
func (r *ResponderRegistry) Register(name string, responder Responder) error {
	if _, exists := r.responders[name]; exists {
		return fmt.Errorf("responder '%s' is already registered", name)
	}
	r.responders[name] = responder
	return nil
}

// Get returns the responder for name.
func (r *ResponderRegistry) Get(name string) (Responder, bool) {
	responder, ok := r.responders[name]
	return responder, ok
}

// List returns all registered names, sorted.
func (r *ResponderRegistry) List() []string {
	names := make([]string, 0, len(r.responders))
	for name := range r.responders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultResponders returns the responders for the default external tools.
func DefaultResponders() *ResponderRegistry {
	r := NewResponderRegistry()
	_ = r.Register("cargo", cargoResponder)
	_ = r.Register("rustc", rustcResponder)
	_ = r.Register("rustup", rustupResponder)
	_ = r.Register("claude", claudeResponder("claude"))
	_ = r.Register("claude-code", claudeResponder("claude-code"))
	_ = r.Register("which", whichResponder)
	_ = r.Register("gemini", geminiResponder)
	return r
}

func hasArg(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

const projectDir = "/home/user/project"

func cargoResponder(args []string) string {
	if len(args) == 0 || hasArg(args, "--help", "-h") {
		return `Rust's package manager

Usage: cargo [+toolchain] [OPTIONS] [COMMAND]

Commands:
    build, b    Compile the current package
    check, c    Analyze the current package and report errors
    clean       Remove the target directory
    doc, d      Build this package's documentation
    new         Create a new cargo package
    init        Create a new cargo package in an existing directory
    run, r      Run a binary or example of the local package
    test, t     Run the tests
    clippy      Checks a package to catch common mistakes
    fmt         Formats all bin and lib files of the current crate

See 'cargo help <command>' for more information on a specific command.`
	}
	if hasArg(args, "--version", "-V") {
		return "cargo 1.75.0 (1d8b05cdd 2023-11-20)"
	}

	profile := "dev [unoptimized + debuginfo]"
	if hasArg(args, "--release") {
		profile = "release [optimized]"
	}

	switch args[0] {
	case "build", "b":
		return fmt.Sprintf(`   Compiling rust-terminal-forge v0.1.0 (%s)
    Finished %s target(s) in 2.34s`, projectDir, profile)
	case "check", "c":
		return fmt.Sprintf(`    Checking rust-terminal-forge v0.1.0 (%s)
    Finished %s target(s) in 0.87s`, projectDir, profile)
	case "run", "r":
		return fmt.Sprintf(`   Compiling rust-terminal-forge v0.1.0 (%s)
    Finished %s target(s) in 1.92s
     Running `+"`target/debug/rust-terminal-forge`"+`
Hello from Rust Terminal Forge!`, projectDir, profile)
	case "test", "t":
		return fmt.Sprintf(`   Compiling rust-terminal-forge v0.1.0 (%s)
    Finished test [unoptimized + debuginfo] target(s) in 3.11s
     Running unittests src/lib.rs

running 3 tests
test tests::test_path_resolution ... ok
test tests::test_command_parsing ... ok
test tests::test_allowlist ... ok

test result: ok. 3 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out`, projectDir)
	case "clippy":
		return fmt.Sprintf(`    Checking rust-terminal-forge v0.1.0 (%s)
    Finished %s target(s) in 1.04s`, projectDir, profile)
	case "fmt":
		return ""
	case "clean":
		return "     Removed 412 files, 98.3MiB total"
	case "doc", "d":
		return fmt.Sprintf(` Documenting rust-terminal-forge v0.1.0 (%s)
    Finished %s target(s) in 2.10s
   Generated %s/target/doc/rust_terminal_forge/index.html`, projectDir, profile, projectDir)
	case "new", "init":
		name := "hello_world"
		if len(args) > 1 {
			name = args[1]
		}
		return fmt.Sprintf("     Created binary (application) `%s` package", name)
	default:
		return fmt.Sprintf("error: no such command: `%s`\n\n\tView all installed commands with `cargo --list`", args[0])
	}
}

func rustcResponder(args []string) string {
	if hasArg(args, "--version", "-V") {
		return "rustc 1.75.0 (82e1608df 2023-12-21)"
	}
	if len(args) == 0 || hasArg(args, "--help", "-h") {
		return `Usage: rustc [OPTIONS] INPUT

Options:
    -h, --help          Display this message
        --edition 2015|2018|2021
                        Specify which edition of the compiler to use
        --explain OPT   Provide a detailed explanation of an error message
    -V, --version       Print version info and exit`
	}
	if hasArg(args, "--explain") {
		return "This error code has no extended explanation in the simulated toolchain."
	}
	return fmt.Sprintf("(simulated) compiled %s", args[len(args)-1])
}

func rustupResponder(args []string) string {
	if hasArg(args, "--version") {
		return "rustup 1.26.0 (5af9b9484 2023-04-05)"
	}
	if len(args) == 0 || hasArg(args, "--help") {
		return `rustup 1.26.0 (5af9b9484 2023-04-05)
The Rust toolchain installer

Usage: rustup [OPTIONS] [+toolchain] [COMMAND]

Commands:
  show       Show the active and installed toolchains or profiles
  update     Update Rust toolchains and rustup
  default    Set the default toolchain
  toolchain  Modify or query the installed toolchains
  target     Modify a toolchain's supported targets
  component  Modify a toolchain's installed components`
	}

	switch args[0] {
	case "show":
		return `Default host: x86_64-unknown-linux-gnu
rustup home:  /home/user/.rustup

stable-x86_64-unknown-linux-gnu (default)
rustc 1.75.0 (82e1608df 2023-12-21)`
	case "update":
		return `info: syncing channel updates for 'stable-x86_64-unknown-linux-gnu'
info: checking for self-update

  stable-x86_64-unknown-linux-gnu unchanged - rustc 1.75.0 (82e1608df 2023-12-21)`
	case "default":
		toolchain := "stable"
		if len(args) > 1 {
			toolchain = args[1]
		}
		return fmt.Sprintf("info: default toolchain set to '%s-x86_64-unknown-linux-gnu'", toolchain)
	case "toolchain":
		return "stable-x86_64-unknown-linux-gnu (default)"
	case "target":
		return "x86_64-unknown-linux-gnu (installed)\nwasm32-unknown-unknown"
	case "component":
		return "cargo-x86_64-unknown-linux-gnu (installed)\nclippy-x86_64-unknown-linux-gnu (installed)\nrustfmt-x86_64-unknown-linux-gnu (installed)"
	default:
		return fmt.Sprintf("error: unrecognized subcommand '%s'", args[0])
	}
}

func claudeResponder(name string) Responder {
	return func(args []string) string {
		if hasArg(args, "--version") {
			return "1.0.0 (Claude Code)"
		}
		if len(args) == 0 || hasArg(args, "--help") {
			return fmt.Sprintf(`Usage: %s [options] [command] [prompt]

Claude Code - starts an interactive session by default, use -p/--print for
non-interactive output

Options:
  -p, --print     Print response and exit
  --version       Output the version number
  --help          Display help for command

Commands:
  chat            Start an interactive chat session
  config          Manage configuration`, name)
		}
		if hasArg(args, "-p", "--print") {
			prompt := strings.Join(nonFlagArgs(args), " ")
			if prompt == "" {
				return "Error: Input must be provided either through stdin or as a prompt argument when using --print"
			}
			return fmt.Sprintf("(simulated) Claude response to: %s", strings.Trim(prompt, `"'`))
		}
		switch args[0] {
		case "config":
			return "No configuration values set."
		default:
			return "(simulated) Interactive sessions are not available in this terminal. Use -p to print a single response."
		}
	}
}

func whichResponder(args []string) string {
	paths := map[string]string{
		"cargo":       "/home/user/.cargo/bin/cargo",
		"rustc":       "/home/user/.cargo/bin/rustc",
		"rustup":      "/home/user/.cargo/bin/rustup",
		"claude":      "/usr/local/bin/claude",
		"claude-code": "/usr/local/bin/claude-code",
		"gemini":      "/usr/local/bin/gemini",
		"which":       "/usr/bin/which",
	}

	var lines []string
	for _, name := range nonFlagArgs(args) {
		if p, ok := paths[name]; ok {
			lines = append(lines, p)
		} else {
			lines = append(lines, fmt.Sprintf("%s not found", name))
		}
	}
	return strings.Join(lines, "\n")
}

func geminiResponder(args []string) string {
	if hasArg(args, "--version") {
		return "0.1.9"
	}
	if len(args) == 0 || hasArg(args, "--help") {
		return `Gemini CLI - AI assistant in your terminal

Usage: gemini [options]

Options:
  -m, --model     Model to use (default: gemini-2.5-pro)
  -p, --prompt    Prompt to send, non-interactive mode
  --version       Show version number
  --help          Show help`
	}
	if hasArg(args, "-p", "--prompt") {
		prompt := strings.Join(nonFlagArgs(args), " ")
		return fmt.Sprintf("(simulated) Gemini response to: %s", strings.Trim(prompt, `"'`))
	}
	return "(simulated) Interactive sessions are not available in this terminal. Use -p to send a prompt."
}

// nonFlagArgs drops flag tokens and the value following -m/--model.
func nonFlagArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "-m" || a == "--model" {
			i++
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		out = append(out, a)
	}
	return out
}
