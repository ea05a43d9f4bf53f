package forgeterm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const lsTimeFormat = "Jan _2 15:04"

func builtinPwd(_ context.Context, s *Session, _ []string) (string, int) {
	return s.cwd, ExitOK
}

func builtinCd(_ context.Context, s *Session, args []string) (string, int) {
	if len(args) == 0 {
		s.cwd = s.home
		return "", ExitOK
	}

	target := args[0]
	path := s.resolve(target)
	if !s.contained(path) {
		return fmt.Sprintf("cd: %s: Permission denied", target), ExitFailure
	}
	if !s.fs.IsDirectory(path) {
		if node, ok := s.fs.Stat(path); ok && !node.IsDir() {
			return fmt.Sprintf("cd: %s: Not a directory", target), ExitFailure
		}
		return fmt.Sprintf("cd: %s: No such file or directory", target), ExitFailure
	}

	s.cwd = path
	return "", ExitOK
}

func builtinLs(_ context.Context, s *Session, args []string) (string, int) {
	showAll, long := false, false
	target := ""

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			for _, c := range arg[1:] {
				switch c {
				case 'a':
					showAll = true
				case 'l':
					long = true
				default:
					return fmt.Sprintf("ls: invalid option -- '%c'", c), ExitFailure
				}
			}
			continue
		}
		if target == "" {
			target = arg
		}
	}

	path := s.cwd
	if target != "" {
		path = s.resolve(target)
	}
	if !s.contained(path) {
		return fmt.Sprintf("ls: cannot open directory '%s': Permission denied", displayTarget(target, path)), ExitFailure
	}

	var entries []FileSystemNode
	if s.fs.IsDirectory(path) {
		for _, e := range s.fs.List(path) {
			if !showAll && strings.HasPrefix(e.Name, ".") {
				continue
			}
			entries = append(entries, e)
		}
	} else if node, ok := s.fs.Stat(path); ok {
		entries = []FileSystemNode{node}
	} else {
		return fmt.Sprintf("ls: cannot access '%s': No such file or directory", displayTarget(target, path)), ExitFailure
	}

	if !long {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}
		return strings.Join(names, "  "), ExitOK
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("total %d", len(entries)))
	for _, e := range entries {
		lines = append(lines, formatLongEntry(e))
	}
	return strings.Join(lines, "\n"), ExitOK
}

func formatLongEntry(e FileSystemNode) string {
	size := fmt.Sprintf("%d", e.Size)
	if e.IsDir() {
		size = "4096"
	}
	return fmt.Sprintf("%s 1 user user %8s %s %s", e.Permissions, size, e.LastModified.Format(lsTimeFormat), e.Name)
}

func displayTarget(target, path string) string {
	if target == "" {
		return path
	}
	return target
}

func builtinMkdir(_ context.Context, s *Session, args []string) (string, int) {
	operands := nonOptionArgs(args)
	if len(operands) == 0 {
		return "mkdir: missing operand", ExitFailure
	}

	var errs []string
	for _, name := range operands {
		if emptyName(name) {
			errs = append(errs, "mkdir: cannot create directory '': No such file or directory")
			continue
		}
		path := s.resolve(name)
		if !s.contained(path) {
			errs = append(errs, fmt.Sprintf("mkdir: cannot create directory '%s': Permission denied", name))
			continue
		}
		parent, base := splitPath(path)
		if err := s.fs.CreateDirectory(parent, base); err != nil {
			errs = append(errs, fmt.Sprintf("mkdir: cannot create directory '%s': %s", name, fsErrorText(err)))
		}
	}

	if len(errs) > 0 {
		return strings.Join(errs, "\n"), ExitFailure
	}
	return "", ExitOK
}

func builtinTouch(_ context.Context, s *Session, args []string) (string, int) {
	operands := nonOptionArgs(args)
	if len(operands) == 0 {
		return "touch: missing file operand", ExitFailure
	}

	var errs []string
	for _, name := range operands {
		if emptyName(name) {
			errs = append(errs, "touch: cannot touch '': No such file or directory")
			continue
		}
		path := s.resolve(name)
		if !s.contained(path) {
			errs = append(errs, fmt.Sprintf("touch: cannot touch '%s': Permission denied", name))
			continue
		}
		parent, base := splitPath(path)
		if err := s.fs.TouchFile(parent, base); err != nil {
			errs = append(errs, fmt.Sprintf("touch: cannot touch '%s': %s", name, fsErrorText(err)))
		}
	}

	if len(errs) > 0 {
		return strings.Join(errs, "\n"), ExitFailure
	}
	return "", ExitOK
}

func builtinCat(_ context.Context, s *Session, args []string) (string, int) {
	operands := nonOptionArgs(args)
	if len(operands) == 0 {
		return "cat: missing operand", ExitFailure
	}

	var out []string
	exitCode := ExitOK
	for _, name := range operands {
		path := s.resolve(name)
		if !s.contained(path) {
			out = append(out, fmt.Sprintf("cat: %s: Permission denied", name))
			exitCode = ExitFailure
			continue
		}
		node, ok := s.fs.Stat(path)
		if !ok {
			out = append(out, fmt.Sprintf("cat: %s: No such file or directory", name))
			exitCode = ExitFailure
			continue
		}
		if node.IsDir() {
			out = append(out, fmt.Sprintf("cat: %s: Is a directory", name))
			exitCode = ExitFailure
			continue
		}
		parent, base := splitPath(path)
		out = append(out, s.fs.ReadFileContent(parent, base))
	}
	return strings.Join(out, "\n"), exitCode
}

func builtinHistory(_ context.Context, s *Session, _ []string) (string, int) {
	entries := s.history.Entries()
	lines := make([]string, len(entries))
	for i, cmd := range entries {
		lines[i] = fmt.Sprintf("%5d  %s", i+1, cmd)
	}
	return strings.Join(lines, "\n"), ExitOK
}

func builtinAlias(_ context.Context, s *Session, args []string) (string, int) {
	if len(args) == 0 {
		return strings.Join(s.aliases.List(), "\n"), ExitOK
	}

	def := strings.Join(args, " ")
	if strings.Contains(def, "=") {
		name, value, ok := parseAliasDefinition(def)
		if !ok {
			return fmt.Sprintf("alias: `%s': invalid alias name", def), ExitFailure
		}
		s.aliases.Set(name, value)
		return "", ExitOK
	}

	var out []string
	exitCode := ExitOK
	for _, name := range args {
		if _, ok := s.aliases.Get(name); ok {
			out = append(out, s.aliases.Format(name))
		} else {
			out = append(out, fmt.Sprintf("alias: %s: not found", name))
			exitCode = ExitFailure
		}
	}
	return strings.Join(out, "\n"), exitCode
}

func builtinClear(_ context.Context, _ *Session, _ []string) (string, int) {
	return "", ExitOK
}

func builtinHelp(_ context.Context, s *Session, _ []string) (string, int) {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range s.registry.Commands() {
		if c.Kind == BuiltinCommand {
			fmt.Fprintf(&b, "  %-12s %s\n", c.Name, c.Description)
		}
	}
	b.WriteString("\nExternal tools (allowlisted):\n")
	for _, c := range s.registry.Commands() {
		if c.Kind == ExternalCommand {
			fmt.Fprintf(&b, "  %-12s %s\n", c.Name, c.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n"), ExitOK
}

// nonOptionArgs drops arguments that look like flags.
// emptyName reports whether name is an empty quoted string such as '' or "".
func emptyName(name string) bool {
	return strings.Trim(name, `'"`) == ""
}

func nonOptionArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			continue
		}
		out = append(out, a)
	}
	return out
}

func fsErrorText(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "File exists"
	case errors.Is(err, ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	default:
		return err.Error()
	}
}
