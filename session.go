package forgeterm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default session layout.
const (
	DefaultHome = "/home/user"
	DefaultCwd  = "/home/user/project"
)

// SessionOptions configures NewSession. Zero values take the defaults.
type SessionOptions struct {
	ID           string
	Home         string
	Cwd          string
	AllowedRoots []string
	Execution    ExecutionConfig
	Registry     *CommandRegistry
	Runner       ProcessRunner
	AuditLogger  AuditLogger
	Logger       *zap.Logger
	HistorySize  int
	Now          func() time.Time
}

// Session is one terminal's state: its filesystem, aliases, history and
// working directory. A Session is not safe for concurrent use; callers that
// share one across goroutines must serialize ProcessCommand.
type Session struct {
	id           string
	fs           *VirtualFileSystem
	aliases      *AliasTable
	history      *HistoryLog
	executor     *GuardedExecutor
	registry     *CommandRegistry
	cwd          string
	home         string
	allowedRoots []string
	logger       *zap.Logger
	audit        AuditLogger
	now          func() time.Time
}

// NewSession creates a session over a freshly seeded filesystem.
func NewSession(opts SessionOptions) *Session {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.Home == "" {
		opts.Home = DefaultHome
	}
	if opts.Cwd == "" {
		opts.Cwd = DefaultCwd
	}
	if len(opts.AllowedRoots) == 0 {
		opts.AllowedRoots = []string{opts.Home}
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AuditLogger == nil {
		opts.AuditLogger = NewZapAuditLogger(opts.Logger)
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	fs := NewSeededFileSystem(opts.Now)
	fs.mkdirAll(opts.Home)

	cwd := NormalizePath(opts.Cwd, "/", opts.Home)
	if !fs.IsDirectory(cwd) {
		cwd = opts.Home
	}

	roots := make([]string, len(opts.AllowedRoots))
	for i, r := range opts.AllowedRoots {
		roots[i] = NormalizePath(r, "/", opts.Home)
	}

	execOpts := []ExecutorOption{
		withSessionID(opts.ID),
		WithAuditLogger(opts.AuditLogger),
		WithClock(opts.Now),
	}
	if opts.Runner != nil {
		execOpts = append(execOpts, WithProcessRunner(opts.Runner))
	}

	return &Session{
		id:           opts.ID,
		fs:           fs,
		aliases:      NewAliasTable(),
		history:      NewHistoryLog(opts.HistorySize),
		executor:     NewGuardedExecutor(opts.Execution, execOpts...),
		registry:     opts.Registry,
		cwd:          cwd,
		home:         opts.Home,
		allowedRoots: roots,
		logger:       opts.Logger.With(zap.String("session_id", opts.ID)),
		audit:        opts.AuditLogger,
		now:          opts.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Cwd returns the current working directory.
func (s *Session) Cwd() string { return s.cwd }

// Home returns the home directory.
func (s *Session) Home() string { return s.home }

// DisplayCwd returns the working directory with the home prefix shortened to ~.
func (s *Session) DisplayCwd() string { return displayPath(s.cwd, s.home) }

// History returns a copy of the accepted command strings, oldest first.
func (s *Session) History() []string { return s.history.Entries() }

// FileSystem returns the session's virtual filesystem.
func (s *Session) FileSystem() *VirtualFileSystem { return s.fs }

// Aliases returns the session's alias table.
func (s *Session) Aliases() *AliasTable { return s.aliases }

// Executor returns the guarded executor used for external tools.
func (s *Session) Executor() *GuardedExecutor { return s.executor }

// AllowedRoots returns the sandbox roots.
func (s *Session) AllowedRoots() []string {
	out := make([]string, len(s.allowedRoots))
	copy(out, s.allowedRoots)
	return out
}

// ProcessCommand runs raw through the command pipeline. It never panics;
// every failure is reported in the returned CommandResult.
func (s *Session) ProcessCommand(raw string) CommandResult {
	return s.ProcessCommandContext(context.Background(), raw)
}

// ProcessCommandContext is ProcessCommand with a context that bounds real
// execution of external tools.
func (s *Session) ProcessCommandContext(ctx context.Context, raw string) (result CommandResult) {
	start := time.Now()
	command := raw
	kind := "unknown"

	defer func() {
		if r := recover(); r != nil {
			s.logEvent(EventExecutionError, map[string]interface{}{
				"command": command,
				"error":   fmt.Sprint(r),
			})
			s.logger.Error("command panicked", zap.String("command", command), zap.Any("panic", r))
			result = newCommandResult(command, fmt.Sprintf("Execution Error: %v", r), ExitFailure, s.now())
		}
		RecordCommand(kind, result.ExitCode, time.Since(start))
	}()

	sanitized := Sanitize(raw)
	if sanitized == "" {
		kind = "empty"
		return newCommandResult(command, "", ExitOK, s.now())
	}
	s.history.Append(sanitized)

	tokens := s.aliases.Expand(Tokenize(sanitized))
	if len(tokens) == 0 {
		kind = "empty"
		return newCommandResult(command, "", ExitOK, s.now())
	}

	name, args := tokens[0], tokens[1:]
	cmd, ok := s.registry.Lookup(name)
	if !ok {
		s.logger.Debug("command not found", zap.String("command", name))
		return newCommandResult(command, commandNotFound(name, s.registry.Names()), ExitCommandNotFound, s.now())
	}

	kind = cmd.Kind.String()
	output, exitCode := cmd.Handler(ctx, s, args)

	s.logger.Debug("command processed",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", time.Since(start)))

	return newCommandResult(command, output, exitCode, s.now())
}

func (s *Session) resolve(path string) string {
	return NormalizePath(path, s.cwd, s.home)
}

func (s *Session) contained(path string) bool {
	return IsContained(path, s.allowedRoots)
}

func (s *Session) logEvent(eventType string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Log(SecurityEvent{
		Timestamp: s.now(),
		SessionID: s.id,
		EventType: eventType,
		Details:   details,
	})
}
