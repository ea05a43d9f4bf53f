package forgeterm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ExecutionConfig is read once when a GuardedExecutor is constructed.
type ExecutionConfig struct {
	AllowRealExecution bool              // default false: always simulate
	TimeoutMs          int               // upper bound for a real execution attempt
	MaxOutputLength    int               // truncation ceiling for returned output
	AllowedCommands    []string          // extra names eligible for real execution
	Environment        map[string]string // added to the subprocess environment
}

// DefaultExecutionConfig returns the simulate-only configuration.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		AllowRealExecution: false,
		TimeoutMs:          30000,
		MaxOutputLength:    10000,
	}
}

const truncationMarker = "\n... (output truncated)"

// CommandResult is the single result shape returned for every dispatch.
type CommandResult struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
	ExitCode  int       `json:"exit_code"`
}

func newCommandResult(command, output string, exitCode int, now time.Time) CommandResult {
	return CommandResult{
		ID:        uuid.New().String(),
		Command:   command,
		Output:    output,
		Timestamp: now.UTC(),
		ExitCode:  exitCode,
	}
}

// ProcessRunner runs a real subprocess. A context deadline bounds the run.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args []string, env map[string]string) (output string, exitCode int, err error)
}

// ExecRunner runs commands with os/exec and returns combined stdout/stderr.
type ExecRunner struct{}

// Run implements ProcessRunner. A non-zero exit is reported through exitCode
// with a nil error; err is reserved for failures to start or wait.
func (ExecRunner) Run(ctx context.Context, name string, args []string, env map[string]string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() != nil {
		return out.String(), -1, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), exitErr.ExitCode(), nil
		}
		return out.String(), -1, err
	}
	return out.String(), 0, nil
}

// outcome is the closed set of ways an admitted invocation can end.
type outcome interface {
	isOutcome()
}

type simulatedOutcome struct {
	output string
}

type realOutcome struct {
	output   string
	exitCode int
}

type timedOutOutcome struct {
	timeout time.Duration
}

func (simulatedOutcome) isOutcome() {}
func (realOutcome) isOutcome() {}
func (timedOutOutcome) isOutcome() {}

// GuardedExecutor mediates every external tool invocation: validation, then
// real or simulated execution, then one CommandResult.
type GuardedExecutor struct {
	validator  CommandValidator
	responders *ResponderRegistry
	runner     ProcessRunner
	config     ExecutionConfig
	audit      AuditLogger
	sessionID  string
	now        func() time.Time
}

// ExecutorOption customizes a GuardedExecutor.
type ExecutorOption func(*GuardedExecutor)

// WithProcessRunner replaces the os/exec runner.
func WithProcessRunner(r ProcessRunner) ExecutorOption {
	return func(e *GuardedExecutor) { e.runner = r }
}

// WithAuditLogger sets the security event sink.
func WithAuditLogger(l AuditLogger) ExecutorOption {
	return func(e *GuardedExecutor) { e.audit = l }
}

// WithResponders replaces the simulated responder set.
func WithResponders(r *ResponderRegistry) ExecutorOption {
	return func(e *GuardedExecutor) { e.responders = r }
}

// WithValidator replaces the allowlist validator.
func WithValidator(v CommandValidator) ExecutorOption {
	return func(e *GuardedExecutor) { e.validator = v }
}

// WithClock sets the time source used for result timestamps.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *GuardedExecutor) { e.now = now }
}

// withSessionID tags emitted security events with the owning session.
func withSessionID(id string) ExecutorOption {
	return func(e *GuardedExecutor) { e.sessionID = id }
}

// NewGuardedExecutor creates an executor with the default allowlist and
// responders. Zero TimeoutMs or MaxOutputLength take the defaults.
func NewGuardedExecutor(config ExecutionConfig, opts ...ExecutorOption) *GuardedExecutor {
	defaults := DefaultExecutionConfig()
	if config.TimeoutMs <= 0 {
		config.TimeoutMs = defaults.TimeoutMs
	}
	if config.MaxOutputLength <= 0 {
		config.MaxOutputLength = defaults.MaxOutputLength
	}

	e := &GuardedExecutor{
		validator:  NewDefaultAllowlistValidator(),
		responders: DefaultResponders(),
		runner:     ExecRunner{},
		config:     config,
		audit:      NopAuditLogger{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the executor's configuration.
func (e *GuardedExecutor) Config() ExecutionConfig {
	return e.config
}

// Execute runs commandName with args through the guarded pipeline.
func (e *GuardedExecutor) Execute(ctx context.Context, commandName string, args []string) CommandResult {
	command := strings.TrimSpace(commandName + " " + strings.Join(args, " "))
	output, exitCode := e.run(ctx, commandName, args)
	return newCommandResult(command, output, exitCode, e.now())
}

func (e *GuardedExecutor) run(ctx context.Context, name string, args []string) (string, int) {
	if err := e.validator.Validate(name, args); err != nil {
		details := map[string]interface{}{
			"command": name,
			"args":    args,
			"reason":  err.Error(),
		}
		var rej *RejectionError
		if errors.As(err, &rej) {
			details["code"] = string(rej.Code)
			RecordRejection(rej.Code)
		}
		e.logEvent(EventCommandRejected, details)
		return fmt.Sprintf("Security Error: %s", err.Error()), ExitSecurityRejected
	}

	var o outcome
	if e.realEligible(name) {
		o = e.runReal(ctx, name, args)
	} else {
		o = e.simulate(name, args)
	}

	switch v := o.(type) {
	case simulatedOutcome:
		RecordExecution("simulated")
		return e.truncate(v.output), ExitOK
	case realOutcome:
		RecordExecution("real")
		return e.truncate(v.output), v.exitCode
	case timedOutOutcome:
		RecordExecution("timeout")
		return fmt.Sprintf("%s: execution timed out after %dms", name, v.timeout.Milliseconds()), ExitTimeout
	default:
		panic(fmt.Sprintf("unhandled execution outcome %T", o))
	}
}

func (e *GuardedExecutor) realEligible(name string) bool {
	if !e.config.AllowRealExecution {
		return false
	}
	if v, ok := e.validator.(*AllowlistValidator); ok {
		if _, listed := v.Entry(name); listed {
			return true
		}
	}
	for _, allowed := range e.config.AllowedCommands {
		if allowed == name {
			return true
		}
	}
	return false
}

func (e *GuardedExecutor) runReal(ctx context.Context, name string, args []string) outcome {
	timeout := time.Duration(e.config.TimeoutMs) * time.Millisecond

	e.logEvent(EventRealExecution, map[string]interface{}{
		"command":    name,
		"args":       args,
		"timeout_ms": e.config.TimeoutMs,
	})

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, exitCode, err := e.runner.Run(runCtx, name, args, e.config.Environment)
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return timedOutOutcome{timeout: timeout}
	}
	if err != nil {
		e.logEvent(EventExecutionError, map[string]interface{}{
			"command": name,
			"args":    args,
			"error":   err.Error(),
		})
		return realOutcome{output: fmt.Sprintf("Execution Error: %v", err), exitCode: ExitFailure}
	}
	return realOutcome{output: output, exitCode: exitCode}
}

func (e *GuardedExecutor) simulate(name string, args []string) outcome {
	responder, ok := e.responders.Get(name)
	if !ok {
		return simulatedOutcome{output: fmt.Sprintf("%s: command simulation not available", name)}
	}
	return simulatedOutcome{output: responder(args)}
}

func (e *GuardedExecutor) truncate(output string) string {
	if len(output) <= e.config.MaxOutputLength {
		return output
	}
	cut := e.config.MaxOutputLength
	for cut > 0 && !utf8.RuneStart(output[cut]) {
		cut--
	}
	return output[:cut] + truncationMarker
}

func (e *GuardedExecutor) logEvent(eventType string, details map[string]interface{}) {
	if e.audit == nil {
		return
	}
	_ = e.audit.Log(SecurityEvent{
		Timestamp: e.now(),
		SessionID: e.sessionID,
		EventType: eventType,
		Details:   details,
	})
}
