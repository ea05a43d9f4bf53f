package forgeterm

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// setupBenchmarkSession creates a session with a deeper tree to walk.
func setupBenchmarkSession(b *testing.B) *Session {
	s := NewSession(SessionOptions{ID: "bench"})
	for i := 0; i < 10; i++ {
		dir := fmt.Sprintf("subdir%d", i)
		if res := s.ProcessCommand("mkdir " + dir); res.ExitCode != ExitOK {
			b.Fatalf("mkdir failed: %s", res.Output)
		}
		for j := 0; j < 10; j++ {
			if res := s.ProcessCommand(fmt.Sprintf("touch %s/file%d.rs", dir, j)); res.ExitCode != ExitOK {
				b.Fatalf("touch failed: %s", res.Output)
			}
		}
	}
	return s
}

// BenchmarkNormalizePath benchmarks path resolution
func BenchmarkNormalizePath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		NormalizePath("../project/./src/../subdir3/file1.rs", "/home/user/project", "/home/user")
	}
}

// BenchmarkSanitize benchmarks input sanitizing
func BenchmarkSanitize(b *testing.B) {
	input := "cat ../../etc/passwd; echo $(whoami) | tee `x` && rm -rf {a,b}"
	for i := 0; i < b.N; i++ {
		Sanitize(input)
	}
}

// BenchmarkProcessCommandLs benchmarks listing a populated directory
func BenchmarkProcessCommandLs(b *testing.B) {
	s := setupBenchmarkSession(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ProcessCommand("ls -la subdir5")
	}
}

// BenchmarkProcessCommandCd benchmarks moving around the tree
func BenchmarkProcessCommandCd(b *testing.B) {
	s := setupBenchmarkSession(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ProcessCommand("cd subdir2")
		s.ProcessCommand("cd ..")
	}
}

// BenchmarkCommandNotFound benchmarks the suggestion path
func BenchmarkCommandNotFound(b *testing.B) {
	s := NewSession(SessionOptions{ID: "bench"})
	for i := 0; i < b.N; i++ {
		s.ProcessCommand("carg build")
	}
}

// BenchmarkAllowlistValidate benchmarks argument validation
func BenchmarkAllowlistValidate(b *testing.B) {
	v := NewDefaultAllowlistValidator()
	args := []string{"build", "--release", "--verbose", `"quoted text"`}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := v.Validate("cargo", args); err != nil {
			b.Fatalf("Validate failed: %v", err)
		}
	}
}

// BenchmarkExecutorSimulated benchmarks a simulated external tool run
func BenchmarkExecutorSimulated(b *testing.B) {
	e := NewGuardedExecutor(DefaultExecutionConfig())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Execute(ctx, "cargo", []string{"test"})
	}
}

// BenchmarkSessionManagerExecute benchmarks concurrent sessions
func BenchmarkSessionManagerExecute(b *testing.B) {
	m := NewSessionManager(0, nil, nil)
	ids := make([]string, 8)
	for i := range ids {
		s, err := m.Create()
		if err != nil {
			b.Fatalf("Create failed: %v", err)
		}
		ids[i] = s.ID()
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := m.Execute(context.Background(), ids[i%len(ids)], "pwd"); err != nil {
				b.Fatalf("Execute failed: %v", err)
			}
			i++
		}
	})
}

// BenchmarkLevenshtein benchmarks edit distance on long inputs
func BenchmarkLevenshtein(b *testing.B) {
	a := strings.Repeat("cargo", 20)
	c := strings.Repeat("crago", 20)
	for i := 0; i < b.N; i++ {
		LevenshteinDistance(a, c)
	}
}
