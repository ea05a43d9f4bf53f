package forgeterm

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// fixedClock returns a clock that advances one minute per call.
func fixedClock() func() time.Time {
	t := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func names(nodes []FileSystemNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestSeededFileSystem(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())

	for _, dir := range []string{"/", "/home", "/home/user", "/home/user/project", "/home/user/project/src", "/home/user/documents"} {
		if !v.IsDirectory(dir) {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}

	if v.Count() != 6 {
		t.Errorf("Expected 6 directories, got %d", v.Count())
	}

	got := strings.Join(names(v.List("/home/user/project")), ",")
	if got != "src,Cargo.toml,README.md,package.json" {
		t.Errorf("Unexpected project listing: %s", got)
	}

	n, ok := v.Stat("/home/user/project/src/main.rs")
	if !ok {
		t.Fatal("Expected main.rs to exist")
	}
	if n.IsDir() || n.Permissions != "-rw-r--r--" {
		t.Errorf("Unexpected main.rs node: %+v", n)
	}
	if n.Size != int64(len(cannedContent("main.rs"))) {
		t.Errorf("Expected size %d, got %d", len(cannedContent("main.rs")), n.Size)
	}
}

func TestFileSystemConnected(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())
	_ = v.CreateDirectory("/home/user/project", "target")
	_ = v.CreateDirectory("/home/user/project/target", "debug")

	for path := range v.dirs {
		if path == "/" {
			continue
		}
		parent, name := splitPath(path)
		n, ok := v.Lookup(parent, name)
		if !ok || !n.IsDir() {
			t.Errorf("Directory key %s is not listed as a directory in %s", path, parent)
		}
	}
}

func TestCreateDirectory(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())

	if err := v.CreateDirectory("/home/user", "work"); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}
	if !v.IsDirectory("/home/user/work") {
		t.Error("Expected /home/user/work to be a directory key")
	}
	if len(v.List("/home/user/work")) != 0 {
		t.Error("Expected new directory to be empty")
	}

	err := v.CreateDirectory("/home/user", "work")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	err = v.CreateDirectory("/home/user", ".bashrc")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for a file name, got %v", err)
	}

	err = v.CreateDirectory("/nope", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestTouchFileIdempotent(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())

	if err := v.TouchFile("/home/user", "todo.md"); err != nil {
		t.Fatalf("TouchFile failed: %v", err)
	}
	first, _ := v.Lookup("/home/user", "todo.md")
	if first.Size != 0 || first.IsDir() {
		t.Errorf("Expected empty file, got %+v", first)
	}

	before := len(v.List("/home/user"))
	if err := v.TouchFile("/home/user", "todo.md"); err != nil {
		t.Fatalf("TouchFile failed: %v", err)
	}
	if after := len(v.List("/home/user")); after != before {
		t.Errorf("Expected %d entries after second touch, got %d", before, after)
	}

	second, _ := v.Lookup("/home/user", "todo.md")
	if !second.LastModified.After(first.LastModified) {
		t.Error("Expected second touch to update lastModified")
	}

	if err := v.TouchFile("/missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())
	entries := v.List("/home/user")
	entries[0].Name = "mutated"

	if names(v.List("/home/user"))[0] == "mutated" {
		t.Error("List must not expose internal nodes")
	}
	if len(v.List("/does/not/exist")) != 0 {
		t.Error("Expected empty listing for unknown path")
	}
}

func TestReadFileContent(t *testing.T) {
	v := NewSeededFileSystem(fixedClock())

	tests := []struct {
		name     string
		contains string
	}{
		{"main.rs", "fn main()"},
		{"Cargo.toml", "[package]"},
		{"README.md", "# Rust Terminal Forge"},
		{"package.json", `"name"`},
		{"notes.txt", "Plain text"},
		{"script.py", "print("},
		{".bashrc", "export PATH"},
		{"binary.bin", "Content of binary.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ReadFileContent("/home/user", tt.name)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ReadFileContent(%q) = %q, want it to contain %q", tt.name, got, tt.contains)
			}
		})
	}
}
