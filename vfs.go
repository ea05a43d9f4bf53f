package forgeterm

import (
	"fmt"
	"strings"
	"time"
)

// NodeKind distinguishes files from directories.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDirectory
)

func (k NodeKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// FileSystemNode is a single entry in a directory listing.
type FileSystemNode struct {
	Kind         NodeKind  `json:"kind"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Permissions  string    `json:"permissions"`
	LastModified time.Time `json:"last_modified"`
}

// IsDir reports whether the node is a directory.
func (n FileSystemNode) IsDir() bool {
	return n.Kind == KindDirectory
}

const (
	dirPermissions  = "drwxr-xr-x"
	filePermissions = "-rw-r--r--"
)

// VirtualFileSystem is an in-memory directory tree keyed by normalized
// absolute path. Each key maps to the ordered listing of that directory.
//
// Every key other than "/" appears as a directory entry in its parent's
// listing. The type has no internal locking: a VirtualFileSystem belongs to
// exactly one Session and must not be used concurrently.
type VirtualFileSystem struct {
	dirs map[string][]*FileSystemNode
	now  func() time.Time
}

// NewVirtualFileSystem creates a filesystem containing only the root.
func NewVirtualFileSystem(now func() time.Time) *VirtualFileSystem {
	if now == nil {
		now = time.Now
	}
	return &VirtualFileSystem{
		dirs: map[string][]*FileSystemNode{"/": {}},
		now:  now,
	}
}

// List returns a copy of the listing at path. A path with no listing yields
// an empty slice; absence and emptiness are not distinguished here.
func (v *VirtualFileSystem) List(path string) []FileSystemNode {
	entries := v.dirs[path]
	out := make([]FileSystemNode, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}

// IsDirectory reports whether path is a directory key.
func (v *VirtualFileSystem) IsDirectory(path string) bool {
	_, ok := v.dirs[path]
	return ok
}

// Lookup finds name in the listing of parentPath.
func (v *VirtualFileSystem) Lookup(parentPath, name string) (FileSystemNode, bool) {
	if n := v.find(parentPath, name); n != nil {
		return *n, true
	}
	return FileSystemNode{}, false
}

// Stat resolves an absolute path to its node. The root is reported as a
// directory named "/".
func (v *VirtualFileSystem) Stat(path string) (FileSystemNode, bool) {
	if path == "/" {
		return FileSystemNode{Kind: KindDirectory, Name: "/", Size: 4096, Permissions: dirPermissions}, true
	}
	parent, name := splitPath(path)
	return v.Lookup(parent, name)
}

func (v *VirtualFileSystem) find(parentPath, name string) *FileSystemNode {
	for _, e := range v.dirs[parentPath] {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// CreateDirectory appends a directory node named name to parentPath and
// creates its empty listing.
func (v *VirtualFileSystem) CreateDirectory(parentPath, name string) error {
	if _, ok := v.dirs[parentPath]; !ok {
		return fmt.Errorf("%s: %w", parentPath, ErrNotFound)
	}
	if v.find(parentPath, name) != nil {
		return fmt.Errorf("%s: %w", joinPath(parentPath, name), ErrAlreadyExists)
	}

	v.dirs[parentPath] = append(v.dirs[parentPath], &FileSystemNode{
		Kind:         KindDirectory,
		Name:         name,
		Permissions:  dirPermissions,
		LastModified: v.now(),
	})
	v.dirs[joinPath(parentPath, name)] = []*FileSystemNode{}
	return nil
}

// TouchFile updates lastModified of an existing entry, or appends a new
// zero-size file. Repeated calls never create duplicates.
func (v *VirtualFileSystem) TouchFile(parentPath, name string) error {
	if _, ok := v.dirs[parentPath]; !ok {
		return fmt.Errorf("%s: %w", parentPath, ErrNotFound)
	}
	if n := v.find(parentPath, name); n != nil {
		n.LastModified = v.now()
		return nil
	}

	v.dirs[parentPath] = append(v.dirs[parentPath], &FileSystemNode{
		Kind:         KindFile,
		Name:         name,
		Permissions:  filePermissions,
		LastModified: v.now(),
	})
	return nil
}

// ReadFileContent returns the canned body for a file. No bytes are stored;
// the content is chosen from the file's suffix.
func (v *VirtualFileSystem) ReadFileContent(path, name string) string {
	return cannedContent(name)
}

// Count returns the number of directory keys, root included.
func (v *VirtualFileSystem) Count() int {
	return len(v.dirs)
}

// addFile is used while seeding to give files a realistic size.
func (v *VirtualFileSystem) addFile(parentPath, name string, size int64) {
	if err := v.TouchFile(parentPath, name); err != nil {
		return
	}
	if n := v.find(parentPath, name); n != nil {
		n.Size = size
	}
}

// mkdirAll creates every missing directory along an absolute path.
func (v *VirtualFileSystem) mkdirAll(path string) {
	current := "/"
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if v.find(current, seg) == nil {
			_ = v.CreateDirectory(current, seg)
		}
		current = joinPath(current, seg)
	}
}

// NewSeededFileSystem builds the tree every session starts with.
func NewSeededFileSystem(now func() time.Time) *VirtualFileSystem {
	v := NewVirtualFileSystem(now)

	v.mkdirAll("/home/user/project/src")
	v.mkdirAll("/home/user/documents")

	v.addFile("/home/user", ".bashrc", int64(len(cannedContent(".bashrc"))))
	v.addFile("/home/user/documents", "notes.txt", int64(len(cannedContent("notes.txt"))))
	v.addFile("/home/user/project", "Cargo.toml", int64(len(cannedContent("Cargo.toml"))))
	v.addFile("/home/user/project", "README.md", int64(len(cannedContent("README.md"))))
	v.addFile("/home/user/project", "package.json", int64(len(cannedContent("package.json"))))
	v.addFile("/home/user/project/src", "main.rs", int64(len(cannedContent("main.rs"))))
	v.addFile("/home/user/project/src", "lib.rs", int64(len(cannedContent("lib.rs"))))

	return v
}

var suffixContent = []struct {
	suffix  string
	content string
}{
	{".rs", `fn main() {
    println!("Hello from Rust Terminal Forge!");
}`},
	{".toml", `[package]
name = "rust-terminal-forge"
version = "0.1.0"
edition = "2021"

[dependencies]`},
	{".md", `# Rust Terminal Forge

A browser-hosted terminal with a sandboxed virtual filesystem.`},
	{".json", `{
  "name": "rust-terminal-forge",
  "version": "0.1.0",
  "private": true
}`},
	{".txt", "Plain text file."},
	{".sh", "#!/bin/sh\necho \"hello\""},
	{".js", "console.log('Hello from JavaScript');"},
	{".ts", "const greeting: string = 'Hello from TypeScript';"},
	{".py", "print('Hello from Python')"},
	{".bashrc", `export PATH="$HOME/.cargo/bin:$PATH"
alias ll='ls -la'`},
}

func cannedContent(name string) string {
	for _, sc := range suffixContent {
		if strings.HasSuffix(name, sc.suffix) {
			return sc.content
		}
	}
	return fmt.Sprintf("Content of %s", name)
}
