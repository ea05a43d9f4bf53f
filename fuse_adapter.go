//go:build linux || darwin
// +build linux darwin

package forgeterm

import (
	"context"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// sessionTree gives FUSE nodes locked access to a session's filesystem. The
// same lock must be held by whoever runs commands on the session.
type sessionTree struct {
	mu  sync.Locker
	vfs *VirtualFileSystem
}

func (t *sessionTree) stat(path string) (FileSystemNode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vfs.Stat(path)
}

func (t *sessionTree) list(path string) []FileSystemNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vfs.List(path)
}

func (t *sessionTree) content(path string) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	parent, name := splitPath(path)
	return []byte(t.vfs.ReadFileContent(parent, name))
}

func nodeMode(n FileSystemNode) uint32 {
	if n.IsDir() {
		return syscall.S_IFDIR | 0o555
	}
	return syscall.S_IFREG | 0o444
}

// SessionDir is a read-only directory of a session's virtual filesystem.
type SessionDir struct {
	fs.Inode
	tree *sessionTree
	path string
}

var (
	_ fs.NodeReaddirer = (*SessionDir)(nil)
	_ fs.NodeLookuper  = (*SessionDir)(nil)
	_ fs.NodeGetattrer = (*SessionDir)(nil)
)

// NewSessionRoot creates the FUSE root node for s, rooted at its home
// directory. lock must guard every ProcessCommand call on s.
func NewSessionRoot(s *Session, lock sync.Locker) *SessionDir {
	return &SessionDir{
		tree: &sessionTree{mu: lock, vfs: s.fs},
		path: s.home,
	}
}

// Readdir implements NodeReaddirer.
func (d *SessionDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	nodes := d.tree.list(d.path)
	entries := make([]fuse.DirEntry, 0, len(nodes))
	for _, n := range nodes {
		entries = append(entries, fuse.DirEntry{Name: n.Name, Mode: nodeMode(n)})
	}
	return fs.NewListDirStream(entries), 0
}

// Lookup implements NodeLookuper.
func (d *SessionDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := joinPath(d.path, name)
	n, ok := d.tree.stat(childPath)
	if !ok {
		return nil, syscall.ENOENT
	}

	var child fs.InodeEmbedder
	if n.IsDir() {
		child = &SessionDir{tree: d.tree, path: childPath}
	} else {
		f := &SessionFile{tree: d.tree, path: childPath}
		f.fillAttr(n, &out.Attr)
		child = f
	}
	out.Mode = nodeMode(n)
	return d.NewInode(ctx, child, fs.StableAttr{Mode: nodeMode(n) & syscall.S_IFMT}), 0
}

// Getattr implements NodeGetattrer.
func (d *SessionDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o555
	if n, ok := d.tree.stat(d.path); ok {
		out.Mtime = uint64(n.LastModified.Unix())
	}
	return 0
}

// SessionFile is a read-only file whose bytes are the canned content the
// cat builtin prints.
type SessionFile struct {
	fs.Inode
	tree *sessionTree
	path string
}

var (
	_ fs.NodeOpener    = (*SessionFile)(nil)
	_ fs.NodeGetattrer = (*SessionFile)(nil)
	_ fs.NodeReader    = (*SessionFile)(nil)
)

func (f *SessionFile) fillAttr(n FileSystemNode, attr *fuse.Attr) {
	attr.Mode = syscall.S_IFREG | 0o444
	attr.Size = uint64(len(f.tree.content(f.path)))
	attr.Mtime = uint64(n.LastModified.Unix())
}

// Open implements NodeOpener. Writes are refused.
func (f *SessionFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_APPEND|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

// Getattr implements NodeGetattrer.
func (f *SessionFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	n, ok := f.tree.stat(f.path)
	if !ok {
		return syscall.ENOENT
	}
	f.fillAttr(n, &out.Attr)
	return 0
}

// Read implements NodeReader.
func (f *SessionFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data := f.tree.content(f.path)
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

// MountSession mounts a read-only view of s's home directory at mountPoint.
// The returned server must be unmounted by the caller.
func MountSession(s *Session, lock sync.Locker, mountPoint string, options *fuse.MountOptions) (*fuse.Server, error) {
	opts := &fs.Options{}
	if options != nil {
		opts.MountOptions = *options
	} else {
		opts.MountOptions = fuse.MountOptions{
			FsName:  "forgeterm",
			Name:    "forgeterm",
			Options: []string{"ro"},
		}
	}

	return fs.Mount(mountPoint, NewSessionRoot(s, lock), opts)
}
