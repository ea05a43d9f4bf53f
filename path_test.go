package forgeterm

import "testing"

func TestNormalizePath(t *testing.T) {
	const home = "/home/user"

	tests := []struct {
		name  string
		input string
		cwd   string
		want  string
	}{
		{"tilde", "~", "/tmp", home},
		{"tilde child", "~/project/src", "/", "/home/user/project/src"},
		{"absolute", "/etc/hosts", "/home/user", "/etc/hosts"},
		{"redundant slashes", "//usr///bin/", "/", "/usr/bin"},
		{"relative", "src", "/home/user/project", "/home/user/project/src"},
		{"dot segments", "./src/./main.rs", "/home/user/project", "/home/user/project/src/main.rs"},
		{"parent", "..", "/home/user/project", "/home/user"},
		{"parent of parent", "../..", "/home/user/project", "/home"},
		{"parent past root", "../../../../..", "/home/user", "/"},
		{"absolute with parent", "/home/user/../user/project", "/", "/home/user/project"},
		{"root", "/", "/home/user", "/"},
		{"empty resolves to cwd", "", "/home/user/project", "/home/user/project"},
		{"trailing slash", "documents/", "/home/user", "/home/user/documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.input, tt.cwd, home)
			if got != tt.want {
				t.Errorf("NormalizePath(%q, %q) = %q, want %q", tt.input, tt.cwd, got, tt.want)
			}
		})
	}
}

func TestNormalizePathIdempotent(t *testing.T) {
	inputs := []string{
		"~", "~/a/../b", "/", "//a//b//", "a/b/../c", "../../x", ".", "./.", "/home/user/./project/..",
		"weird name/with space", "....", "a/.../b",
	}
	cwds := []string{"/", "/home/user", "/home/user/project/src"}

	for _, cwd := range cwds {
		for _, p := range inputs {
			once := NormalizePath(p, cwd, "/home/user")
			twice := NormalizePath(once, cwd, "/home/user")
			if once != twice {
				t.Errorf("not idempotent for %q in %q: %q then %q", p, cwd, once, twice)
			}
		}
	}
}

func TestIsContained(t *testing.T) {
	roots := []string{"/home/user"}

	tests := []struct {
		path string
		want bool
	}{
		{"/home/user", true},
		{"/home/user/project", true},
		{"/home/user/project/src/main.rs", true},
		{"/home", false},
		{"/", false},
		{"/home/username", false},
		{"/etc/passwd", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsContained(tt.path, roots); got != tt.want {
				t.Errorf("IsContained(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	if !IsContained("/anything/at/all", []string{"/"}) {
		t.Error("Expected root to contain every absolute path")
	}
	if IsContained("/home/user", nil) {
		t.Error("Expected no roots to contain nothing")
	}
}

func TestContainmentMonotonic(t *testing.T) {
	roots := []string{"/home/user", "/srv/data"}
	for _, root := range roots {
		for _, child := range []string{"x", "x/y", ".hidden", "a b"} {
			q := root + "/" + child
			if !IsContained(q, roots) {
				t.Errorf("Expected %q to be contained under %q", q, root)
			}
		}
	}
}

func TestSplitAndJoinPath(t *testing.T) {
	tests := []struct {
		path, parent, name string
	}{
		{"/home/user/project", "/home/user", "project"},
		{"/home", "/", "home"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		parent, name := splitPath(tt.path)
		if parent != tt.parent || name != tt.name {
			t.Errorf("splitPath(%q) = (%q, %q), want (%q, %q)", tt.path, parent, name, tt.parent, tt.name)
		}
		if tt.name != "" && joinPath(parent, name) != tt.path {
			t.Errorf("joinPath(%q, %q) = %q, want %q", parent, name, joinPath(parent, name), tt.path)
		}
	}
}

func TestDisplayPath(t *testing.T) {
	tests := map[string]string{
		"/home/user":         "~",
		"/home/user/project": "~/project",
		"/home/username":     "/home/username",
		"/etc":               "/etc",
	}
	for in, want := range tests {
		if got := displayPath(in, "/home/user"); got != want {
			t.Errorf("displayPath(%q) = %q, want %q", in, got, want)
		}
	}
}
