package forgeterm

import (
	"strings"
)

// NormalizePath resolves inputPath against currentDir and homeDir and returns
// a clean absolute POSIX path ("/a/b", never a trailing slash, "/" for root).
//
// "~" and "~/x" expand to homeDir. Relative paths are resolved against
// currentDir. ".." pops one segment and never climbs above the root.
func NormalizePath(inputPath, currentDir, homeDir string) string {
	var base string

	switch {
	case inputPath == "~":
		base, inputPath = homeDir, ""
	case strings.HasPrefix(inputPath, "~/"):
		base, inputPath = homeDir, inputPath[2:]
	case strings.HasPrefix(inputPath, "/"):
		base = "/"
	default:
		base = currentDir
	}

	stack := make([]string, 0, 8)
	stack = pushSegments(stack, base)
	stack = pushSegments(stack, inputPath)

	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/")
}

// pushSegments applies the segments of path onto stack
func pushSegments(stack []string, path string) []string {
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}
	return stack
}

// IsContained reports whether absolutePath equals one of allowedRoots or lies
// beneath one of them. Both sides are compared verbatim, so callers must pass
// normalized paths.
func IsContained(absolutePath string, allowedRoots []string) bool {
	for _, root := range allowedRoots {
		if absolutePath == root {
			return true
		}
		if root == "/" {
			return strings.HasPrefix(absolutePath, "/")
		}
		if strings.HasPrefix(absolutePath, root+"/") {
			return true
		}
	}
	return false
}

// splitPath returns the parent directory and base name of a normalized
// absolute path. The root has no parent and returns ("", "").
func splitPath(absolutePath string) (string, string) {
	if absolutePath == "/" || absolutePath == "" {
		return "", ""
	}
	idx := strings.LastIndex(absolutePath, "/")
	if idx == 0 {
		return "/", absolutePath[1:]
	}
	return absolutePath[:idx], absolutePath[idx+1:]
}

// joinPath builds a child path from parent + name.
func joinPath(parentPath, name string) string {
	if parentPath == "/" {
		return "/" + name
	}
	return parentPath + "/" + name
}

// displayPath renders an absolute path with the home directory shortened to "~".
func displayPath(absolutePath, homeDir string) string {
	if absolutePath == homeDir {
		return "~"
	}
	if strings.HasPrefix(absolutePath, homeDir+"/") {
		return "~" + absolutePath[len(homeDir):]
	}
	return absolutePath
}
