package response

import (
	"os"
	"path"

	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/text/cases"
)

// NewFileSystem returns the filesystem requests are served from. Paths
// are resolved against the working directory. Without contain they are
// used as given, so "../" and absolute paths reach outside it; with
// contain they are clamped inside it.
func NewFileSystem(contain bool) (FileSystem, error) {
	if !contain {
		return osfs.Default, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return osfs.New(wd, osfs.WithBoundOS()), nil
}

// FindCaseInsensitive looks in the directory of name for an entry whose
// name matches the base of name under Unicode case folding, and returns
// its path. Only the last path element is matched loosely.
func FindCaseInsensitive(fs FileSystem, name string) (string, bool) {
	dir, base := path.Split(name)
	if base == "" {
		return "", false
	}
	if dir == "" {
		dir = "."
	}

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return "", false
	}

	fold := cases.Fold()
	want := fold.String(base)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if fold.String(e.Name()) == want {
			if dir == "." {
				return e.Name(), true
			}
			return path.Join(dir, e.Name()), true
		}
	}
	return "", false
}
