package testrunner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// walkAndProcessFiles walks a path (file or directory) and invokes onFile for each file.
// It skips common VCS/vendor directories below the root.
func walkAndProcessFiles(root string, onFile func(p string)) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		onFile(root)
		return nil
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if p == root {
				return nil
			}

			name := d.Name()
			if name == "vendor" || name == ".git" || name == "node_modules" || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			return nil
		}

		onFile(p)

		return nil
	})
}
