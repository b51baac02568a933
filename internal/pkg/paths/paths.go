package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	projectRoot string
)

// GetAbsolutePath resolves a path relative to the project root, so the
// template image and config file load regardless of the working directory.
func GetAbsolutePath(relativePath string) string {
	if projectRoot == "" {
		if err := initProjectRoot(); err != nil {
			panic(err)
		}
	}
	return filepath.Join(projectRoot, relativePath)
}

func initProjectRoot() error {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("unable to resolve caller information")
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 10; i++ { // walk up at most 10 levels
		if isProjectRoot(dir) {
			projectRoot = dir
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return fmt.Errorf("project root not found")
}

func isProjectRoot(dir string) bool {
	markers := []string{"go.mod", ".git", "README.md", "project.root"}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
