package di

import (
	"os"
	"path/filepath"

	"github.com/ssargent/skyactions/pkg/action"
)

func actionsFile(dir string) string {
	return filepath.Join(dir, action.FileName)
}

func removeActionsFile(dir string) error {
	return os.Remove(actionsFile(dir))
}
