package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dehvCurtis/rustdefend/internal/config"
)

const configTemplate = `# rustdefend project configuration

# Detector ids whose findings are never reported.
ignore = []

# Glob patterns (slash-separated, ** supported) for files to skip.
ignore_files = []

# Report only findings at or above these thresholds.
# min_severity = "low"
# min_confidence = "low"
`

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter " + config.FileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, config.FileName)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			return os.WriteFile(path, []byte(configTemplate), 0o644)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the config file to")
	return cmd
}
