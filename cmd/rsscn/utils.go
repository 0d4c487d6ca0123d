package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/service"
)

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// resolveOutputDirectory determines the output directory from configuration.
// Configuration errors are returned rather than hidden.
func resolveOutputDirectory(configPath, targetPath string) (string, error) {
	cfg, err := config.LoadConfigWithTarget(configPath, targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg != nil && cfg.Output.Directory != "" {
		return cfg.Output.Directory, nil
	}

	// Reports go under the working directory, never into the analyzed sources
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.FromSlash(domain.DefaultReportDirectory), nil
	}
	return filepath.Join(cwd, filepath.FromSlash(domain.DefaultReportDirectory)), nil
}

// generateOutputFilePath returns a timestamped report path inside the
// configured report directory, creating the directory
func generateOutputFilePath(command, extension, configPath, targetPath string) (string, error) {
	filename := generateTimestampedFileName(command, extension)
	outputDir, err := resolveOutputDirectory(configPath, targetPath)
	if err != nil {
		return "", err
	}

	if mkErr := os.MkdirAll(outputDir, 0o755); mkErr != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, mkErr)
	}
	return filepath.Join(outputDir, filename), nil
}

// getTargetPathFromArgs extracts the first argument as target path, or returns empty string
func getTargetPathFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// resolveReportDestination decides where a report goes. Text goes to stdout
// unless an explicit output path is given; structured formats selected by a
// flag go to a timestamped file.
func resolveReportDestination(cmd *cobra.Command, command string, format domain.OutputFormat, extension, outputPath, configPath string, args []string) (io.Writer, string, error) {
	if outputPath != "" {
		return nil, outputPath, nil
	}
	if extension == "" {
		return cmd.OutOrStdout(), "", nil
	}
	path, err := generateOutputFilePath(command, extension, configPath, getTargetPathFromArgs(args))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate output path: %w", err)
	}
	return nil, path, nil
}

// newLogger returns a stderr logger when --verbose is set, nil otherwise
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil || !verbose {
		return nil
	}
	return log.New(cmd.ErrOrStderr(), "rsscn: ", log.Ltime)
}

// openResultCache returns the result cache enabled by the [cache] section, or nil
func openResultCache(configPath, targetPath string) *service.ResultCache {
	cfg, err := config.LoadConfigWithTarget(configPath, targetPath)
	if err != nil || cfg == nil || !cfg.Cache.Enabled {
		return nil
	}
	return service.NewResultCache(cfg.Cache.Directory)
}

// newProgressManager returns a progress bar on stderr, or a silent manager when quiet
func newProgressManager(cmd *cobra.Command, quiet bool) domain.ProgressManager {
	if quiet {
		return service.NewNoOpProgressManager()
	}
	pm := service.NewProgressManager()
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		pm.SetWriter(w)
	}
	return pm
}
