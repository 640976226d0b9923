// Package pathutil provides centralized path management for billed data files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResolver manages paths for the bill store and the visit history database.
type PathResolver struct {
	dataDir     string
	storePath   string
	historyPath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the root directory for all data files (e.g., ./data)
	DataDir string
	// StorePath is the path to the bbolt bill and session store
	StorePath string
	// HistoryPath is the path to the SQLite visit history database
	HistoryPath string
}

// New creates a new PathResolver with the given configuration.
// If StorePath is empty, it defaults to {DataDir}/billed.db
// If HistoryPath is empty, it defaults to {DataDir}/history/visits.db
func New(config Config) *PathResolver {
	storePath := config.StorePath
	if storePath == "" {
		storePath = filepath.Join(config.DataDir, "billed.db")
	}

	historyPath := config.HistoryPath
	if historyPath == "" {
		historyPath = filepath.Join(config.DataDir, "history", "visits.db")
	}

	return &PathResolver{
		dataDir:     config.DataDir,
		storePath:   storePath,
		historyPath: historyPath,
	}
}

// GetDataDir returns the data root directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetStorePath returns the bill store file path.
func (p *PathResolver) GetStorePath() string {
	return p.storePath
}

// GetHistoryPath returns the visit history database path.
func (p *PathResolver) GetHistoryPath() string {
	return p.historyPath
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// EnsureDirs creates the data directory and the parent directories of the
// store and history files.
func (p *PathResolver) EnsureDirs() error {
	if p.dataDir != "" {
		if err := p.EnsureDir(p.dataDir); err != nil {
			return err
		}
	}
	for _, f := range []string{p.storePath, p.historyPath} {
		if err := p.EnsureParentDir(f); err != nil {
			return err
		}
	}
	return nil
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
