package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ludo-technologies/rsscn/domain"
)

// FileReaderImpl implements the FileReader interface
type FileReaderImpl struct{}

// NewFileReader creates a new file reader service
func NewFileReader() *FileReaderImpl {
	return &FileReaderImpl{}
}

// CollectRustFiles finds all Rust files in the given paths.
// Explicitly named files are kept even when an include pattern would not match them.
func (f *FileReaderImpl) CollectRustFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			if f.IsValidRustFile(path) && !f.isExcluded(filepath.ToSlash(path), excludePatterns) {
				add(path)
			}
			continue
		}

		dirFiles, err := f.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, file := range dirFiles {
			add(file)
		}
	}

	return files, nil
}

// ReadFile reads the content of a file
func (f *FileReaderImpl) ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return content, nil
}

// IsValidRustFile checks if a path names a Rust source file
func (f *FileReaderImpl) IsValidRustFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), domain.RustFileExtension)
}

// FileExists checks if a regular file exists
func (f *FileReaderImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// collectFromDirectory walks a directory. Patterns are matched against the
// slash separated path relative to dirPath.
func (f *FileReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the rest of the tree is still analyzed
			return nil
		}

		if path == dirPath {
			return nil
		}

		rel, relErr := filepath.Rel(dirPath, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !recursive || f.shouldSkipDirectory(d.Name()) || f.isExcluded(rel+"/", excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !f.IsValidRustFile(path) {
			return nil
		}

		if f.shouldIncludeFile(rel, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// shouldIncludeFile applies exclude patterns first, then include patterns
func (f *FileReaderImpl) shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if f.isExcluded(path, excludePatterns) {
		return false
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if f.matchesPattern(pattern, path) {
			return true
		}
	}
	return false
}

func (f *FileReaderImpl) isExcluded(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if f.matchesPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchesPattern matches a doublestar glob against the path and its base name,
// so `*_test.rs` excludes test files at any depth
func (f *FileReaderImpl) matchesPattern(pattern, path string) bool {
	if matched, _ := doublestar.Match(pattern, path); matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	// `dir/**` also excludes the directory itself
	if trimmed := strings.TrimSuffix(pattern, "/**"); trimmed != pattern {
		if strings.TrimSuffix(path, "/") == trimmed {
			return true
		}
	}
	return false
}

// shouldSkipDirectory checks if a directory should be skipped entirely
func (f *FileReaderImpl) shouldSkipDirectory(dirName string) bool {
	if strings.HasPrefix(dirName, ".") {
		return true
	}
	for _, skip := range domain.SkippedDirectories() {
		if dirName == skip {
			return true
		}
	}
	return false
}

// ValidatePaths validates that all provided paths exist and are accessible
func (f *FileReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
