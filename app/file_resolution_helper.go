package app

import "github.com/ludo-technologies/rsscn/domain"

// ResolveFilePaths resolves the Rust files to analyze. Paths that all name
// existing Rust files are returned as given; otherwise files are collected
// from the paths with the include and exclude patterns.
//
// The check use case collects files once and hands the result to both
// analyses, which then resolve without walking the tree again.
func ResolveFilePaths(
	fileReader domain.FileReader,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	allFiles := len(paths) > 0
	for _, path := range paths {
		if !fileReader.IsValidRustFile(path) {
			allFiles = false
			break
		}
		exists, err := fileReader.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	if allFiles {
		return paths, nil
	}

	return fileReader.CollectRustFiles(paths, recursive, includePatterns, excludePatterns)
}
