package domain

// Default file selection
const (
	// RustFileExtension is the only extension collected from directories
	RustFileExtension = ".rs"

	// ConfigFileName is the dedicated configuration file searched upward from the target
	ConfigFileName = ".rsscn.toml"

	// CargoManifestName carries configuration under [package.metadata.rsscn]
	CargoManifestName = "Cargo.toml"

	// DefaultReportDirectory is created under the working directory when no
	// output directory is configured
	DefaultReportDirectory = ".rsscn/reports"
)

// Default exit point settings
const (
	// DefaultMaxReturns disables the explicit-return budget of `check`
	DefaultMaxReturns = 0
)

// DefaultIncludePatterns returns the glob patterns of files analyzed by default
func DefaultIncludePatterns() []string {
	return []string{"**/*.rs"}
}

// DefaultExcludePatterns returns the glob patterns skipped by default.
// Cargo build output is excluded separately by directory name.
func DefaultExcludePatterns() []string {
	return []string{}
}

// SkippedDirectories lists directory names that never contain analyzable sources
func SkippedDirectories() []string {
	return []string{"target", "node_modules", ".git", ".hg", ".svn"}
}
