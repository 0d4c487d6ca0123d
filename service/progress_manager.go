package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ludo-technologies/rsscn/domain"
)

const defaultProgressDescription = "Analyzing Rust files"

// ProgressManagerImpl renders a progress bar on interactive terminals and
// stays silent otherwise
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	bar         *progressbar.ProgressBar
	interactive bool
	description string
	total       int
}

// NewProgressManager creates a progress manager writing to stderr
func NewProgressManager() domain.ProgressManager {
	return &ProgressManagerImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
		description: defaultProgressDescription,
	}
}

// SetDescription changes the label shown next to the bar
func (pm *ProgressManagerImpl) SetDescription(description string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.description = description
	if pm.bar != nil {
		pm.bar.Describe(description)
	}
}

// Initialize records the number of files to process
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.total = maxValue
}

// Start shows the bar
func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureBar(pm.total)
}

// Update moves the bar to processed. The bar is created lazily when Start was skipped.
func (pm *ProgressManagerImpl) Update(processed, total int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.ensureBar(total)
	if pm.bar != nil {
		_ = pm.bar.Set(processed)
	}
}

// Complete finishes the bar
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.finish()
}

// SetWriter redirects the bar. Rendering stays enabled only for terminals.
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer
	if file, ok := writer.(*os.File); ok {
		pm.interactive = term.IsTerminal(int(file.Fd()))
	} else {
		pm.interactive = false
	}
}

// IsInteractive returns true if progress bars are rendered
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// Close finishes the bar if it is still open
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.finish()
}

func (pm *ProgressManagerImpl) finish() {
	if pm.bar != nil && !pm.bar.IsFinished() {
		_ = pm.bar.Finish()
	}
}

// ensureBar creates the bar once; callers hold mu
func (pm *ProgressManagerImpl) ensureBar(max int) {
	if !pm.interactive || pm.bar != nil {
		return
	}

	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}

	pm.bar = progressbar.NewOptions(max,
		progressbar.OptionSetDescription(pm.description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NoOpProgressManager discards all progress. Used by the MCP server, where
// stderr is reserved for logs.
type NoOpProgressManager struct{}

// NewNoOpProgressManager creates a silent progress manager
func NewNoOpProgressManager() domain.ProgressManager {
	return NoOpProgressManager{}
}

func (NoOpProgressManager) Initialize(int) {}
func (NoOpProgressManager) Start() {}
func (NoOpProgressManager) Update(int, int) {}
func (NoOpProgressManager) Complete(bool) {}
func (NoOpProgressManager) SetWriter(io.Writer) {}
func (NoOpProgressManager) IsInteractive() bool { return false }
func (NoOpProgressManager) Close() {}
