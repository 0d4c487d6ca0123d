package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

// contextAwareFormatter is implemented by formatters that can print the
// statement that ends control before each finding
type contextAwareFormatter interface {
	SetShowContext(show bool)
}

// DeadCodeUseCase orchestrates the dead code analysis workflow
type DeadCodeUseCase struct {
	service      domain.DeadCodeService
	fileReader   domain.FileReader
	formatter    domain.DeadCodeFormatter
	configLoader domain.DeadCodeConfigurationLoader
	output       domain.ReportWriter
	progress     domain.ProgressManager
	resultCache  *svc.ResultCache
}

// NewDeadCodeUseCase creates a new dead code use case
func NewDeadCodeUseCase(
	service domain.DeadCodeService,
	fileReader domain.FileReader,
	formatter domain.DeadCodeFormatter,
	configLoader domain.DeadCodeConfigurationLoader,
) *DeadCodeUseCase {
	return &DeadCodeUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       svc.NewFileOutputWriter(nil),
	}
}

// prepareAnalysis validates the request, merges configuration and collects files
func (uc *DeadCodeUseCase) prepareAnalysis(ctx context.Context, req domain.DeadCodeRequest) (domain.DeadCodeRequest, error) {
	if err := uc.validateRequest(req); err != nil {
		return req, domain.NewInvalidInputError("invalid request", err)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return req, domain.NewConfigError("failed to load configuration", err)
	}
	if err := finalReq.Validate(); err != nil {
		return req, err
	}

	files, err := ResolveFilePaths(
		uc.fileReader,
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
	)
	if err != nil {
		return req, domain.NewFileNotFoundError("failed to collect files", err)
	}

	if len(files) == 0 {
		return req, domain.NewInvalidInputError("no Rust files found in the specified paths", nil)
	}

	finalReq.Paths = files
	prepareServices(ctx, uc.service, files, true, uc.progress, uc.resultCache)
	return finalReq, nil
}

// Execute performs the complete dead code analysis workflow
func (uc *DeadCodeUseCase) Execute(ctx context.Context, req domain.DeadCodeRequest) error {
	finalReq, err := uc.prepareAnalysis(ctx, req)
	if err != nil {
		return err
	}

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return domain.NewAnalysisError("dead code analysis failed", err)
	}
	saveResultCache(uc.resultCache)

	if f, ok := uc.formatter.(contextAwareFormatter); ok {
		f.SetShowContext(domain.BoolValue(finalReq.ShowContext, false))
	}

	var out io.Writer
	if finalReq.OutputPath == "" {
		out = finalReq.OutputWriter
	}
	if err := uc.output.Write(out, finalReq.OutputPath, finalReq.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, finalReq.OutputFormat, w)
	}); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	return nil
}

// AnalyzeAndReturn performs dead code analysis and returns the response without formatting
func (uc *DeadCodeUseCase) AnalyzeAndReturn(ctx context.Context, req domain.DeadCodeRequest) (*domain.DeadCodeResponse, error) {
	finalReq, err := uc.prepareAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return nil, domain.NewAnalysisError("dead code analysis failed", err)
	}
	saveResultCache(uc.resultCache)

	return response, nil
}

// validateRequest checks what must hold before configuration is merged
func (uc *DeadCodeUseCase) validateRequest(req domain.DeadCodeRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer or output path is required")
	}
	if req.ContextLines < 0 {
		return fmt.Errorf("context lines cannot be negative")
	}
	return nil
}

// loadAndMergeConfig loads configuration from file and merges with request
func (uc *DeadCodeUseCase) loadAndMergeConfig(req domain.DeadCodeRequest) (domain.DeadCodeRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.DeadCodeRequest
	var err error

	if req.ConfigPath != "" {
		configReq, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, fmt.Errorf("failed to load config from %s: %w", req.ConfigPath, err)
		}
	} else {
		configReq = uc.configLoader.LoadDefaultConfig(req.Paths[0])
	}

	if configReq != nil {
		merged := uc.configLoader.MergeConfig(configReq, &req)
		return *merged, nil
	}

	return req, nil
}

// DeadCodeUseCaseBuilder provides a builder pattern for creating DeadCodeUseCase
type DeadCodeUseCaseBuilder struct {
	service      domain.DeadCodeService
	fileReader   domain.FileReader
	formatter    domain.DeadCodeFormatter
	configLoader domain.DeadCodeConfigurationLoader
	output       domain.ReportWriter
	progress     domain.ProgressManager
	resultCache  *svc.ResultCache
}

// NewDeadCodeUseCaseBuilder creates a new builder
func NewDeadCodeUseCaseBuilder() *DeadCodeUseCaseBuilder {
	return &DeadCodeUseCaseBuilder{}
}

// WithService sets the dead code service
func (b *DeadCodeUseCaseBuilder) WithService(service domain.DeadCodeService) *DeadCodeUseCaseBuilder {
	b.service = service
	return b
}

// WithFileReader sets the file reader
func (b *DeadCodeUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *DeadCodeUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithFormatter sets the output formatter
func (b *DeadCodeUseCaseBuilder) WithFormatter(formatter domain.DeadCodeFormatter) *DeadCodeUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *DeadCodeUseCaseBuilder) WithConfigLoader(configLoader domain.DeadCodeConfigurationLoader) *DeadCodeUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *DeadCodeUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DeadCodeUseCaseBuilder {
	b.output = output
	return b
}

// WithProgress sets the progress manager used while parsing
func (b *DeadCodeUseCaseBuilder) WithProgress(progress domain.ProgressManager) *DeadCodeUseCaseBuilder {
	b.progress = progress
	return b
}

// WithResultCache sets the on-disk result cache
func (b *DeadCodeUseCaseBuilder) WithResultCache(cache *svc.ResultCache) *DeadCodeUseCaseBuilder {
	b.resultCache = cache
	return b
}

// Build creates the DeadCodeUseCase with the configured dependencies
func (b *DeadCodeUseCaseBuilder) Build() (*DeadCodeUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("dead code service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := NewDeadCodeUseCase(b.service, b.fileReader, b.formatter, b.configLoader)
	if b.output != nil {
		uc.output = b.output
	}
	uc.progress = b.progress
	uc.resultCache = b.resultCache
	return uc, nil
}
