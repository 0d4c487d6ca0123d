package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

// ExitPointUseCase orchestrates the exit point analysis workflow
type ExitPointUseCase struct {
	service      domain.ExitPointService
	fileReader   domain.FileReader
	formatter    domain.ExitPointFormatter
	configLoader domain.ExitPointConfigurationLoader
	output       domain.ReportWriter
	progress     domain.ProgressManager
	resultCache  *svc.ResultCache
}

// NewExitPointUseCase creates a new exit point use case
func NewExitPointUseCase(
	service domain.ExitPointService,
	fileReader domain.FileReader,
	formatter domain.ExitPointFormatter,
	configLoader domain.ExitPointConfigurationLoader,
) *ExitPointUseCase {
	return &ExitPointUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       svc.NewFileOutputWriter(nil),
	}
}

func (uc *ExitPointUseCase) prepareAnalysis(ctx context.Context, req domain.ExitPointRequest) (domain.ExitPointRequest, error) {
	if len(req.Paths) == 0 {
		return req, domain.NewInvalidInputError("invalid request", fmt.Errorf("no input paths specified"))
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return req, domain.NewInvalidInputError("invalid request", fmt.Errorf("output writer or output path is required"))
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
	prepareServices(ctx, uc.service, files, false, uc.progress, uc.resultCache)
	return finalReq, nil
}

// Execute performs the complete exit point analysis workflow
func (uc *ExitPointUseCase) Execute(ctx context.Context, req domain.ExitPointRequest) error {
	finalReq, err := uc.prepareAnalysis(ctx, req)
	if err != nil {
		return err
	}

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return domain.NewAnalysisError("exit point analysis failed", err)
	}
	saveResultCache(uc.resultCache)

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

// AnalyzeAndReturn performs exit point analysis and returns the response without formatting
func (uc *ExitPointUseCase) AnalyzeAndReturn(ctx context.Context, req domain.ExitPointRequest) (*domain.ExitPointResponse, error) {
	finalReq, err := uc.prepareAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return nil, domain.NewAnalysisError("exit point analysis failed", err)
	}
	saveResultCache(uc.resultCache)

	return response, nil
}

func (uc *ExitPointUseCase) loadAndMergeConfig(req domain.ExitPointRequest) (domain.ExitPointRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.ExitPointRequest
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

// ExitPointUseCaseBuilder provides a builder pattern for creating ExitPointUseCase
type ExitPointUseCaseBuilder struct {
	service      domain.ExitPointService
	fileReader   domain.FileReader
	formatter    domain.ExitPointFormatter
	configLoader domain.ExitPointConfigurationLoader
	output       domain.ReportWriter
	progress     domain.ProgressManager
	resultCache  *svc.ResultCache
}

// NewExitPointUseCaseBuilder creates a new builder
func NewExitPointUseCaseBuilder() *ExitPointUseCaseBuilder {
	return &ExitPointUseCaseBuilder{}
}

func (b *ExitPointUseCaseBuilder) WithService(service domain.ExitPointService) *ExitPointUseCaseBuilder {
	b.service = service
	return b
}

func (b *ExitPointUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *ExitPointUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

func (b *ExitPointUseCaseBuilder) WithFormatter(formatter domain.ExitPointFormatter) *ExitPointUseCaseBuilder {
	b.formatter = formatter
	return b
}

func (b *ExitPointUseCaseBuilder) WithConfigLoader(configLoader domain.ExitPointConfigurationLoader) *ExitPointUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

func (b *ExitPointUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *ExitPointUseCaseBuilder {
	b.output = output
	return b
}

func (b *ExitPointUseCaseBuilder) WithProgress(progress domain.ProgressManager) *ExitPointUseCaseBuilder {
	b.progress = progress
	return b
}

func (b *ExitPointUseCaseBuilder) WithResultCache(cache *svc.ResultCache) *ExitPointUseCaseBuilder {
	b.resultCache = cache
	return b
}

// Build creates the ExitPointUseCase with the configured dependencies
func (b *ExitPointUseCaseBuilder) Build() (*ExitPointUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("exit point service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := NewExitPointUseCase(b.service, b.fileReader, b.formatter, b.configLoader)
	if b.output != nil {
		uc.output = b.output
	}
	uc.progress = b.progress
	uc.resultCache = b.resultCache
	return uc, nil
}
