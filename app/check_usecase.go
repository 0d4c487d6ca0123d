package app

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

// CheckUseCase runs dead code and exit point analysis over the same files and
// turns the findings into gate violations
type CheckUseCase struct {
	deadCode     domain.DeadCodeService
	exits        domain.ExitPointService
	fileReader   domain.FileReader
	configLoader domain.CheckConfigurationLoader
	progress     domain.ProgressManager
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(
	deadCode domain.DeadCodeService,
	exits domain.ExitPointService,
	fileReader domain.FileReader,
	configLoader domain.CheckConfigurationLoader,
) *CheckUseCase {
	return &CheckUseCase{
		deadCode:     deadCode,
		exits:        exits,
		fileReader:   fileReader,
		configLoader: configLoader,
	}
}

// WithProgress sets the progress manager used while parsing
func (uc *CheckUseCase) WithProgress(progress domain.ProgressManager) *CheckUseCase {
	uc.progress = progress
	return uc
}

// Execute analyzes the request paths and returns the violations found.
// Per-file failures are reported in the response and do not fail the run.
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest) (*domain.CheckResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("no input paths specified"))
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	if finalReq.FailOn.Level() == 0 {
		return nil, domain.NewInvalidInputError("invalid fail-on severity: "+string(finalReq.FailOn), nil)
	}
	if finalReq.MaxReturns < 0 {
		return nil, domain.NewInvalidInputError("max returns cannot be negative", nil)
	}

	files, err := ResolveFilePaths(
		uc.fileReader,
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no Rust files found in the specified paths", nil)
	}

	uc.shareParseCache(ctx, files)

	response := &domain.CheckResponse{RunID: uuid.NewString()}

	deadReq := *domain.DefaultDeadCodeRequest()
	deadReq.Paths = files
	deadReq.MinSeverity = finalReq.FailOn
	deadReq.SortBy = domain.DeadCodeSortByFile
	deadReq.ContextLines = 0
	deadReq.DivergingMacros = finalReq.DivergingMacros
	deadReq.DivergingFunctions = finalReq.DivergingFunctions

	deadResp, err := uc.deadCode.Analyze(ctx, deadReq)
	if err != nil {
		return nil, domain.NewAnalysisError("dead code analysis failed", err)
	}
	response.Errors = appendUnique(response.Errors, deadResp.Errors...)

	for _, file := range deadResp.Files {
		for _, fn := range file.Functions {
			for _, finding := range fn.Findings {
				if finalReq.AllowDeadCode {
					response.Ignored++
					continue
				}
				response.Violations = append(response.Violations, domain.CheckViolation{
					Rule:     domain.CheckRuleDeadCode,
					FilePath: file.FilePath,
					Line:     finding.Location.StartLine,
					Function: fn.Name,
					Message:  fmt.Sprintf("%s (%s)", finding.Description, finding.Reason),
				})
			}
		}
	}

	if finalReq.MaxReturns > 0 {
		exitReq := *domain.DefaultExitPointRequest()
		exitReq.Paths = files
		exitReq.DivergingMacros = finalReq.DivergingMacros
		exitReq.DivergingFunctions = finalReq.DivergingFunctions

		exitResp, err := uc.exits.Analyze(ctx, exitReq)
		if err != nil {
			return nil, domain.NewAnalysisError("exit point analysis failed", err)
		}
		response.Errors = appendUnique(response.Errors, exitResp.Errors...)

		for _, file := range exitResp.Files {
			for _, fn := range file.Functions {
				if fn.Returns <= finalReq.MaxReturns {
					continue
				}
				response.Violations = append(response.Violations, domain.CheckViolation{
					Rule:     domain.CheckRuleMaxReturns,
					FilePath: file.FilePath,
					Line:     fn.StartLine,
					Function: fn.Name,
					Message:  fmt.Sprintf("function has %d explicit returns (max %d)", fn.Returns, finalReq.MaxReturns),
				})
			}
		}
	}

	sort.SliceStable(response.Violations, func(i, j int) bool {
		a, b := response.Violations[i], response.Violations[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.Line < b.Line
	})

	return response, nil
}

// shareParseCache parses every file once, with CFGs, for both analyses
func (uc *CheckUseCase) shareParseCache(ctx context.Context, files []string) {
	deadAware, deadOK := uc.deadCode.(svc.ParseCacheAware)
	exitAware, exitOK := uc.exits.(svc.ParseCacheAware)
	if !deadOK && !exitOK {
		return
	}

	cfg := svc.ParseCachePopulatorConfig{BuildCFGs: true}
	if uc.progress != nil {
		uc.progress.Initialize(len(files))
		uc.progress.Start()
		cfg.OnFileDone = uc.progress.Update
	}
	cache := svc.PopulateParseCache(ctx, files, cfg)
	if uc.progress != nil {
		uc.progress.Complete(ctx.Err() == nil)
	}

	if deadOK {
		deadAware.SetParseCache(cache)
	}
	if exitOK {
		exitAware.SetParseCache(cache)
	}
}

func (uc *CheckUseCase) loadAndMergeConfig(req domain.CheckRequest) (domain.CheckRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.CheckRequest
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

// appendUnique appends the messages not yet in list. Both analyses report
// the same unreadable files.
func appendUnique(list []string, messages ...string) []string {
	for _, msg := range messages {
		if !slices.Contains(list, msg) {
			list = append(list, msg)
		}
	}
	return list
}
