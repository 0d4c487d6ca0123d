package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/analyzer"
	"github.com/ludo-technologies/rsscn/internal/parser"
	"github.com/ludo-technologies/rsscn/internal/version"
)

const exitPointAnalysis = "exit_points"

// maxSnippetLength bounds the code shown for an exit point
const maxSnippetLength = 80

// ExitPointServiceImpl implements the ExitPointService interface
type ExitPointServiceImpl struct {
	parser      *parser.Parser
	parseCache  *ParseCache
	resultCache *ResultCache
	logger      *log.Logger
}

// NewExitPointService creates a new exit point service
func NewExitPointService() *ExitPointServiceImpl {
	return &ExitPointServiceImpl{
		parser: parser.New(),
	}
}

// SetParseCache sets a pre-populated parse cache
func (s *ExitPointServiceImpl) SetParseCache(cache *ParseCache) {
	s.parseCache = cache
}

// SetResultCache enables reuse of results from earlier runs
func (s *ExitPointServiceImpl) SetResultCache(cache *ResultCache) {
	s.resultCache = cache
}

// SetLogger sets an optional logger
func (s *ExitPointServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Analyze collects the exit points of every function in req.Paths
func (s *ExitPointServiceImpl) Analyze(ctx context.Context, req domain.ExitPointRequest) (*domain.ExitPointResponse, error) {
	var files []domain.FileExitPoints
	var warnings []string
	var errors []string

	summary := domain.ExitPointSummary{
		ExitPointsByKind: make(map[string]int),
	}

	for _, filePath := range req.Paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fileResult, fileWarnings, fileErrors := s.analyzeFile(ctx, filePath, req)
		warnings = append(warnings, fileWarnings...)
		if len(fileErrors) > 0 {
			errors = append(errors, fileErrors...)
			continue
		}

		summary.TotalFiles++
		s.accumulate(&summary, fileResult)

		filtered := s.filterFile(*fileResult, req)
		if len(filtered.Functions) > 0 {
			files = append(files, filtered)
		}
	}

	for _, file := range files {
		for _, fn := range file.Functions {
			summary.TotalExitPoints += len(fn.ExitPoints)
			for _, ep := range fn.ExitPoints {
				summary.ExitPointsByKind[ep.Kind]++
			}
		}
	}

	return &domain.ExitPointResponse{
		RunID:       uuid.NewString(),
		Files:       s.sortFiles(files, req.SortBy),
		Summary:     summary,
		Warnings:    warnings,
		Errors:      errors,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

// AnalyzeFile returns every function of one file with all of its exit points
func (s *ExitPointServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.ExitPointRequest) (*domain.FileExitPoints, error) {
	fileResult, _, fileErrors := s.analyzeFile(ctx, filePath, req)
	if len(fileErrors) > 0 {
		return nil, domain.NewAnalysisError(fmt.Sprintf("failed to analyze file %s", filePath), fmt.Errorf("%s", strings.Join(fileErrors, "; ")))
	}
	return fileResult, nil
}

func (s *ExitPointServiceImpl) analyzeFile(ctx context.Context, filePath string, req domain.ExitPointRequest) (*domain.FileExitPoints, []string, []string) {
	var warnings []string
	var errors []string

	content, err := readContent(s.parseCache, filePath)
	if err != nil {
		errors = append(errors, fmt.Sprintf("[%s] Failed to read file: %v", filePath, err))
		return nil, warnings, errors
	}

	cacheKey := ResultCacheKey(exitPointAnalysis, filePath, content, oracleOptions(req.DivergingMacros, req.DivergingFunctions)...)
	var cached domain.FileExitPoints
	if s.resultCache.Get(cacheKey, &cached) {
		if len(cached.Functions) == 0 {
			warnings = append(warnings, fmt.Sprintf("[%s] No functions found in file", filePath))
		}
		return &cached, warnings, errors
	}

	parsed := loadFile(ctx, s.parseCache, s.parser, filePath, false)
	if parsed.ParseErr != nil {
		errors = append(errors, fmt.Sprintf("[%s] Parse error: %v", filePath, parsed.ParseErr))
		return nil, warnings, errors
	}

	oracle := parser.NewNeverOracle(req.DivergingMacros, req.DivergingFunctions)
	summaries := analyzer.NewExitPointAnalyzer(oracle).AnalyzeFile(parsed.ParseResult.AST)

	fileResult := &domain.FileExitPoints{
		FilePath:  filePath,
		Functions: make([]domain.FunctionExitPoints, 0, len(summaries)),
	}
	if len(summaries) == 0 {
		warnings = append(warnings, fmt.Sprintf("[%s] No functions found in file", filePath))
	}

	for _, summary := range summaries {
		fileResult.Functions = append(fileResult.Functions, s.convertSummary(filePath, summary))
	}

	if s.logger != nil {
		s.logger.Printf("%s: analyzed exit points of %d functions", filePath, len(summaries))
	}

	if err := s.resultCache.Put(cacheKey, exitPointAnalysis, fileResult); err != nil {
		warnings = append(warnings, fmt.Sprintf("[%s] Failed to cache result: %v", filePath, err))
	}

	return fileResult, warnings, errors
}

// convertSummary converts an analyzer summary to the domain model
func (s *ExitPointServiceImpl) convertSummary(filePath string, summary *analyzer.ExitPointSummary) domain.FunctionExitPoints {
	fn := domain.FunctionExitPoints{
		Name:               summary.FunctionName,
		FilePath:           filePath,
		ExitPoints:         make([]domain.ExitPointInfo, 0, len(summary.ExitPoints)),
		Counts:             make(map[string]int, len(summary.Counts)),
		Returns:            summary.Returns(),
		HasMultipleReturns: summary.HasMultipleReturns,
	}
	if summary.Node != nil {
		fn.StartLine = summary.Node.Location.StartLine
		fn.EndLine = summary.Node.Location.EndLine
	}

	for kind, count := range summary.Counts {
		fn.Counts[kind.String()] = count
	}

	for _, ep := range summary.ExitPoints {
		info := domain.ExitPointInfo{Kind: ep.Kind.String()}
		if ep.Node != nil {
			info.StartLine = ep.Node.Location.StartLine
			info.StartCol = ep.Node.Location.StartCol
			info.EndLine = ep.Node.Location.EndLine
			info.Code = snippet(ep.Node.Text)
		}
		fn.ExitPoints = append(fn.ExitPoints, info)
	}

	return fn
}

// accumulate adds the unfiltered statistics of one file to the summary
func (s *ExitPointServiceImpl) accumulate(summary *domain.ExitPointSummary, file *domain.FileExitPoints) {
	for _, fn := range file.Functions {
		summary.TotalFunctions++
		if fn.HasMultipleReturns {
			summary.FunctionsWithMultipleReturns++
		}
		if fn.Returns > summary.MaxReturns {
			summary.MaxReturns = fn.Returns
		}
	}
}

// filterFile applies the OnlyMultiple and ReportTail options
func (s *ExitPointServiceImpl) filterFile(file domain.FileExitPoints, req domain.ExitPointRequest) domain.FileExitPoints {
	reportTail := domain.BoolValue(req.ReportTail, true)
	filtered := domain.FileExitPoints{FilePath: file.FilePath}

	for _, fn := range file.Functions {
		if req.OnlyMultiple && !fn.HasMultipleReturns {
			continue
		}
		if !reportTail {
			fn = dropTailExits(fn)
		}
		filtered.Functions = append(filtered.Functions, fn)
	}
	return filtered
}

func dropTailExits(fn domain.FunctionExitPoints) domain.FunctionExitPoints {
	tailKinds := map[string]bool{
		analyzer.ExitTailExpr.String():      true,
		analyzer.ExitTailStatement.String(): true,
	}

	exits := make([]domain.ExitPointInfo, 0, len(fn.ExitPoints))
	for _, ep := range fn.ExitPoints {
		if !tailKinds[ep.Kind] {
			exits = append(exits, ep)
		}
	}
	counts := make(map[string]int, len(fn.Counts))
	for kind, count := range fn.Counts {
		if !tailKinds[kind] {
			counts[kind] = count
		}
	}

	fn.ExitPoints = exits
	fn.Counts = counts
	return fn
}

// sortFiles orders functions within and across files
func (s *ExitPointServiceImpl) sortFiles(files []domain.FileExitPoints, sortBy domain.ExitPointSortCriteria) []domain.FileExitPoints {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})

	for i := range files {
		functions := files[i].Functions
		sort.SliceStable(functions, func(a, b int) bool {
			switch sortBy {
			case domain.ExitPointSortByName:
				return functions[a].Name < functions[b].Name
			case domain.ExitPointSortByExits:
				if len(functions[a].ExitPoints) != len(functions[b].ExitPoints) {
					return len(functions[a].ExitPoints) > len(functions[b].ExitPoints)
				}
				return functions[a].StartLine < functions[b].StartLine
			default:
				return functions[a].StartLine < functions[b].StartLine
			}
		})
	}
	return files
}

// snippet returns the first line of code, shortened for reports
func snippet(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i]) + " ..."
	}
	if runes := []rune(text); len(runes) > maxSnippetLength {
		text = string(runes[:maxSnippetLength-3]) + "..."
	}
	return text
}
