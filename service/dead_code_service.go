package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/analyzer"
	"github.com/ludo-technologies/rsscn/internal/parser"
	"github.com/ludo-technologies/rsscn/internal/version"
)

const deadCodeAnalysis = "dead_code"

// DeadCodeServiceImpl implements the DeadCodeService interface
type DeadCodeServiceImpl struct {
	parser      *parser.Parser
	parseCache  *ParseCache
	resultCache *ResultCache
	logger      *log.Logger
}

// NewDeadCodeService creates a new dead code service implementation
func NewDeadCodeService() *DeadCodeServiceImpl {
	return &DeadCodeServiceImpl{
		parser: parser.New(),
	}
}

// SetParseCache sets a pre-populated parse cache
func (s *DeadCodeServiceImpl) SetParseCache(cache *ParseCache) {
	s.parseCache = cache
}

// SetResultCache enables reuse of results from earlier runs
func (s *DeadCodeServiceImpl) SetResultCache(cache *ResultCache) {
	s.resultCache = cache
}

// SetLogger sets an optional logger for per-function failures
func (s *DeadCodeServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Analyze performs dead code analysis on multiple files
func (s *DeadCodeServiceImpl) Analyze(ctx context.Context, req domain.DeadCodeRequest) (*domain.DeadCodeResponse, error) {
	var allFiles []domain.FileDeadCode
	var warnings []string
	var errors []string
	filesProcessed := 0
	totalFunctions := 0

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
			continue // Skip this file but continue with others
		}

		filesProcessed++
		if fileResult != nil {
			totalFunctions += fileResult.TotalFunctions
			allFiles = append(allFiles, *fileResult)
		}
	}

	filteredFiles := s.filterFiles(allFiles, req)
	sortedFiles := s.sortFiles(filteredFiles, req.SortBy)

	summary := s.generateSummary(sortedFiles, filesProcessed)
	summary.TotalFunctions = totalFunctions

	return &domain.DeadCodeResponse{
		RunID:       uuid.NewString(),
		Files:       sortedFiles,
		Summary:     summary,
		Warnings:    warnings,
		Errors:      errors,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
		Config:      s.buildConfigForResponse(req),
	}, nil
}

// AnalyzeFile analyzes a single Rust file for dead code. The result is not
// filtered by severity.
func (s *DeadCodeServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.DeadCodeRequest) (*domain.FileDeadCode, error) {
	fileResult, _, fileErrors := s.analyzeFile(ctx, filePath, req)

	if len(fileErrors) > 0 {
		return nil, domain.NewAnalysisError(fmt.Sprintf("failed to analyze file %s", filePath), fmt.Errorf("%s", strings.Join(fileErrors, "; ")))
	}

	return fileResult, nil
}

// analyzeFile performs dead code analysis on a single file
func (s *DeadCodeServiceImpl) analyzeFile(ctx context.Context, filePath string, req domain.DeadCodeRequest) (*domain.FileDeadCode, []string, []string) {
	var warnings []string
	var errors []string

	content, err := readContent(s.parseCache, filePath)
	if err != nil {
		errors = append(errors, fmt.Sprintf("[%s] Failed to read file: %v", filePath, err))
		return nil, warnings, errors
	}

	cacheKey := ResultCacheKey(deadCodeAnalysis, filePath, content, oracleOptions(req.DivergingMacros, req.DivergingFunctions)...)
	var cached domain.FileDeadCode
	if s.resultCache.Get(cacheKey, &cached) {
		if cached.TotalFunctions == 0 {
			warnings = append(warnings, fmt.Sprintf("[%s] No functions found in file", filePath))
		}
		return &cached, warnings, errors
	}

	parsed := loadFile(ctx, s.parseCache, s.parser, filePath, true)
	if parsed.ParseErr != nil {
		errors = append(errors, fmt.Sprintf("[%s] Parse error: %v", filePath, parsed.ParseErr))
		return nil, warnings, errors
	}
	if parsed.CFGErr != nil {
		errors = append(errors, fmt.Sprintf("[%s] CFG construction failed: %v", filePath, parsed.CFGErr))
		return nil, warnings, errors
	}

	fileResult := &domain.FileDeadCode{
		FilePath:       filePath,
		Functions:      []domain.FunctionDeadCode{},
		TotalFunctions: len(parsed.CFGs),
	}

	if len(parsed.CFGs) == 0 {
		warnings = append(warnings, fmt.Sprintf("[%s] No functions found in file", filePath))
	}

	oracle := parser.NewNeverOracle(req.DivergingMacros, req.DivergingFunctions)
	totalNodes := 0
	deadNodes := 0

	for _, fn := range parsed.CFGs {
		result := analyzer.NewDeadCodeDetector(fn.CFG,
			analyzer.WithFilePath(filePath),
			analyzer.WithFunctionName(fn.Name),
			analyzer.WithOracle(oracle),
		).Detect()
		if result == nil {
			warnings = append(warnings, fmt.Sprintf("[%s:%s] Failed to analyze dead code for function", filePath, fn.Name))
			continue
		}

		totalNodes += result.TotalNodes
		deadNodes += result.DeadNodes

		if len(result.Findings) == 0 {
			continue
		}

		functionResult := s.convertToFunctionDeadCode(result)
		fileResult.Functions = append(fileResult.Functions, functionResult)
		fileResult.TotalFindings += len(functionResult.Findings)
		fileResult.AffectedFunctions++

		if s.logger != nil {
			s.logger.Printf("%s: %s has %d dead code findings", filePath, fn.Name, len(functionResult.Findings))
		}
	}

	if totalNodes > 0 {
		fileResult.DeadCodeRatio = float64(deadNodes) / float64(totalNodes)
	}

	if err := s.resultCache.Put(cacheKey, deadCodeAnalysis, fileResult); err != nil {
		warnings = append(warnings, fmt.Sprintf("[%s] Failed to cache result: %v", filePath, err))
	}

	return fileResult, warnings, errors
}

// convertToFunctionDeadCode converts analyzer results to domain model
func (s *DeadCodeServiceImpl) convertToFunctionDeadCode(result *analyzer.DeadCodeResult) domain.FunctionDeadCode {
	findings := make([]domain.DeadCodeFinding, 0, len(result.Findings))

	for _, analyzerFinding := range result.Findings {
		findings = append(findings, domain.DeadCodeFinding{
			Location: domain.DeadCodeLocation{
				FilePath:  analyzerFinding.FilePath,
				StartLine: analyzerFinding.StartLine,
				EndLine:   analyzerFinding.EndLine,
			},
			FunctionName: analyzerFinding.FunctionName,
			Code:         analyzerFinding.Code,
			Reason:       string(analyzerFinding.Reason),
			Severity:     s.convertSeverity(analyzerFinding.Severity),
			Description:  analyzerFinding.Description,
			Context:      analyzerFinding.Context,
			NodeID:       analyzerFinding.NodeID,
		})
	}

	functionResult := domain.FunctionDeadCode{
		Name:           result.FunctionName,
		FilePath:       result.FilePath,
		Findings:       findings,
		TotalNodes:     result.TotalNodes,
		DeadNodes:      result.DeadNodes,
		ReachableRatio: result.ReachableRatio,
	}
	functionResult.CalculateSeverityCounts()

	return functionResult
}

// convertSeverity converts analyzer severity to domain severity
func (s *DeadCodeServiceImpl) convertSeverity(analyzerSeverity analyzer.SeverityLevel) domain.DeadCodeSeverity {
	switch analyzerSeverity {
	case analyzer.SeverityLevelCritical:
		return domain.DeadCodeSeverityCritical
	case analyzer.SeverityLevelWarning:
		return domain.DeadCodeSeverityWarning
	case analyzer.SeverityLevelInfo:
		return domain.DeadCodeSeverityInfo
	default:
		return domain.DeadCodeSeverityWarning
	}
}

// filterFiles drops findings below the minimum severity, then functions and
// files left without findings
func (s *DeadCodeServiceImpl) filterFiles(files []domain.FileDeadCode, req domain.DeadCodeRequest) []domain.FileDeadCode {
	var filtered []domain.FileDeadCode

	for _, file := range files {
		var filteredFunctions []domain.FunctionDeadCode
		for _, function := range file.Functions {
			function.Findings = s.filterFindingsBySeverity(function.Findings, req.MinSeverity)
			if len(function.Findings) == 0 {
				continue
			}
			for i := range function.Findings {
				function.Findings[i].Context = limitContext(function.Findings[i].Context, req.ContextLines)
			}
			function.CalculateSeverityCounts()
			filteredFunctions = append(filteredFunctions, function)
		}

		if len(filteredFunctions) > 0 {
			filteredFile := file
			filteredFile.Functions = filteredFunctions
			filteredFile.TotalFindings = s.countTotalFindings(filteredFunctions)
			filteredFile.AffectedFunctions = len(filteredFunctions)
			filtered = append(filtered, filteredFile)
		}
	}

	return filtered
}

// filterFindingsBySeverity filters findings by minimum severity level
func (s *DeadCodeServiceImpl) filterFindingsBySeverity(findings []domain.DeadCodeFinding, minSeverity domain.DeadCodeSeverity) []domain.DeadCodeFinding {
	var filtered []domain.DeadCodeFinding
	for _, finding := range findings {
		if finding.Severity.IsAtLeast(minSeverity) {
			filtered = append(filtered, finding)
		}
	}
	return filtered
}

// limitContext splits context statements into lines and keeps the first n
func limitContext(stmts []string, n int) []string {
	var lines []string
	for _, stmt := range stmts {
		for _, line := range strings.Split(stmt, "\n") {
			if len(lines) == n {
				return lines
			}
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		}
	}
	return lines
}

// sortFiles sorts files based on the specified criteria
func (s *DeadCodeServiceImpl) sortFiles(files []domain.FileDeadCode, sortBy domain.DeadCodeSortCriteria) []domain.FileDeadCode {
	for i := range files {
		functions := files[i].Functions
		switch sortBy {
		case domain.DeadCodeSortByFunction:
			sort.SliceStable(functions, func(a, b int) bool { return functions[a].Name < functions[b].Name })
		default:
			sort.SliceStable(functions, func(a, b int) bool {
				return firstFindingLine(functions[a]) < firstFindingLine(functions[b])
			})
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		switch sortBy {
		case domain.DeadCodeSortBySeverity:
			li, lj := s.getHighestSeverityLevel(files[i]), s.getHighestSeverityLevel(files[j])
			if li != lj {
				return li > lj
			}
			return files[i].FilePath < files[j].FilePath
		default:
			return files[i].FilePath < files[j].FilePath
		}
	})
	return files
}

func firstFindingLine(function domain.FunctionDeadCode) int {
	if len(function.Findings) == 0 {
		return 0
	}
	return function.Findings[0].Location.StartLine
}

// getHighestSeverityLevel gets the highest severity level in a file
func (s *DeadCodeServiceImpl) getHighestSeverityLevel(file domain.FileDeadCode) int {
	maxLevel := 0
	for _, function := range file.Functions {
		for _, finding := range function.Findings {
			if level := finding.Severity.Level(); level > maxLevel {
				maxLevel = level
			}
		}
	}
	return maxLevel
}

// generateSummary generates aggregate statistics
func (s *DeadCodeServiceImpl) generateSummary(files []domain.FileDeadCode, filesProcessed int) domain.DeadCodeSummary {
	summary := domain.DeadCodeSummary{
		TotalFiles:        filesProcessed,
		FilesWithDeadCode: len(files),
		FindingsByReason:  make(map[string]int),
	}

	for _, file := range files {
		summary.TotalFunctions += file.TotalFunctions
		summary.FunctionsWithDeadCode += file.AffectedFunctions

		for _, function := range file.Functions {
			summary.TotalFindings += len(function.Findings)
			summary.CriticalFindings += function.CriticalCount
			summary.WarningFindings += function.WarningCount
			summary.InfoFindings += function.InfoCount
			summary.TotalNodes += function.TotalNodes
			summary.DeadNodes += function.DeadNodes

			for _, finding := range function.Findings {
				summary.FindingsByReason[finding.Reason]++
			}
		}
	}

	if summary.TotalNodes > 0 {
		summary.OverallDeadRatio = float64(summary.DeadNodes) / float64(summary.TotalNodes)
	}

	return summary
}

// countTotalFindings counts total findings in functions
func (s *DeadCodeServiceImpl) countTotalFindings(functions []domain.FunctionDeadCode) int {
	total := 0
	for _, function := range functions {
		total += len(function.Findings)
	}
	return total
}

// buildConfigForResponse builds configuration for response metadata
func (s *DeadCodeServiceImpl) buildConfigForResponse(req domain.DeadCodeRequest) interface{} {
	return map[string]interface{}{
		"min_severity":        req.MinSeverity,
		"sort_by":             req.SortBy,
		"show_context":        domain.BoolValue(req.ShowContext, false),
		"context_lines":       req.ContextLines,
		"include_patterns":    req.IncludePatterns,
		"exclude_patterns":    req.ExcludePatterns,
		"diverging_macros":    orDefault(req.DivergingMacros, parser.DefaultDivergingMacros),
		"diverging_functions": orDefault(req.DivergingFunctions, parser.DefaultDivergingFunctions),
	}
}

// readContent returns the file content, from the parse cache when possible
func readContent(cache *ParseCache, filePath string) ([]byte, error) {
	if r, ok := cache.Get(filePath); ok && r.Content != nil {
		return r.Content, nil
	}
	return os.ReadFile(filePath)
}

// oracleOptions renders the never-type oracle configuration as cache key options
func oracleOptions(macros, functions []string) []string {
	return []string{
		"macros=" + strings.Join(orDefault(macros, parser.DefaultDivergingMacros), ","),
		"functions=" + strings.Join(orDefault(functions, parser.DefaultDivergingFunctions), ","),
	}
}

func orDefault(values, defaults []string) []string {
	if values == nil {
		return defaults
	}
	return values
}
