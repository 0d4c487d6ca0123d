package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/service"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleBuildCFG handles the build_cfg tool
func (h *HandlerSet) HandleBuildCFG(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	format := domain.OutputFormatJSON
	if f, ok := args["format"].(string); ok && f != "" {
		resolved, err := service.NewOutputFormatResolver().DetermineGraph(f, "")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format = resolved
	}

	req := domain.CFGRequest{
		FilePath:     path,
		Functions:    stringSlice(args["functions"]),
		OutputFormat: format,
		OutputWriter: io.Discard,
		ConfigPath:   h.deps.ConfigPath(),
	}

	useCase := h.deps.BuildCFGUseCase()
	result, err := useCase.BuildAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("CFG construction failed: %v", err)), nil
	}

	if format == domain.OutputFormatJSON {
		return jsonResult(result)
	}

	text, err := service.NewCFGFormatter().Format(result, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format graphs: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleFindExitPoints handles the find_exit_points tool
func (h *HandlerSet) HandleFindExitPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	req := domain.ExitPointRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: io.Discard,
		ConfigPath:   h.deps.ConfigPath(),
	}
	if om, ok := args["only_multiple"].(bool); ok {
		req.OnlyMultiple = om
	}
	if rt, ok := args["report_tail"].(bool); ok {
		req.ReportTail = domain.BoolPtr(rt)
	}
	if sb, ok := args["sort_by"].(string); ok {
		req.SortBy = domain.ExitPointSortCriteria(sb)
	}

	useCase, err := h.deps.BuildExitPointUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create analyzer: %v", err)), nil
	}

	result, err := useCase.AnalyzeAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("exit point analysis failed: %v", err)), nil
	}

	maxResults := 0
	if mr, ok := args["max_results"].(float64); ok {
		maxResults = int(mr)
	}

	var responseData interface{}
	switch outputMode(args) {
	case "full":
		responseData = result
	case "detailed":
		responseData = formatExitPointsDetailed(result, maxResults)
	default:
		responseData = formatExitPointsSummary(result, maxResults)
	}

	return jsonResult(responseData)
}

// HandleFindDeadCode handles the find_dead_code tool
func (h *HandlerSet) HandleFindDeadCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	req := domain.DeadCodeRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: io.Discard,
		ConfigPath:   h.deps.ConfigPath(),
	}
	if ms, ok := args["min_severity"].(string); ok {
		switch ms {
		case "info":
			req.MinSeverity = domain.DeadCodeSeverityInfo
		case "warning":
			req.MinSeverity = domain.DeadCodeSeverityWarning
		case "critical":
			req.MinSeverity = domain.DeadCodeSeverityCritical
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid min_severity: %s", ms)), nil
		}
	}

	useCase, err := h.deps.BuildDeadCodeUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create analyzer: %v", err)), nil
	}

	result, err := useCase.AnalyzeAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dead code analysis failed: %v", err)), nil
	}

	maxResults := 0
	if mr, ok := args["max_results"].(float64); ok {
		maxResults = int(mr)
	}

	var responseData interface{}
	switch outputMode(args) {
	case "full":
		responseData = result
	case "detailed":
		responseData = formatDeadCodeDetailed(result, maxResults)
	default:
		responseData = formatDeadCodeSummary(result, maxResults)
	}

	return jsonResult(responseData)
}

// outputMode returns the output_mode argument, "summary" by default
func outputMode(args map[string]interface{}) string {
	if om, ok := args["output_mode"].(string); ok && om != "" {
		return om
	}
	return "summary"
}

func stringSlice(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// formatExitPointsSummary formats exit point results in compact summary mode
func formatExitPointsSummary(result *domain.ExitPointResponse, maxResults int) map[string]interface{} {
	functions := []string{}

	for _, file := range result.Files {
		for _, fn := range file.Functions {
			if maxResults > 0 && len(functions) >= maxResults {
				break
			}
			// Format: "file:line: name (N exits, M returns)"
			functions = append(functions, fmt.Sprintf("%s:%d: %s (%d exits, %d returns)",
				file.FilePath, fn.StartLine, fn.Name, len(fn.ExitPoints), fn.Returns))
		}
	}

	return map[string]interface{}{
		"functions": functions,
		"summary": map[string]interface{}{
			"total_functions":                 result.Summary.TotalFunctions,
			"total_exit_points":               result.Summary.TotalExitPoints,
			"functions_with_multiple_returns": result.Summary.FunctionsWithMultipleReturns,
			"max_returns":                     result.Summary.MaxReturns,
			"exit_points_by_kind":             result.Summary.ExitPointsByKind,
			"files_analyzed":                  result.Summary.TotalFiles,
		},
	}
}

// formatExitPointsDetailed lists every exit point with its location
func formatExitPointsDetailed(result *domain.ExitPointResponse, maxResults int) map[string]interface{} {
	type Exit struct {
		File     string `json:"file"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Function string `json:"function"`
		Kind     string `json:"kind"`
		Code     string `json:"code"`
	}

	exits := []Exit{}
	total := 0

	for _, file := range result.Files {
		for _, fn := range file.Functions {
			for _, ep := range fn.ExitPoints {
				total++
				if maxResults > 0 && len(exits) >= maxResults {
					continue
				}
				exits = append(exits, Exit{
					File:     file.FilePath,
					Line:     ep.StartLine,
					Column:   ep.StartCol + 1,
					Function: fn.Name,
					Kind:     ep.Kind,
					Code:     ep.Code,
				})
			}
		}
	}

	return map[string]interface{}{
		"exit_points": exits,
		"summary": map[string]interface{}{
			"total_exit_points":               total,
			"functions_with_multiple_returns": result.Summary.FunctionsWithMultipleReturns,
			"files_analyzed":                  result.Summary.TotalFiles,
		},
	}
}

// formatDeadCodeSummary formats dead code results in compact summary mode
func formatDeadCodeSummary(result *domain.DeadCodeResponse, maxResults int) map[string]interface{} {
	issues := []string{}

	for _, file := range result.Files {
		for _, function := range file.Functions {
			for _, finding := range function.Findings {
				if maxResults == 0 || len(issues) < maxResults {
					// Format: "file:line: reason (severity)"
					issues = append(issues, fmt.Sprintf("%s:%d: %s (%s)",
						finding.Location.FilePath,
						finding.Location.StartLine,
						finding.Reason,
						finding.Severity))
				}
			}
		}
	}

	return map[string]interface{}{
		"issues":  issues,
		"summary": deadCodeCounts(result),
	}
}

// formatDeadCodeDetailed formats dead code results with structured details
func formatDeadCodeDetailed(result *domain.DeadCodeResponse, maxResults int) map[string]interface{} {
	type Issue struct {
		File      string `json:"file"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
		Function  string `json:"function"`
		Reason    string `json:"reason"`
		Severity  string `json:"severity"`
		Code      string `json:"code"`
	}

	issues := []Issue{}

	for _, file := range result.Files {
		for _, function := range file.Functions {
			for _, finding := range function.Findings {
				if maxResults == 0 || len(issues) < maxResults {
					issues = append(issues, Issue{
						File:      finding.Location.FilePath,
						StartLine: finding.Location.StartLine,
						EndLine:   finding.Location.EndLine,
						Function:  function.Name,
						Reason:    finding.Reason,
						Severity:  string(finding.Severity),
						Code:      finding.Code,
					})
				}
			}
		}
	}

	return map[string]interface{}{
		"issues":  issues,
		"summary": deadCodeCounts(result),
	}
}

func deadCodeCounts(result *domain.DeadCodeResponse) map[string]interface{} {
	return map[string]interface{}{
		"total_issues":    result.Summary.TotalFindings,
		"critical_issues": result.Summary.CriticalFindings,
		"warning_issues":  result.Summary.WarningFindings,
		"info_issues":     result.Summary.InfoFindings,
		"files_analyzed":  result.Summary.TotalFiles,
	}
}
