package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/analyzer"
	"github.com/ludo-technologies/rsscn/internal/parser"
	"github.com/ludo-technologies/rsscn/internal/version"
)

// CFGServiceImpl implements the CFGService interface
type CFGServiceImpl struct {
	parser     *parser.Parser
	parseCache *ParseCache
	logger     *log.Logger
}

// NewCFGService creates a new CFG service
func NewCFGService() *CFGServiceImpl {
	return &CFGServiceImpl{
		parser: parser.New(),
	}
}

// SetParseCache sets a pre-populated parse cache
func (s *CFGServiceImpl) SetParseCache(cache *ParseCache) {
	s.parseCache = cache
}

// SetLogger sets an optional logger passed on to the CFG builder
func (s *CFGServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Build parses one file and builds the graphs of the requested functions
func (s *CFGServiceImpl) Build(ctx context.Context, req domain.CFGRequest) (*domain.CFGResponse, error) {
	if req.FilePath == "" {
		return nil, domain.NewInvalidInputError("a file path must be specified", nil)
	}

	parsed, ok := s.parseCache.Get(req.FilePath)
	if !ok {
		parsed = parseFile(ctx, s.parser, req.FilePath, false)
	}
	if parsed.ParseErr != nil {
		return nil, domain.NewParseError(req.FilePath, parsed.ParseErr)
	}

	builder := analyzer.NewCFGBuilder()
	if s.logger != nil {
		builder.SetLogger(s.logger)
	}

	functions := parser.Functions(parsed.ParseResult.AST)
	selected, err := selectFunctions(functions, req.Functions, req.FilePath)
	if err != nil {
		return nil, err
	}

	response := &domain.CFGResponse{
		RunID:       uuid.NewString(),
		FilePath:    req.FilePath,
		Functions:   make([]domain.FunctionCFGInfo, 0, len(selected)),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}
	if len(functions) == 0 {
		response.Warnings = append(response.Warnings, fmt.Sprintf("[%s] No functions found in file", req.FilePath))
	}

	for _, fn := range selected {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cfg, err := builder.Build(fn.Node.Body)
		if err != nil {
			response.Warnings = append(response.Warnings, fmt.Sprintf("[%s:%s] CFG construction failed: %v", req.FilePath, fn.Name, err))
			continue
		}
		response.Functions = append(response.Functions, describeCFG(fn, cfg))
	}

	return response, nil
}

// selectFunctions keeps the named functions in source order. Every requested
// name must exist.
func selectFunctions(functions []parser.FunctionInfo, names []string, filePath string) ([]parser.FunctionInfo, error) {
	if len(names) == 0 {
		return functions, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []parser.FunctionInfo
	found := make(map[string]bool, len(names))
	for _, fn := range functions {
		if wanted[fn.Name] {
			selected = append(selected, fn)
			found[fn.Name] = true
		}
	}

	for _, name := range names {
		if !found[name] {
			return nil, domain.NewFunctionNotFoundError(name, filePath)
		}
	}
	return selected, nil
}

// describeCFG converts a graph into its report model
func describeCFG(fn parser.FunctionInfo, cfg *analyzer.ControlFlowGraph) domain.FunctionCFGInfo {
	reach := analyzer.NewReachabilityAnalyzer(cfg).AnalyzeReachability()
	stats := cfg.Stats()

	info := domain.FunctionCFGInfo{
		Name:      fn.Name,
		StartLine: fn.Node.Location.StartLine,
		EndLine:   fn.Node.Location.EndLine,
		Stats: domain.CFGStatsInfo{
			Nodes:            stats.Nodes,
			Edges:            stats.Edges,
			ReachableNodes:   stats.ReachableNodes,
			ReachableEdges:   stats.ReachableEdges,
			UnreachableNodes: stats.Nodes - stats.ReachableNodes,
			Complexity:       stats.Complexity,
		},
		Nodes: make([]domain.CFGNodeInfo, 0, cfg.Graph.NodeCount()),
		Edges: make([]domain.CFGEdgeInfo, 0, cfg.Graph.EdgeCount()),
		Trace: cfg.DepthFirstTraversalTrace(),
		Dot:   cfg.CreateDotDescription(),
	}

	cfg.Graph.ForEachNode(func(idx analyzer.NodeIndex, data analyzer.CFGNodeData) {
		node := domain.CFGNodeInfo{
			ID:        int(idx),
			Kind:      data.Kind.String(),
			Label:     data.Text(),
			Reachable: int(idx) < len(reach.Reachable) && reach.Reachable[idx],
		}
		if data.Element != nil {
			node.Line = data.Element.Location.StartLine
		}
		info.Nodes = append(info.Nodes, node)
	})

	cfg.Graph.ForEachEdge(func(_ analyzer.EdgeIndex, source, target analyzer.NodeIndex, data analyzer.CFGEdgeData) {
		edge := domain.CFGEdgeInfo{
			Source: int(source),
			Target: int(target),
			Kind:   data.Kind.String(),
		}
		for _, scope := range data.ExitingScopes {
			edge.ExitingScopes = append(edge.ExitingScopes, scopeName(scope))
		}
		info.Edges = append(info.Edges, edge)
	})

	return info
}

// scopeName names a loop by its label, or by keyword and line
func scopeName(loop *parser.Node) string {
	if loop == nil {
		return ""
	}
	if loop.Label != "" {
		return "'" + loop.Label
	}
	return fmt.Sprintf("%s@%d", strings.ToLower(string(loop.Type)), loop.Location.StartLine)
}
