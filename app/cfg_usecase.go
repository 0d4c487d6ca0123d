package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

// CFGUseCase builds and renders the control flow graphs of one file
type CFGUseCase struct {
	service    domain.CFGService
	fileReader domain.FileReader
	formatter  domain.CFGFormatter
	output     domain.ReportWriter
}

// NewCFGUseCase creates a new CFG use case
func NewCFGUseCase(service domain.CFGService, fileReader domain.FileReader, formatter domain.CFGFormatter) *CFGUseCase {
	return &CFGUseCase{
		service:    service,
		fileReader: fileReader,
		formatter:  formatter,
		output:     svc.NewFileOutputWriter(nil),
	}
}

// WithOutputWriter replaces the report writer
func (uc *CFGUseCase) WithOutputWriter(output domain.ReportWriter) *CFGUseCase {
	uc.output = output
	return uc
}

func (uc *CFGUseCase) validateFile(req domain.CFGRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !uc.fileReader.IsValidRustFile(req.FilePath) {
		return domain.NewInvalidInputError(fmt.Sprintf("not a valid Rust file: %s", req.FilePath), nil)
	}

	exists, err := uc.fileReader.FileExists(req.FilePath)
	if err != nil {
		return domain.NewFileNotFoundError(req.FilePath, err)
	}
	if !exists {
		return domain.NewFileNotFoundError(req.FilePath, fmt.Errorf("file does not exist"))
	}
	return nil
}

// Execute builds the graphs and writes them in the requested format
func (uc *CFGUseCase) Execute(ctx context.Context, req domain.CFGRequest) error {
	response, err := uc.BuildAndReturn(ctx, req)
	if err != nil {
		return err
	}

	var out io.Writer
	if req.OutputPath == "" {
		out = req.OutputWriter
	}
	if err := uc.output.Write(out, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, req.OutputFormat, w)
	}); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// BuildAndReturn builds the graphs without formatting them
func (uc *CFGUseCase) BuildAndReturn(ctx context.Context, req domain.CFGRequest) (*domain.CFGResponse, error) {
	if err := uc.validateFile(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Build(ctx, req)
	if err != nil {
		// Parse and lookup failures already carry their own code
		var de domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewAnalysisError("CFG construction failed", err)
	}
	return response, nil
}
