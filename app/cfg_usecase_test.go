package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

type mockCFGService struct {
	mock.Mock
}

func (m *mockCFGService) Build(ctx context.Context, req domain.CFGRequest) (*domain.CFGResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CFGResponse), args.Error(1)
}

type mockCFGFormatter struct {
	mock.Mock
}

func (m *mockCFGFormatter) Format(response *domain.CFGResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(response, format)
	return args.String(0), args.Error(1)
}

func (m *mockCFGFormatter) Write(response *domain.CFGResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

func TestCFGUseCase_Execute(t *testing.T) {
	var buf bytes.Buffer
	service := &mockCFGService{}
	fileReader := &MockFileReader{}
	formatter := &mockCFGFormatter{}

	req := domain.CFGRequest{FilePath: "src/lib.rs", OutputFormat: domain.OutputFormatDOT, OutputWriter: &buf}
	response := &domain.CFGResponse{FilePath: "src/lib.rs"}

	fileReader.On("IsValidRustFile", "src/lib.rs").Return(true)
	fileReader.On("FileExists", "src/lib.rs").Return(true, nil)
	service.On("Build", mock.Anything, req).Return(response, nil)
	formatter.On("Write", response, domain.OutputFormatDOT, &buf).Return(nil)

	uc := NewCFGUseCase(service, fileReader, formatter)
	require.NoError(t, uc.Execute(context.Background(), req))

	service.AssertExpectations(t)
	formatter.AssertExpectations(t)
}

func TestCFGUseCase_Errors(t *testing.T) {
	tests := []struct {
		name       string
		req        domain.CFGRequest
		setupMocks func(*mockCFGService, *MockFileReader)
		wantCode   domain.ErrorCode
	}{
		{
			name:     "missing file path",
			req:      domain.CFGRequest{OutputFormat: domain.OutputFormatDOT},
			wantCode: domain.ErrCodeInvalidInput,
		},
		{
			name:     "unsupported format",
			req:      domain.CFGRequest{FilePath: "src/lib.rs", OutputFormat: "svg"},
			wantCode: domain.ErrCodeUnsupportedFormat,
		},
		{
			name: "not a Rust file",
			req:  domain.CFGRequest{FilePath: "Cargo.toml", OutputFormat: domain.OutputFormatDOT},
			setupMocks: func(_ *mockCFGService, fr *MockFileReader) {
				fr.On("IsValidRustFile", "Cargo.toml").Return(false)
			},
			wantCode: domain.ErrCodeInvalidInput,
		},
		{
			name: "missing file",
			req:  domain.CFGRequest{FilePath: "src/gone.rs", OutputFormat: domain.OutputFormatDOT},
			setupMocks: func(_ *mockCFGService, fr *MockFileReader) {
				fr.On("IsValidRustFile", "src/gone.rs").Return(true)
				fr.On("FileExists", "src/gone.rs").Return(false, nil)
			},
			wantCode: domain.ErrCodeFileNotFound,
		},
		{
			name: "unknown function keeps its code",
			req:  domain.CFGRequest{FilePath: "src/lib.rs", Functions: []string{"nope"}, OutputFormat: domain.OutputFormatDOT},
			setupMocks: func(s *mockCFGService, fr *MockFileReader) {
				fr.On("IsValidRustFile", "src/lib.rs").Return(true)
				fr.On("FileExists", "src/lib.rs").Return(true, nil)
				s.On("Build", mock.Anything, mock.Anything).Return(nil, domain.NewFunctionNotFoundError("nope", "src/lib.rs"))
			},
			wantCode: domain.ErrCodeFunctionNotFound,
		},
		{
			name: "other failures are analysis errors",
			req:  domain.CFGRequest{FilePath: "src/lib.rs", OutputFormat: domain.OutputFormatDOT},
			setupMocks: func(s *mockCFGService, fr *MockFileReader) {
				fr.On("IsValidRustFile", "src/lib.rs").Return(true)
				fr.On("FileExists", "src/lib.rs").Return(true, nil)
				s.On("Build", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			wantCode: domain.ErrCodeAnalysisError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockCFGService{}
			fileReader := &MockFileReader{}
			if tt.setupMocks != nil {
				tt.setupMocks(service, fileReader)
			}

			uc := NewCFGUseCase(service, fileReader, &mockCFGFormatter{})
			_, err := uc.BuildAndReturn(context.Background(), tt.req)

			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestCFGUseCase_WithRealServices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn early(x: i32) -> i32 {\n    if x > 0 {\n        return x;\n    }\n    0\n}\n"), 0o644))

	uc := NewCFGUseCase(svc.NewCFGService(), svc.NewFileReader(), svc.NewCFGFormatter()).
		WithOutputWriter(svc.NewFileOutputWriter(io.Discard))

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), domain.CFGRequest{
		FilePath:     path,
		OutputFormat: domain.OutputFormatDOT,
		OutputWriter: &buf,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "// early")
	assert.Contains(t, buf.String(), "digraph")
}
