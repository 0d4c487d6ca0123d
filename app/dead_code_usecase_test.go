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

type mockDeadCodeService struct {
	mock.Mock
}

func (m *mockDeadCodeService) Analyze(ctx context.Context, req domain.DeadCodeRequest) (*domain.DeadCodeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeadCodeResponse), args.Error(1)
}

func (m *mockDeadCodeService) AnalyzeFile(ctx context.Context, filePath string, req domain.DeadCodeRequest) (*domain.FileDeadCode, error) {
	args := m.Called(ctx, filePath, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileDeadCode), args.Error(1)
}

type mockDeadCodeFormatter struct {
	mock.Mock
}

func (m *mockDeadCodeFormatter) Format(response *domain.DeadCodeResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(response, format)
	return args.String(0), args.Error(1)
}

func (m *mockDeadCodeFormatter) Write(response *domain.DeadCodeResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

// contextRecordingFormatter also records SetShowContext calls
type contextRecordingFormatter struct {
	mockDeadCodeFormatter
	showContext *bool
}

func (f *contextRecordingFormatter) SetShowContext(show bool) {
	f.showContext = &show
}

type mockDeadCodeConfigurationLoader struct {
	mock.Mock
}

func (m *mockDeadCodeConfigurationLoader) LoadConfig(path string) (*domain.DeadCodeRequest, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeadCodeRequest), args.Error(1)
}

func (m *mockDeadCodeConfigurationLoader) LoadDefaultConfig(targetPath string) *domain.DeadCodeRequest {
	args := m.Called(targetPath)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.DeadCodeRequest)
}

func (m *mockDeadCodeConfigurationLoader) MergeConfig(base *domain.DeadCodeRequest, override *domain.DeadCodeRequest) *domain.DeadCodeRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.DeadCodeRequest)
}

func createValidDeadCodeRequest(out io.Writer) domain.DeadCodeRequest {
	req := *domain.DefaultDeadCodeRequest()
	req.Paths = []string{"src"}
	req.OutputWriter = out
	req.IncludePatterns = []string{"**/*.rs"}
	req.ExcludePatterns = []string{}
	return req
}

func createMockDeadCodeResponse() *domain.DeadCodeResponse {
	return &domain.DeadCodeResponse{
		RunID: "run-1",
		Files: []domain.FileDeadCode{
			{
				FilePath: "src/lib.rs",
				Functions: []domain.FunctionDeadCode{
					{
						Name:     "early",
						FilePath: "src/lib.rs",
						Findings: []domain.DeadCodeFinding{
							{
								Location:     domain.DeadCodeLocation{FilePath: "src/lib.rs", StartLine: 3, EndLine: 3},
								FunctionName: "early",
								Code:         "cleanup();",
								Reason:       "unreachable_after_return",
								Severity:     domain.DeadCodeSeverityCritical,
								Description:  "Code after a return statement can never execute",
							},
						},
						CriticalCount: 1,
					},
				},
				TotalFindings:     1,
				TotalFunctions:    1,
				AffectedFunctions: 1,
			},
		},
		Summary: domain.DeadCodeSummary{TotalFiles: 1, TotalFunctions: 1, TotalFindings: 1, CriticalFindings: 1},
	}
}

func expectCollect(fileReader *MockFileReader, paths []string, files []string, err error) {
	for _, p := range paths {
		fileReader.On("IsValidRustFile", p).Return(false).Maybe()
	}
	fileReader.On("CollectRustFiles", paths, true, []string{"**/*.rs"}, []string{}).Return(files, err)
}

func TestDeadCodeUseCase_Execute(t *testing.T) {
	var buf bytes.Buffer
	service := &mockDeadCodeService{}
	fileReader := &MockFileReader{}
	formatter := &mockDeadCodeFormatter{}
	configLoader := &mockDeadCodeConfigurationLoader{}

	response := createMockDeadCodeResponse()
	configLoader.On("LoadDefaultConfig", "src").Return(nil)
	expectCollect(fileReader, []string{"src"}, []string{"src/lib.rs"}, nil)
	service.On("Analyze", mock.Anything, mock.MatchedBy(func(req domain.DeadCodeRequest) bool {
		return assert.ObjectsAreEqual([]string{"src/lib.rs"}, req.Paths)
	})).Return(response, nil)
	formatter.On("Write", response, domain.OutputFormatText, &buf).Return(nil)

	uc := NewDeadCodeUseCase(service, fileReader, formatter, configLoader)
	err := uc.Execute(context.Background(), createValidDeadCodeRequest(&buf))

	require.NoError(t, err)
	service.AssertExpectations(t)
	fileReader.AssertExpectations(t)
	formatter.AssertExpectations(t)
	configLoader.AssertExpectations(t)
}

func TestDeadCodeUseCase_ExecuteErrors(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*domain.DeadCodeRequest)
		setupMocks func(*mockDeadCodeService, *MockFileReader, *mockDeadCodeFormatter, *mockDeadCodeConfigurationLoader)
		wantCode   domain.ErrorCode
		wantMsg    string
	}{
		{
			name:     "empty paths",
			modify:   func(r *domain.DeadCodeRequest) { r.Paths = nil },
			wantCode: domain.ErrCodeInvalidInput,
			wantMsg:  "no input paths specified",
		},
		{
			name:     "no output destination",
			modify:   func(r *domain.DeadCodeRequest) { r.OutputWriter = nil },
			wantCode: domain.ErrCodeInvalidInput,
			wantMsg:  "output writer or output path is required",
		},
		{
			name:     "negative context lines",
			modify:   func(r *domain.DeadCodeRequest) { r.ContextLines = -1 },
			wantCode: domain.ErrCodeInvalidInput,
			wantMsg:  "context lines cannot be negative",
		},
		{
			name:   "invalid severity after merge",
			modify: func(r *domain.DeadCodeRequest) { r.MinSeverity = "fatal" },
			setupMocks: func(_ *mockDeadCodeService, _ *MockFileReader, _ *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadDefaultConfig", "src").Return(nil)
			},
			wantCode: domain.ErrCodeInvalidInput,
			wantMsg:  "invalid minimum severity level: fatal",
		},
		{
			name:   "configuration loading error",
			modify: func(r *domain.DeadCodeRequest) { r.ConfigPath = "/invalid/rsscn.toml" },
			setupMocks: func(_ *mockDeadCodeService, _ *MockFileReader, _ *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadConfig", "/invalid/rsscn.toml").Return(nil, errors.New("config file not found"))
			},
			wantCode: domain.ErrCodeConfigError,
			wantMsg:  "failed to load configuration",
		},
		{
			name: "file collection error",
			setupMocks: func(_ *mockDeadCodeService, fr *MockFileReader, _ *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadDefaultConfig", "src").Return(nil)
				expectCollect(fr, []string{"src"}, nil, errors.New("path not found"))
			},
			wantCode: domain.ErrCodeFileNotFound,
			wantMsg:  "failed to collect files",
		},
		{
			name: "no files found",
			setupMocks: func(_ *mockDeadCodeService, fr *MockFileReader, _ *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadDefaultConfig", "src").Return(nil)
				expectCollect(fr, []string{"src"}, []string{}, nil)
			},
			wantCode: domain.ErrCodeInvalidInput,
			wantMsg:  "no Rust files found in the specified paths",
		},
		{
			name: "analysis service error",
			setupMocks: func(s *mockDeadCodeService, fr *MockFileReader, _ *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadDefaultConfig", "src").Return(nil)
				expectCollect(fr, []string{"src"}, []string{"src/lib.rs"}, nil)
				s.On("Analyze", mock.Anything, mock.Anything).Return(nil, errors.New("CFG construction failed"))
			},
			wantCode: domain.ErrCodeAnalysisError,
			wantMsg:  "dead code analysis failed",
		},
		{
			name: "output formatting error",
			setupMocks: func(s *mockDeadCodeService, fr *MockFileReader, f *mockDeadCodeFormatter, cl *mockDeadCodeConfigurationLoader) {
				cl.On("LoadDefaultConfig", "src").Return(nil)
				expectCollect(fr, []string{"src"}, []string{"src/lib.rs"}, nil)
				s.On("Analyze", mock.Anything, mock.Anything).Return(createMockDeadCodeResponse(), nil)
				f.On("Write", mock.Anything, domain.OutputFormatText, mock.Anything).Return(errors.New("write failed"))
			},
			wantCode: domain.ErrCodeOutputError,
			wantMsg:  "failed to write output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockDeadCodeService{}
			fileReader := &MockFileReader{}
			formatter := &mockDeadCodeFormatter{}
			configLoader := &mockDeadCodeConfigurationLoader{}
			if tt.setupMocks != nil {
				tt.setupMocks(service, fileReader, formatter, configLoader)
			}

			req := createValidDeadCodeRequest(os.Stdout)
			if tt.modify != nil {
				tt.modify(&req)
			}

			uc := NewDeadCodeUseCase(service, fileReader, formatter, configLoader)
			err := uc.Execute(context.Background(), req)

			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			service.AssertExpectations(t)
			configLoader.AssertExpectations(t)
		})
	}
}

func TestDeadCodeUseCase_MergesConfiguration(t *testing.T) {
	service := &mockDeadCodeService{}
	fileReader := &MockFileReader{}
	configLoader := &mockDeadCodeConfigurationLoader{}

	fromConfig := domain.DefaultDeadCodeRequest()
	fromConfig.MinSeverity = domain.DeadCodeSeverityCritical

	req := createValidDeadCodeRequest(os.Stdout)
	req.ConfigPath = "/project/.rsscn.toml"

	merged := req
	merged.MinSeverity = domain.DeadCodeSeverityCritical

	configLoader.On("LoadConfig", "/project/.rsscn.toml").Return(fromConfig, nil)
	configLoader.On("MergeConfig", fromConfig, mock.AnythingOfType("*domain.DeadCodeRequest")).Return(&merged)
	expectCollect(fileReader, []string{"src"}, []string{"src/lib.rs"}, nil)
	service.On("Analyze", mock.Anything, mock.MatchedBy(func(r domain.DeadCodeRequest) bool {
		return r.MinSeverity == domain.DeadCodeSeverityCritical
	})).Return(createMockDeadCodeResponse(), nil)

	uc := NewDeadCodeUseCase(service, fileReader, &mockDeadCodeFormatter{}, configLoader)
	resp, err := uc.AnalyzeAndReturn(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "run-1", resp.RunID)
	service.AssertExpectations(t)
	configLoader.AssertExpectations(t)
}

func TestDeadCodeUseCase_ShowContext(t *testing.T) {
	tests := []struct {
		name        string
		showContext *bool
		want        bool
	}{
		{name: "unset", showContext: nil, want: false},
		{name: "enabled", showContext: domain.BoolPtr(true), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockDeadCodeService{}
			fileReader := &MockFileReader{}
			formatter := &contextRecordingFormatter{}

			expectCollect(fileReader, []string{"src"}, []string{"src/lib.rs"}, nil)
			service.On("Analyze", mock.Anything, mock.Anything).Return(createMockDeadCodeResponse(), nil)
			formatter.On("Write", mock.Anything, domain.OutputFormatText, mock.Anything).Return(nil)

			req := createValidDeadCodeRequest(io.Discard)
			req.ShowContext = tt.showContext

			uc := NewDeadCodeUseCase(service, fileReader, formatter, nil)
			require.NoError(t, uc.Execute(context.Background(), req))
			require.NotNil(t, formatter.showContext)
			assert.Equal(t, tt.want, *formatter.showContext)
		})
	}
}

func TestDeadCodeUseCase_WithRealServices(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lib.rs"), []byte("fn early() -> i32 {\n    return 1;\n    2\n}\n"), 0o644))
	cacheDir := filepath.Join(dir, "cache")

	uc, err := NewDeadCodeUseCaseBuilder().
		WithService(svc.NewDeadCodeService()).
		WithFileReader(svc.NewFileReader()).
		WithFormatter(svc.NewDeadCodeFormatter()).
		WithConfigLoader(svc.NewDeadCodeConfigurationLoader()).
		WithProgress(svc.NewNoOpProgressManager()).
		WithResultCache(svc.NewResultCache(cacheDir)).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	req := *domain.DefaultDeadCodeRequest()
	req.Paths = []string{dir}
	req.OutputWriter = &buf
	req.OutputFormat = domain.OutputFormatJSON

	require.NoError(t, uc.Execute(context.Background(), req))
	assert.Contains(t, buf.String(), "unreachable_after_return")
	assert.Equal(t, 1, svc.NewResultCache(cacheDir).Len(), "results are persisted after the run")
}

func TestDeadCodeUseCaseBuilder(t *testing.T) {
	t.Run("missing service", func(t *testing.T) {
		_, err := NewDeadCodeUseCaseBuilder().
			WithFileReader(&MockFileReader{}).
			WithFormatter(&mockDeadCodeFormatter{}).
			Build()
		assert.EqualError(t, err, "dead code service is required")
	})

	t.Run("missing file reader", func(t *testing.T) {
		_, err := NewDeadCodeUseCaseBuilder().
			WithService(&mockDeadCodeService{}).
			WithFormatter(&mockDeadCodeFormatter{}).
			Build()
		assert.EqualError(t, err, "file reader is required")
	})

	t.Run("missing formatter", func(t *testing.T) {
		_, err := NewDeadCodeUseCaseBuilder().
			WithService(&mockDeadCodeService{}).
			WithFileReader(&MockFileReader{}).
			Build()
		assert.EqualError(t, err, "output formatter is required")
	})

	t.Run("custom output writer", func(t *testing.T) {
		writer := svc.NewFileOutputWriter(io.Discard)
		uc, err := NewDeadCodeUseCaseBuilder().
			WithService(&mockDeadCodeService{}).
			WithFileReader(&MockFileReader{}).
			WithFormatter(&mockDeadCodeFormatter{}).
			WithOutputWriter(writer).
			Build()
		require.NoError(t, err)
		assert.Same(t, writer, uc.output)
	})
}
