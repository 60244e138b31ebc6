package imcp

import (
	"context"
	"sync"
	"testing"

	"github.com/PhNyx/jenkins-mcp/internal/config"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/PhNyx/jenkins-mcp/internal/provider/jenkins"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCICDProvider 用固定数据响应, 便于单测 handler 层
// 记录的调用状态加锁保护, 并发调用的用例也能用
type fakeCICDProvider struct {
	jobInfo    *model.JobInfo
	consoleLog *model.ConsoleLog
	jobs       []*model.JobInfo
	builds     []*model.Build
	err        error

	mu              sync.Mutex
	initCalls       int
	initConfig      map[string]any
	lastJobRef      string
	lastBuildNumber int64
}

func (f *fakeCICDProvider) GetName() string { return "jenkins" }

func (f *fakeCICDProvider) Initialize(config map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	f.initConfig = config
	return nil
}

func (f *fakeCICDProvider) GetJobInfo(ctx context.Context, jobRef string) (*model.JobInfo, error) {
	f.mu.Lock()
	f.lastJobRef = jobRef
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.jobInfo, nil
}

func (f *fakeCICDProvider) FetchConsoleLog(ctx context.Context, jobRef string, buildNumber int64) (*model.ConsoleLog, error) {
	f.mu.Lock()
	f.lastJobRef = jobRef
	f.lastBuildNumber = buildNumber
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.consoleLog, nil
}

func (f *fakeCICDProvider) ListJobs(ctx context.Context, opts *provider.QueryOptions) ([]*model.JobInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

func (f *fakeCICDProvider) ListBuilds(ctx context.Context, jobRef string, limit int) ([]*model.Build, error) {
	f.mu.Lock()
	f.lastJobRef = jobRef
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.builds, nil
}

func (f *fakeCICDProvider) HealthCheck(ctx context.Context) error { return f.err }

func testServer(t *testing.T, fake *fakeCICDProvider) *MCPServer {
	t.Helper()

	provider.UnregisterAll()
	t.Cleanup(provider.UnregisterAll)
	provider.RegisterCICD("jenkins", fake)

	cfg := &config.Config{}
	cfg.Jenkins.URL = "https://ci.example.com"
	cfg.Jenkins.Username = "tester"
	cfg.Jenkins.Token = "secret-token"
	cfg.Jenkins.Timeout = 30

	return NewMCPServer(cfg)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleGetJobInfo(t *testing.T) {
	fake := &fakeCICDProvider{
		jobInfo: &model.JobInfo{
			Name:      "team/service",
			URL:       "https://ci.example.com/job/team/job/service/",
			Buildable: true,
			LastBuild: &model.Build{Number: 42, Status: model.StatusSuccess},
		},
	}
	s := testServer(t, fake)

	result, err := s.handleGetJobInfo(context.Background(),
		callRequest("get_job_info", map[string]any{"job_url": "team/service"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "team/service")
	assert.Contains(t, text, "#42")
	assert.Contains(t, text, string(model.StatusSuccess))
	assert.Equal(t, "team/service", fake.lastJobRef)
}

func TestHandleGetJobInfo_CredentialsFromConfig(t *testing.T) {
	fake := &fakeCICDProvider{jobInfo: &model.JobInfo{Name: "app"}}
	s := testServer(t, fake)

	// 工具参数里只有任务标识, 凭据从服务配置注入
	_, err := s.handleGetJobInfo(context.Background(),
		callRequest("get_job_info", map[string]any{"job_url": "app"}))
	require.NoError(t, err)

	require.NotNil(t, fake.initConfig)
	assert.Equal(t, "tester", fake.initConfig["username"])
	assert.Equal(t, "secret-token", fake.initConfig["token"])
}

func TestHandleGetJobInfo_MissingJobURL(t *testing.T) {
	s := testServer(t, &fakeCICDProvider{})

	result, err := s.handleGetJobInfo(context.Background(),
		callRequest("get_job_info", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "job_url")
}

func TestHandleGetJobInfo_ErrorKindPrefix(t *testing.T) {
	fake := &fakeCICDProvider{
		err: &jenkins.Error{Kind: jenkins.KindJobNotFound, Op: "get_job_info", Message: "job 'gone' not found"},
	}
	s := testServer(t, fake)

	result, err := s.handleGetJobInfo(context.Background(),
		callRequest("get_job_info", map[string]any{"job_url": "gone"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "[job_not_found]")
}

func TestHandleFetchConsoleLog_ParseErrors(t *testing.T) {
	fake := &fakeCICDProvider{
		consoleLog: &model.ConsoleLog{
			Job:         "team/service",
			BuildNumber: 7,
			Completed:   true,
			Text:        "step one\nstep two\nERROR: compilation failed\nstep four\n",
		},
	}
	s := testServer(t, fake)

	result, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{"job_url": "team/service"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "构建 #7")
	assert.Contains(t, text, "ERROR: compilation failed")
	assert.Contains(t, text, "错误片段")
	// 没传 build_number 时取最新一次构建
	assert.Equal(t, int64(0), fake.lastBuildNumber)
}

func TestHandleFetchConsoleLog_ParseErrorsDisabled(t *testing.T) {
	fake := &fakeCICDProvider{
		consoleLog: &model.ConsoleLog{
			Job:         "app",
			BuildNumber: 3,
			Completed:   true,
			Text:        "line one\nERROR: boom\nline three\n",
		},
	}
	s := testServer(t, fake)

	result, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{
			"job_url":      "app",
			"parse_errors": false,
		}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "line one")
	assert.Contains(t, text, "line three")
	assert.Contains(t, text, "完整日志")
}

func TestHandleFetchConsoleLog_NoKeywordMatch(t *testing.T) {
	fake := &fakeCICDProvider{
		consoleLog: &model.ConsoleLog{
			Job:         "app",
			BuildNumber: 5,
			Completed:   true,
			Text:        "all good\nfinished successfully\n",
		},
	}
	s := testServer(t, fake)

	result, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{"job_url": "app"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "未匹配到错误关键词")
	assert.Contains(t, text, "all good")
}

func TestHandleFetchConsoleLog_ExplicitBuildNumber(t *testing.T) {
	fake := &fakeCICDProvider{
		consoleLog: &model.ConsoleLog{Job: "app", BuildNumber: 12, Completed: true, Text: "ok\n"},
	}
	s := testServer(t, fake)

	// JSON 数值经 MCP 解码后是 float64
	_, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{
			"job_url":      "app",
			"build_number": float64(12),
		}))
	require.NoError(t, err)
	assert.Equal(t, int64(12), fake.lastBuildNumber)
}

func TestHandleFetchConsoleLog_InvalidBuildNumber(t *testing.T) {
	s := testServer(t, &fakeCICDProvider{})

	result, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{
			"job_url":      "app",
			"build_number": float64(0),
		}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "build_number")
}

func TestHandleFetchConsoleLog_InProgressSnapshot(t *testing.T) {
	fake := &fakeCICDProvider{
		consoleLog: &model.ConsoleLog{
			Job:         "app",
			BuildNumber: 9,
			Completed:   false,
			Text:        "ERROR: flaky step\n",
		},
	}
	s := testServer(t, fake)

	result, err := s.handleFetchConsoleLog(context.Background(),
		callRequest("fetch_console_log", map[string]any{"job_url": "app"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "仍在构建中")
}

func TestHandleListBuilds(t *testing.T) {
	fake := &fakeCICDProvider{
		builds: []*model.Build{
			{Number: 5, Status: model.StatusSuccess},
			{Number: 4, Status: model.StatusFailure},
		},
	}
	s := testServer(t, fake)

	result, err := s.handleListBuilds(context.Background(),
		callRequest("list_builds", map[string]any{"job_url": "app"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "#5")
	assert.Contains(t, text, "#4")
}

func TestHandleListBuilds_Empty(t *testing.T) {
	s := testServer(t, &fakeCICDProvider{})

	result, err := s.handleListBuilds(context.Background(),
		callRequest("list_builds", map[string]any{"job_url": "app"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "没有构建历史")
}

func TestConcurrentToolCalls_InitializeOnce(t *testing.T) {
	fake := &fakeCICDProvider{
		jobInfo:    &model.JobInfo{Name: "app"},
		consoleLog: &model.ConsoleLog{Job: "app", BuildNumber: 2, Completed: true, Text: "ok\n"},
	}
	s := testServer(t, fake)

	// SSE 传输下工具调用是并发的, Initialize 只能执行一次
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			var result *mcp.CallToolResult
			var err error
			if i%2 == 0 {
				result, err = s.handleGetJobInfo(context.Background(),
					callRequest("get_job_info", map[string]any{"job_url": "app"}))
			} else {
				result, err = s.handleFetchConsoleLog(context.Background(),
					callRequest("fetch_console_log", map[string]any{"job_url": "app"}))
			}
			assert.NoError(t, err)
			assert.False(t, result.IsError)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, fake.initCalls)
}

func TestHandleListJobs(t *testing.T) {
	fake := &fakeCICDProvider{
		jobs: []*model.JobInfo{
			{Name: "alpha", URL: "https://ci.example.com/job/alpha/"},
			{Name: "beta", URL: "https://ci.example.com/job/beta/"},
		},
	}
	s := testServer(t, fake)

	result, err := s.handleListJobs(context.Background(),
		callRequest("list_jobs", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "alpha")
	assert.Contains(t, text, "beta")
	assert.Contains(t, text, "找到 2 个")
}
