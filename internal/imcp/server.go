package imcp

import (
	"fmt"
	"sync"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/config"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "jenkins-mcp"
	serverVersion = "0.3.0"
)

// MCPServer Jenkins MCP 服务
// 凭据在启动时从配置绑定, 工具调用只携带任务标识
type MCPServer struct {
	config  *config.Config
	server  *server.MCPServer
	auditor *auditor

	// provider 只初始化一次, 之后并发的工具调用只读
	providerOnce sync.Once
	provider     provider.CICDProvider
	providerErr  error
}

// NewMCPServer 创建 MCP 服务并注册全部工具
func NewMCPServer(cfg *config.Config) *MCPServer {
	s := &MCPServer{config: cfg}

	// 审计日志开启失败不阻塞启动
	if cfg.Audit.Enabled {
		a, err := newAuditor(cfg.Audit.DBPath)
		if err != nil {
			logx.Warn("Failed to open audit log, continuing without it: %v", err)
		} else {
			s.auditor = a
		}
	}

	opts := []server.ServerOption{server.WithRecovery()}
	if s.auditor != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.auditMiddleware))
	}

	s.server = server.NewMCPServer(serverName, serverVersion, opts...)
	s.registerTools()

	return s
}

// registerTools 注册 Jenkins 工具
func (s *MCPServer) registerTools() {
	s.server.AddTool(mcp.NewTool("get_job_info",
		mcp.WithDescription("获取 Jenkins 任务的基本信息 (显示名/URL/可构建/最后构建及其状态), 使用服务启动时配置的凭据"),
		mcp.WithString("job_url",
			mcp.Required(),
			mcp.Description("完整的 Jenkins 任务 URL 或短路径, 如 https://ci.example.com/job/team/job/main/ 或 team/main"),
		),
	), s.handleGetJobInfo)

	s.server.AddTool(mcp.NewTool("fetch_console_log",
		mcp.WithDescription("抓取 Jenkins 构建的控制台日志, 使用服务启动时配置的凭据"),
		mcp.WithString("job_url",
			mcp.Required(),
			mcp.Description("完整的 Jenkins 任务 URL 或短路径"),
		),
		mcp.WithNumber("build_number",
			mcp.Min(1),
			mcp.Description("构建号 (可选, 不传时取最新一次构建)"),
		),
		mcp.WithBoolean("parse_errors",
			mcp.DefaultBool(true),
			mcp.Description("只提取错误相关的日志片段 (默认开启)"),
		),
	), s.handleFetchConsoleLog)

	s.server.AddTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("列出 Jenkins 中的所有任务"),
	), s.handleListJobs)

	s.server.AddTool(mcp.NewTool("list_builds",
		mcp.WithDescription("列出 Jenkins 任务最近的构建历史"),
		mcp.WithString("job_url",
			mcp.Required(),
			mcp.Description("完整的 Jenkins 任务 URL 或短路径"),
		),
		mcp.WithNumber("limit",
			mcp.Min(1),
			mcp.Description("返回的构建数量, 默认 10"),
		),
	), s.handleListBuilds)
}

// ServeStdio 以 stdio 传输运行, 阻塞直到对端关闭
func (s *MCPServer) ServeStdio() error {
	logx.Info("Starting Jenkins MCP server (stdio), %s", s.config.Jenkins)
	return server.ServeStdio(s.server)
}

// ServeSSE 以 SSE 传输监听指定端口
func (s *MCPServer) ServeSSE(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logx.Info("Starting Jenkins MCP server (sse) on %s, %s", addr, s.config.Jenkins)
	return server.NewSSEServer(s.server).Start(addr)
}
