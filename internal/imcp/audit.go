package imcp

import (
	"context"
	"encoding/json"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/database"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"
)

// 响应正文截断长度, 控制台日志可能非常大
const auditResponseLimit = 2000

// auditor 工具调用审计, 记录每次调用的工具名/状态/延迟
// 工具参数里只有任务标识, 凭据不会进这张表
type auditor struct {
	db *gorm.DB
}

func newAuditor(dbPath string) (*auditor, error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &auditor{db: db}, nil
}

// auditMiddleware 包裹所有工具调用
func (s *MCPServer) auditMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, request)
		s.auditor.record(request, result, err, time.Since(start))
		return result, err
	}
}

// record 落一条审计记录, 写失败只告警不影响调用
func (a *auditor) record(request mcp.CallToolRequest, result *mcp.CallToolResult, callErr error, latency time.Duration) {
	status := "success"
	response := ""

	switch {
	case callErr != nil:
		status = "error"
		response = callErr.Error()
	case result != nil:
		if result.IsError {
			status = "error"
		}
		response = firstTextContent(result)
	}

	if len(response) > auditResponseLimit {
		response = response[:auditResponseLimit] + "..."
	}

	reqJSON, _ := json.Marshal(request.Params.Arguments)

	entry := &model.ToolCallLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		ToolName:  request.Params.Name,
		Status:    status,
		Latency:   int(latency.Milliseconds()),
		Request:   string(reqJSON),
		Response:  response,
	}

	if err := a.db.Create(entry).Error; err != nil {
		logx.Warn("Failed to write audit log, tool %s: %v", entry.ToolName, err)
	}
}

func firstTextContent(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
