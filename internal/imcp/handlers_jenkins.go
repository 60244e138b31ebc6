package imcp

import (
	"context"
	"fmt"

	"github.com/PhNyx/jenkins-mcp/internal/logparse"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/mark3labs/mcp-go/mcp"
)

// ==================== Jenkins 处理函数 ====================

// handleGetJobInfo 处理获取 Jenkins 任务信息的请求
func (s *MCPServer) handleGetJobInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	jobURL, ok := args["job_url"].(string)
	if !ok || jobURL == "" {
		return mcp.NewToolResultError("job_url parameter is required"), nil
	}

	p, err := s.getJenkinsProvider()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := p.GetJobInfo(ctx, jobURL)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	return mcp.NewToolResultText(formatJobInfo(info)), nil
}

// handleFetchConsoleLog 处理抓取控制台日志的请求
func (s *MCPServer) handleFetchConsoleLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	jobURL, ok := args["job_url"].(string)
	if !ok || jobURL == "" {
		return mcp.NewToolResultError("job_url parameter is required"), nil
	}

	var buildNumber int64
	if n, ok := args["build_number"].(float64); ok {
		buildNumber = int64(n)
		if buildNumber < 1 {
			return mcp.NewToolResultError("build_number must be a positive integer"), nil
		}
	}

	parseErrors := true
	if b, ok := args["parse_errors"].(bool); ok {
		parseErrors = b
	}

	p, err := s.getJenkinsProvider()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	consoleLog, err := p.FetchConsoleLog(ctx, jobURL, buildNumber)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	text := consoleLog.Text
	logType := "完整日志"
	if parseErrors {
		logType = "错误片段"
		if parsed := logparse.ExtractErrorBlock(text, logparse.DefaultMaxLines, nil); parsed != "" {
			text = parsed
		} else {
			// 没有命中任何失败关键词, 退回完整日志
			logType = "完整日志 (未匹配到错误关键词)"
		}
	}

	state := "已完成"
	if !consoleLog.Completed {
		state = "仍在构建中, 日志为当前快照"
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"任务 '%s' 构建 #%d 的控制台日志 (%s, %s):\n\n%s",
		consoleLog.Job, consoleLog.BuildNumber, state, logType, text)), nil
}

// handleListJobs 处理列出所有 Jenkins 任务的请求
func (s *MCPServer) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.getJenkinsProvider()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	allJobs, err := listAllJobs(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	return mcp.NewToolResultText(formatJobs(allJobs)), nil
}

// handleListBuilds 处理列出构建历史的请求
func (s *MCPServer) handleListBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	jobURL, ok := args["job_url"].(string)
	if !ok || jobURL == "" {
		return mcp.NewToolResultError("job_url parameter is required"), nil
	}

	// 获取可选的 limit 参数, 默认为 10
	limit := 10
	if n, ok := args["limit"].(float64); ok {
		limit = int(n)
	}

	p, err := s.getJenkinsProvider()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	builds, err := p.ListBuilds(ctx, jobURL, limit)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	if len(builds) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("任务 '%s' 没有构建历史", jobURL)), nil
	}

	return mcp.NewToolResultText(formatBuilds(builds, jobURL)), nil
}

// listAllJobs 分页拉取全部任务
func listAllJobs(ctx context.Context, p provider.CICDProvider) ([]*model.JobInfo, error) {
	var allJobs []*model.JobInfo
	pageNum := 1
	pageSize := 100

	for {
		opts := &provider.QueryOptions{
			PageSize: pageSize,
			PageNum:  pageNum,
		}

		jobs, err := p.ListJobs(ctx, opts)
		if err != nil {
			return nil, err
		}

		allJobs = append(allJobs, jobs...)

		if len(jobs) < pageSize {
			break
		}
		pageNum++
	}

	return allJobs, nil
}
