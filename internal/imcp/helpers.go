package imcp

import (
	"fmt"
	"strings"

	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/PhNyx/jenkins-mcp/internal/provider/jenkins"
)

// ==================== Provider 辅助函数 ====================

// getJenkinsProvider 获取 Jenkins Provider
// Initialize 只在第一次调用时执行一次, SSE 传输下工具调用是并发的,
// 之后的调用只读已初始化的实例
func (s *MCPServer) getJenkinsProvider() (provider.CICDProvider, error) {
	s.providerOnce.Do(func() {
		p, err := provider.GetCICDProvider("jenkins")
		if err != nil {
			s.providerErr = fmt.Errorf("failed to get jenkins provider: %w", err)
			return
		}

		providerConfig := map[string]any{
			"url":                  s.config.Jenkins.URL,
			"username":             s.config.Jenkins.Username,
			"token":                s.config.Jenkins.Token,
			"timeout":              s.config.Jenkins.Timeout,
			"insecure_skip_verify": s.config.Jenkins.InsecureSkipVerify,
		}

		if err := p.Initialize(providerConfig); err != nil {
			s.providerErr = fmt.Errorf("failed to initialize jenkins provider: %w", err)
			return
		}

		s.provider = p
	})

	if s.providerErr != nil {
		return nil, s.providerErr
	}
	return s.provider, nil
}

// describeError 给 Agent 看的错误描述, 前缀带错误类别方便判断是否重试
func describeError(err error) string {
	if kind := jenkins.KindOf(err); kind != "" {
		return fmt.Sprintf("[%s] %s", kind, err.Error())
	}
	return err.Error()
}

// ==================== 格式化函数 ====================

// formatJobInfo 格式化单个任务的详细信息
func formatJobInfo(info *model.JobInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("任务: %s\n", info.Name))
	if info.DisplayName != "" && info.DisplayName != info.Name {
		sb.WriteString(fmt.Sprintf("  显示名称: %s\n", info.DisplayName))
	}
	if info.Description != "" {
		sb.WriteString(fmt.Sprintf("  描述: %s\n", info.Description))
	}
	sb.WriteString(fmt.Sprintf("  URL: %s\n", info.URL))

	buildable := "是"
	if !info.Buildable {
		buildable = "否"
	}
	sb.WriteString(fmt.Sprintf("  可构建: %s\n", buildable))

	if info.ReferencedBuild != nil {
		sb.WriteString(fmt.Sprintf("  URL 指定的构建: #%d (%s)\n",
			info.ReferencedBuild.Number, info.ReferencedBuild.Status))
	}

	if info.LastBuild != nil {
		sb.WriteString(fmt.Sprintf("  最后构建: #%d\n", info.LastBuild.Number))
		sb.WriteString(fmt.Sprintf("  最后构建状态: %s\n", info.LastBuild.Status))
		if info.LastBuild.URL != "" {
			sb.WriteString(fmt.Sprintf("  最后构建 URL: %s\n", info.LastBuild.URL))
		}
	} else {
		sb.WriteString("  最后构建: 无 (从未构建过)\n")
		sb.WriteString(fmt.Sprintf("  最后构建状态: %s\n", model.StatusUnknown))
	}

	return sb.String()
}

// formatJobs 格式化任务列表为文本输出
func formatJobs(jobs []*model.JobInfo) string {
	if len(jobs) == 0 {
		return "未找到任何 Jenkins 任务"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("找到 %d 个 Jenkins 任务:\n\n", len(jobs)))

	for i, job := range jobs {
		sb.WriteString(fmt.Sprintf("任务 %d:\n", i+1))
		sb.WriteString(fmt.Sprintf("  名称: %s\n", job.Name))
		if job.DisplayName != "" && job.DisplayName != job.Name {
			sb.WriteString(fmt.Sprintf("  显示名称: %s\n", job.DisplayName))
		}
		sb.WriteString(fmt.Sprintf("  URL: %s\n", job.URL))

		if job.LastBuild != nil {
			sb.WriteString(fmt.Sprintf("  最后构建: #%d (%s)\n", job.LastBuild.Number, job.LastBuild.Status))
		} else {
			sb.WriteString("  最后构建: 无\n")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// formatBuilds 格式化构建历史为文本输出
func formatBuilds(builds []*model.Build, jobRef string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("任务 '%s' 的构建历史 (共 %d 个构建):\n\n", jobRef, len(builds)))

	for i, build := range builds {
		sb.WriteString(fmt.Sprintf("构建 %d:\n", i+1))
		sb.WriteString(fmt.Sprintf("  构建号: #%d\n", build.Number))
		sb.WriteString(fmt.Sprintf("  状态: %s\n", build.Status))
		if !build.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("  时间: %s\n", build.Timestamp.Format("2006-01-02 15:04:05")))
		}
		if build.Duration > 0 {
			sb.WriteString(fmt.Sprintf("  时长: %dms\n", build.Duration))
		}
		if build.URL != "" {
			sb.WriteString(fmt.Sprintf("  URL: %s\n", build.URL))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
