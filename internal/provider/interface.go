package provider

import (
	"context"

	"github.com/PhNyx/jenkins-mcp/internal/model"
)

// CICDProvider 定义 CI/CD 工具的统一接口
// jobRef 参数接受完整 URL 或短路径, 由各实现自行规范化;
// 凭据在 Initialize 时绑定, 任何方法都不接受凭据参数
type CICDProvider interface {
	// GetName 返回提供商名称 (如: jenkins)
	GetName() string

	// Initialize 初始化客户端
	Initialize(config map[string]any) error

	// GetJobInfo 获取任务详情, 从未构建过的任务不算错误
	GetJobInfo(ctx context.Context, jobRef string) (*model.JobInfo, error)

	// FetchConsoleLog 抓取构建的控制台日志
	// buildNumber <= 0 表示取最新一次构建, 结果里带上实际使用的构建号
	FetchConsoleLog(ctx context.Context, jobRef string, buildNumber int64) (*model.ConsoleLog, error)

	// ListJobs 列出所有任务
	ListJobs(ctx context.Context, opts *QueryOptions) ([]*model.JobInfo, error)

	// ListBuilds 获取任务的构建历史
	ListBuilds(ctx context.Context, jobRef string, limit int) ([]*model.Build, error)

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error
}

// QueryOptions 查询选项
type QueryOptions struct {
	PageSize int // 分页大小
	PageNum  int // 页码
}
