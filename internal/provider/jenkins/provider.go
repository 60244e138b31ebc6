package jenkins

import (
	"context"
	"fmt"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
)

// JenkinsProvider Jenkins Provider
// Initialize 之后不再持有可变状态, 多个调用可以并发执行
type JenkinsProvider struct {
	name    string
	client  *Client
	session *session
}

// NewJenkinsProvider 创建 Jenkins Provider
func NewJenkinsProvider() provider.CICDProvider {
	return &JenkinsProvider{
		name: "jenkins",
	}
}

func init() {
	provider.RegisterCICD("jenkins", NewJenkinsProvider())
}

// GetName 获取 Provider 名称
func (p *JenkinsProvider) GetName() string {
	return p.name
}

// Initialize 初始化 Provider
// 凭据在这里绑定一次, 之后的调用只接受任务标识, 不接受凭据
func (p *JenkinsProvider) Initialize(config map[string]any) error {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return fmt.Errorf("url is required")
	}

	username, ok := config["username"].(string)
	if !ok || username == "" {
		return fmt.Errorf("username is required")
	}

	token, ok := config["token"].(string)
	if !ok || token == "" {
		return fmt.Errorf("token is required")
	}

	cfg := ConnectionConfig{
		BaseURL:  url,
		Username: username,
		Token:    token,
	}

	if timeout, ok := config["timeout"].(int); ok && timeout > 0 {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	if skip, ok := config["insecure_skip_verify"].(bool); ok {
		cfg.InsecureSkipVerify = skip
	}

	p.client = NewClient(cfg)
	p.session = newSession(cfg)

	logx.Info("Jenkins Provider initialized, %s", cfg)

	return nil
}

// GetJobInfo 获取任务信息, jobRef 可以是完整 URL 或短路径
// URL 尾部带构建号时, 连同该构建的元数据一起返回
func (p *JenkinsProvider) GetJobInfo(ctx context.Context, jobRef string) (*model.JobInfo, error) {
	ref, err := ResolveJobReference(jobRef)
	if err != nil {
		return nil, err
	}

	info, err := p.client.GetJobInfo(ctx, ref)
	if err != nil {
		return nil, err
	}

	if n, ok := ref.BuildFromURL(); ok {
		build, err := p.client.GetBuild(ctx, ref, n)
		if err != nil {
			return nil, err
		}
		info.ReferencedBuild = build
	}

	return info, nil
}

// FetchConsoleLog 抓取控制台日志
// buildNumber <= 0 时取最新构建; 显式构建号优先于 URL 里携带的构建号
func (p *JenkinsProvider) FetchConsoleLog(ctx context.Context, jobRef string, buildNumber int64) (*model.ConsoleLog, error) {
	ref, err := ResolveJobReference(jobRef)
	if err != nil {
		return nil, err
	}

	selector := LatestBuild
	if buildNumber > 0 {
		selector = BuildSelector(buildNumber)
	} else if n, ok := ref.BuildFromURL(); ok {
		selector = BuildSelector(n)
	}

	return p.client.FetchConsoleLog(ctx, ref, selector)
}

// HealthCheck 健康检查
func (p *JenkinsProvider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("client not initialized")
	}

	if err := p.client.Ping(ctx); err != nil {
		return err
	}

	logx.Debug("Health check passed")
	return nil
}
