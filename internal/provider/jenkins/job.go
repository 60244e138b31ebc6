package jenkins

import (
	"context"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/bndr/gojenkins"
)

// ListJobs 列出所有 Job (文件夹类型跳过)
func (p *JenkinsProvider) ListJobs(ctx context.Context, opts *provider.QueryOptions) ([]*model.JobInfo, error) {
	jenkins, err := p.session.connect(ctx)
	if err != nil {
		return nil, err
	}

	jobs, err := jenkins.GetAllJobs(ctx)
	if err != nil {
		return nil, wrapSessionError("list_jobs", err)
	}

	logx.Debug("Fetched Jenkins jobs, count %d", len(jobs))

	var result []*model.JobInfo
	for _, job := range jobs {
		if job.Raw.Class == "com.cloudbees.hudson.plugins.folder.Folder" {
			continue
		}
		result = append(result, convertListedJob(job))
	}

	// 应用分页
	if opts != nil && opts.PageSize > 0 && opts.PageNum > 0 {
		start := (opts.PageNum - 1) * opts.PageSize
		end := start + opts.PageSize

		if start >= len(result) {
			return []*model.JobInfo{}, nil
		}
		if end > len(result) {
			end = len(result)
		}

		result = result[start:end]
	}

	return result, nil
}

// convertListedJob 将 gojenkins Job 转换为统一的 JobInfo 模型
func convertListedJob(job *gojenkins.Job) *model.JobInfo {
	info := &model.JobInfo{
		Name:        job.GetName(),
		DisplayName: job.GetName(),
		Description: job.GetDescription(),
		URL:         job.Raw.URL,
		Buildable:   job.Raw.Buildable,
	}

	if job.Raw.LastBuild.Number > 0 {
		info.LastBuild = &model.Build{
			Number: job.Raw.LastBuild.Number,
			URL:    job.Raw.LastBuild.URL,
			Status: statusFromColor(job.Raw.Color),
		}
	}

	return info
}

// statusFromColor 将 Jenkins 颜色状态转换为构建状态
// _anime 后缀表示正在构建
func statusFromColor(color string) model.BuildStatus {
	if strings.HasSuffix(color, "_anime") {
		return model.StatusInProgress
	}

	switch color {
	case "blue":
		return model.StatusSuccess
	case "red":
		return model.StatusFailure
	case "yellow":
		return model.StatusUnstable
	case "aborted":
		return model.StatusAborted
	default:
		return model.StatusUnknown
	}
}
