package jenkins

import (
	"context"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/bndr/gojenkins"
)

// ListBuilds 列出任务最近的构建历史
func (p *JenkinsProvider) ListBuilds(ctx context.Context, jobRef string, limit int) ([]*model.Build, error) {
	ref, err := ResolveJobReference(jobRef)
	if err != nil {
		return nil, err
	}

	jenkins, err := p.session.connect(ctx)
	if err != nil {
		return nil, err
	}

	segments := ref.Segments()
	name := segments[len(segments)-1]
	parents := segments[:len(segments)-1]

	job, err := jenkins.GetJob(ctx, name, parents...)
	if err != nil {
		return nil, wrapSessionError("list_builds", err)
	}

	buildIds, err := job.GetAllBuildIds(ctx)
	if err != nil {
		return nil, wrapSessionError("list_builds", err)
	}

	logx.Debug("Fetched build IDs, job %s, count %d", ref, len(buildIds))

	if limit <= 0 {
		limit = 10
	}

	var result []*model.Build
	for _, buildId := range buildIds {
		if len(result) >= limit {
			break
		}

		build, err := job.GetBuild(ctx, buildId.Number)
		if err != nil {
			logx.Warn("Failed to get build, job %s, build %d, error %v", ref, buildId.Number, err)
			continue
		}

		result = append(result, convertListedBuild(build))
	}

	return result, nil
}

// convertListedBuild 将 gojenkins Build 转换为统一的 Build 模型
func convertListedBuild(build *gojenkins.Build) *model.Build {
	modelBuild := &model.Build{
		Number:   build.Raw.Number,
		URL:      build.Raw.URL,
		Result:   build.Raw.Result,
		Building: build.Raw.Building,
		Duration: int64(build.Raw.Duration), // 毫秒
		Status:   model.ParseBuildStatus(build.Raw.Result, build.Raw.Building),
	}

	if build.Raw.Timestamp > 0 {
		modelBuild.Timestamp = time.Unix(build.Raw.Timestamp/1000, 0)
	}

	return modelBuild
}
