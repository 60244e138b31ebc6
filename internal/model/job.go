package model

import "time"

// BuildStatus 构建状态枚举
type BuildStatus string

const (
	StatusSuccess    BuildStatus = "SUCCESS"
	StatusFailure    BuildStatus = "FAILURE"
	StatusUnstable   BuildStatus = "UNSTABLE"
	StatusAborted    BuildStatus = "ABORTED"
	StatusInProgress BuildStatus = "IN_PROGRESS"
	StatusUnknown    BuildStatus = "UNKNOWN"
)

// ParseBuildStatus 将 Jenkins 返回的 result 字段转换为构建状态
// building 为 true 时优先返回 IN_PROGRESS
func ParseBuildStatus(result string, building bool) BuildStatus {
	if building {
		return StatusInProgress
	}
	switch result {
	case "SUCCESS":
		return StatusSuccess
	case "FAILURE":
		return StatusFailure
	case "UNSTABLE":
		return StatusUnstable
	case "ABORTED":
		return StatusAborted
	default:
		return StatusUnknown
	}
}

// JobInfo Jenkins 任务模型
// LastBuild 为 nil 表示任务从未构建过
type JobInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Buildable   bool   `json:"buildable"`
	LastBuild   *Build `json:"last_build,omitempty"`
	// ReferencedBuild 任务标识 URL 尾部指定的那次构建, 只在携带构建号时填充
	ReferencedBuild *Build `json:"referenced_build,omitempty"`
}

// LastBuildStatus 最后一次构建的状态, 从未构建过时返回 UNKNOWN
func (j *JobInfo) LastBuildStatus() BuildStatus {
	if j.LastBuild == nil {
		return StatusUnknown
	}
	return j.LastBuild.Status
}

// Build 构建模型
type Build struct {
	Number    int64       `json:"number"`
	Status    BuildStatus `json:"status"`
	Result    string      `json:"result,omitempty"`
	Building  bool        `json:"building"`
	Timestamp time.Time   `json:"timestamp"`
	Duration  int64       `json:"duration"` // 毫秒
	URL       string      `json:"url,omitempty"`
}

// ConsoleLog 控制台日志查询结果
// Completed 为 false 时日志只是当前时刻的快照, 后续还会增长
type ConsoleLog struct {
	Job         string `json:"job"`
	BuildNumber int64  `json:"build_number"`
	Completed   bool   `json:"completed"`
	Text        string `json:"text"`
}
