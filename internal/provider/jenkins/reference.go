package jenkins

import (
	"net/url"
	"strconv"
	"strings"
)

// JobReference 规范化后的任务引用: 有序的文件夹链, 以任务名结尾
// 只能由 ResolveJobReference 构造, 保证每段非空且已解码
type JobReference struct {
	segments []string
	urlBuild int64 // 从 URL 尾部提取的构建号, 0 表示没有
}

// ResolveJobReference 将任务标识解析为规范引用
// 支持两种格式:
//  1. 浏览器里复制的完整 Jenkins URL, 嵌套目录以重复的 job/ 片段表示,
//     如 https://ci.example.com/job/team/job/service/job/main/
//  2. 已规范化的短路径, 如 team/service/main
//
// 两种写法解析为同一个规范引用, URL 中的协议/主机/端口会被丢弃,
// 以客户端配置的 base URL 为准。URL 末尾的纯数字段视为构建号。
func ResolveJobReference(input string) (JobReference, error) {
	const op = "resolve_job_reference"

	raw := strings.TrimSpace(input)
	if raw == "" {
		return JobReference{}, newError(KindInvalidReference, op, "job reference is empty")
	}

	// 绝对 URL 只取 path 部分, 保留原始转义, 统一在分段后解码
	fromURL := false
	path := raw
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		path = u.EscapedPath()
		fromURL = true
	}

	var segments []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil || decoded == "" {
			return JobReference{}, wrapError(KindInvalidReference, op, err,
				"malformed path segment %q in %q", seg, input)
		}
		segments = append(segments, decoded)
	}

	// URL 末尾的构建号 (浏览器里复制的构建页地址)
	var urlBuild int64
	if fromURL && len(segments) > 0 {
		if n, err := strconv.ParseInt(segments[len(segments)-1], 10, 64); err == nil && n > 0 {
			urlBuild = n
			segments = segments[:len(segments)-1]
		}
	}

	// 含 job/ 标记时按 job/<name> 成对提取, 其余片段
	// (上下文前缀或 console 之类的尾巴) 忽略
	if hasJobMarker(segments) {
		var names []string
		for i := 0; i < len(segments); i++ {
			if segments[i] != "job" {
				continue
			}
			i++
			if i >= len(segments) {
				return JobReference{}, newError(KindInvalidReference, op,
					"dangling job marker in %q", input)
			}
			names = append(names, segments[i])
		}
		segments = names
	}

	if len(segments) == 0 {
		return JobReference{}, newError(KindInvalidReference, op,
			"cannot extract job path from %q", input)
	}

	return JobReference{segments: segments, urlBuild: urlBuild}, nil
}

func hasJobMarker(segments []string) bool {
	for _, seg := range segments {
		if seg == "job" {
			return true
		}
	}
	return false
}

// Segments 返回规范化之后的路径段
func (r JobReference) Segments() []string {
	out := make([]string, len(r.segments))
	copy(out, r.segments)
	return out
}

// String 短路径表示, 如 "team/service/main"
func (r JobReference) String() string {
	return strings.Join(r.segments, "/")
}

// APIPath Jenkins API 寻址路径, 每段单独转义, 如 "/job/team/job/service"
func (r JobReference) APIPath() string {
	var sb strings.Builder
	for _, seg := range r.segments {
		sb.WriteString("/job/")
		sb.WriteString(url.PathEscape(seg))
	}
	return sb.String()
}

// BuildFromURL URL 末尾携带的构建号
func (r JobReference) BuildFromURL() (int64, bool) {
	return r.urlBuild, r.urlBuild > 0
}
