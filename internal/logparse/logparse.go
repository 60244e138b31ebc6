// Package logparse 从 Jenkins 控制台日志中提取错误相关的片段
// 完整日志动辄几十万行, 直接塞给 Agent 会撑爆上下文,
// 这里按失败关键词命中行取上下文, 再整体限制行数
package logparse

import "strings"

// DefaultKeywords 默认的失败关键词
var DefaultKeywords = []string{
	"ERROR",
	"Exception",
	"Traceback",
	"FAILED",
	"Build failed",
	"Segmentation fault",
}

const (
	// 每个命中行往前/往后带的上下文行数
	contextBefore = 10
	contextAfter  = 20

	// DefaultMaxLines 提取结果的行数上限
	DefaultMaxLines = 1000
)

// ExtractErrorBlock 提取错误相关的行, 每个命中行带前 10 行后 20 行上下文,
// 结果超过 maxLines 时保留末尾部分 (越靠后的输出离失败越近)
// keywords 为空时使用 DefaultKeywords, 匹配不区分大小写
func ExtractErrorBlock(logText string, maxLines int, keywords []string) string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	lines := strings.Split(logText, "\n")
	var extracted []string
	added := make(map[int]bool)

	for i, line := range lines {
		if !matchesAny(line, lowered) {
			continue
		}

		start := i - contextBefore
		if start < 0 {
			start = 0
		}
		end := i + contextAfter
		if end > len(lines) {
			end = len(lines)
		}

		for j := start; j < end; j++ {
			if !added[j] {
				extracted = append(extracted, lines[j])
				added[j] = true
			}
		}
	}

	if len(extracted) > maxLines {
		extracted = extracted[len(extracted)-maxLines:]
	}

	return strings.Join(extracted, "\n")
}

func matchesAny(line string, loweredKeywords []string) bool {
	lowerLine := strings.ToLower(line)
	for _, k := range loweredKeywords {
		if strings.Contains(lowerLine, k) {
			return true
		}
	}
	return false
}
