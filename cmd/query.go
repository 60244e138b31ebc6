package cmd

import (
	"github.com/spf13/cobra"
)

// queryCmd 查询命令组
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "查询 Jenkins 任务和构建信息",
	Long:  `不经过 MCP 直接查询 Jenkins 的任务信息、构建历史和控制台日志, 用于调试配置。`,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
