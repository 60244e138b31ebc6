package cmd

import (
	"os"

	"github.com/PhNyx/jenkins-mcp/internal/config"
	"github.com/spf13/cobra"

	// 注册 jenkins provider
	_ "github.com/PhNyx/jenkins-mcp/internal/provider/jenkins"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "jenkins-mcp",
	Short: "Jenkins 日志查询 MCP 服务",
	Long: `jenkins-mcp 把 Jenkins 任务信息查询和构建控制台日志抓取以 MCP 工具的
形式暴露给 AI Agent。凭据在启动时绑定, 工具调用只携带任务标识, 永远不携带凭据。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		return err
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
}
