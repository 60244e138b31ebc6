package cmd

import (
	"fmt"

	"github.com/PhNyx/jenkins-mcp/internal/imcp"
	"github.com/spf13/cobra"
)

var (
	serveTransport string
	servePort      int
	serveURL       string
	serveUsername  string
	serveToken     string
)

// serveCmd 启动 MCP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 Jenkins MCP 服务",
	Long: `启动 MCP 服务, 对外暴露 get_job_info / fetch_console_log / list_jobs /
list_builds 四个工具。默认走 stdio 传输, 也可以用 --transport sse 在端口上监听。
Jenkins 凭据来自配置文件或环境变量, 也可以用命令行参数覆盖。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 命令行参数覆盖配置文件
		if serveURL != "" {
			cfg.Jenkins.URL = serveURL
		}
		if serveUsername != "" {
			cfg.Jenkins.Username = serveUsername
		}
		if serveToken != "" {
			cfg.Jenkins.Token = serveToken
		}
		if serveTransport != "" {
			cfg.Server.MCP.Transport = serveTransport
		}
		if servePort > 0 {
			cfg.Server.MCP.Port = servePort
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		s := imcp.NewMCPServer(cfg)

		switch cfg.Server.MCP.Transport {
		case "stdio":
			return s.ServeStdio()
		case "sse":
			return s.ServeSSE(cfg.Server.MCP.Port)
		default:
			return fmt.Errorf("unsupported transport: %s (stdio|sse)", cfg.Server.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "传输方式 (stdio, sse)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "SSE 监听端口")
	serveCmd.Flags().StringVar(&serveURL, "jenkins-url", "", "Jenkins base URL")
	serveCmd.Flags().StringVar(&serveUsername, "username", "", "Jenkins 用户名")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Jenkins API token")
}
