package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/logparse"
	"github.com/PhNyx/jenkins-mcp/internal/provider"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	jenkinsOutputType string
	jenkinsLimit      int
	jenkinsParseLog   bool
)

// jenkinsCmd Jenkins 查询命令组
var jenkinsCmd = &cobra.Command{
	Use:   "jenkins",
	Short: "查询 Jenkins 资源",
	Long:  `查询 Jenkins 的任务、构建和控制台日志。`,
}

// jenkinsJobCmd 任务命令组
var jenkinsJobCmd = &cobra.Command{
	Use:   "job",
	Short: "查询 Jenkins 任务",
}

// jenkinsJobGetCmd 获取任务详情
var jenkinsJobGetCmd = &cobra.Command{
	Use:   "get <job-url>",
	Short: "获取任务详情",
	Long:  `获取指定任务的详细信息。支持完整 URL 或短路径, 如 "folder/job"。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := jenkinsProviderFromConfig()
		if err != nil {
			return err
		}

		info, err := p.GetJobInfo(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get job: %w", err)
		}

		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))

		return nil
	},
}

// jenkinsJobListCmd 列出所有任务
var jenkinsJobListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出所有任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := jenkinsProviderFromConfig()
		if err != nil {
			return err
		}

		jobs, err := p.ListJobs(ctx, &provider.QueryOptions{PageSize: jenkinsLimit, PageNum: 1})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		if jenkinsOutputType == "json" {
			data, _ := json.MarshalIndent(jobs, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		// 使用 lipgloss/table 表格输出
		rows := [][]string{}
		for _, job := range jobs {
			buildable := "✓"
			if !job.Buildable {
				buildable = "✗"
			}

			lastBuild := "-"
			status := "-"
			if job.LastBuild != nil {
				lastBuild = fmt.Sprintf("#%d", job.LastBuild.Number)
				status = string(job.LastBuild.Status)
			}

			rows = append(rows, []string{job.Name, lastBuild, status, buildable})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("Name", "Last Build", "Status", "Buildable").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
		logx.Info("Query completed, count %d", len(jobs))

		return nil
	},
}

// jenkinsBuildCmd 构建命令组
var jenkinsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "查询 Jenkins 构建",
}

// jenkinsBuildListCmd 列出构建历史
var jenkinsBuildListCmd = &cobra.Command{
	Use:   "list <job-url>",
	Short: "列出构建历史",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := jenkinsProviderFromConfig()
		if err != nil {
			return err
		}

		builds, err := p.ListBuilds(ctx, args[0], jenkinsLimit)
		if err != nil {
			return fmt.Errorf("failed to list builds: %w", err)
		}

		if jenkinsOutputType == "json" {
			data, _ := json.MarshalIndent(builds, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		rows := [][]string{}
		for _, build := range builds {
			timestamp := "-"
			if !build.Timestamp.IsZero() {
				timestamp = build.Timestamp.Format("2006-01-02 15:04:05")
			}

			rows = append(rows, []string{
				fmt.Sprintf("#%d", build.Number),
				string(build.Status),
				timestamp,
				fmt.Sprintf("%dms", build.Duration),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
			Headers("Build", "Status", "Timestamp", "Duration").
			Rows(rows...)

		fmt.Println(t)
		fmt.Println()
		logx.Info("Query completed, job %s, count %d", args[0], len(builds))

		return nil
	},
}

// jenkinsBuildLogCmd 抓取控制台日志
var jenkinsBuildLogCmd = &cobra.Command{
	Use:   "log <job-url> [build-number]",
	Short: "抓取构建的控制台日志",
	Long:  `抓取指定构建的控制台日志, 不指定构建号时取最新一次构建。`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var buildNumber int64
		if len(args) == 2 {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid build number: %s", args[1])
			}
			buildNumber = n
		}

		p, err := jenkinsProviderFromConfig()
		if err != nil {
			return err
		}

		consoleLog, err := p.FetchConsoleLog(ctx, args[0], buildNumber)
		if err != nil {
			return fmt.Errorf("failed to fetch console log: %w", err)
		}

		state := "已完成"
		if !consoleLog.Completed {
			state = "仍在构建中"
		}
		logx.Info("Console log fetched, job %s, build %d, %s", consoleLog.Job, consoleLog.BuildNumber, state)

		text := consoleLog.Text
		if jenkinsParseLog {
			if parsed := logparse.ExtractErrorBlock(text, logparse.DefaultMaxLines, nil); parsed != "" {
				text = parsed
			}
		}

		fmt.Println(text)
		return nil
	},
}

// jenkinsPingCmd 连接检查
var jenkinsPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "检查 Jenkins 连接和凭据",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := jenkinsProviderFromConfig()
		if err != nil {
			return err
		}

		if err := p.HealthCheck(ctx); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		fmt.Printf("OK: %s\n", cfg.Jenkins)
		return nil
	},
}

// jenkinsProviderFromConfig 按配置初始化 Jenkins Provider
func jenkinsProviderFromConfig() (provider.CICDProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := provider.GetCICDProvider("jenkins")
	if err != nil {
		return nil, fmt.Errorf("failed to get jenkins provider: %w", err)
	}

	providerConfig := map[string]any{
		"url":                  cfg.Jenkins.URL,
		"username":             cfg.Jenkins.Username,
		"token":                cfg.Jenkins.Token,
		"timeout":              cfg.Jenkins.Timeout,
		"insecure_skip_verify": cfg.Jenkins.InsecureSkipVerify,
	}

	if err := p.Initialize(providerConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize jenkins provider: %w", err)
	}

	return p, nil
}

func init() {
	// 添加 Jenkins 命令到查询命令组
	queryCmd.AddCommand(jenkinsCmd)

	// 任务命令
	jenkinsCmd.AddCommand(jenkinsJobCmd)
	jenkinsJobCmd.AddCommand(jenkinsJobGetCmd)
	jenkinsJobCmd.AddCommand(jenkinsJobListCmd)

	// 构建命令
	jenkinsCmd.AddCommand(jenkinsBuildCmd)
	jenkinsBuildCmd.AddCommand(jenkinsBuildListCmd)
	jenkinsBuildCmd.AddCommand(jenkinsBuildLogCmd)

	// 连接检查
	jenkinsCmd.AddCommand(jenkinsPingCmd)

	// 通用标志
	jenkinsCmd.PersistentFlags().IntVar(&jenkinsLimit, "limit", 10, "返回数量")
	jenkinsCmd.PersistentFlags().StringVarP(&jenkinsOutputType, "output", "o", "table", "输出格式 (table, json)")
	jenkinsBuildLogCmd.Flags().BoolVar(&jenkinsParseLog, "parse-errors", false, "只输出错误相关的日志片段")
}
