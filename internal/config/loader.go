package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Jenkins JenkinsConfig `mapstructure:"jenkins"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	MCP MCPConfig `mapstructure:"mcp"`
}

// MCPConfig MCP 服务配置
type MCPConfig struct {
	Transport string `mapstructure:"transport"` // stdio | sse
	Port      int    `mapstructure:"port"`
}

// JenkinsConfig Jenkins 连接配置
type JenkinsConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	// Timeout 单次请求超时, 秒
	Timeout int `mapstructure:"timeout"`
	// InsecureSkipVerify 跳过证书校验 (自签名证书的 Jenkins)
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// String 脱敏输出, token 不落日志
func (c JenkinsConfig) String() string {
	return fmt.Sprintf("jenkins{url=%s username=%s token=****}", c.URL, c.Username)
}

// AuditConfig 工具调用审计日志配置
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LoadConfig 从 YAML 文件加载配置
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// 默认配置文件搜索路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.jenkins-mcp")
		v.AddConfigPath("/etc/jenkins-mcp")
	}

	// 支持环境变量
	v.SetEnvPrefix("JENKINS_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 替换环境变量
	expandEnvVars(&config)

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Server 默认配置
	v.SetDefault("server.mcp.transport", "stdio")
	v.SetDefault("server.mcp.port", 8081)

	// Jenkins 默认配置
	v.SetDefault("jenkins.timeout", 30)
	v.SetDefault("jenkins.insecure_skip_verify", false)

	// Audit 默认配置
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.db_path", "./data/jenkins-mcp.db")
}

// expandEnvVars 展开配置里的环境变量引用
func expandEnvVars(config *Config) {
	config.Jenkins.URL = os.ExpandEnv(config.Jenkins.URL)
	config.Jenkins.Username = os.ExpandEnv(config.Jenkins.Username)
	config.Jenkins.Token = os.ExpandEnv(config.Jenkins.Token)
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Jenkins.URL == "" {
		return fmt.Errorf("jenkins.url is required")
	}
	if c.Jenkins.Username == "" {
		return fmt.Errorf("jenkins.username is required")
	}
	if c.Jenkins.Token == "" {
		return fmt.Errorf("jenkins.token is required")
	}
	return nil
}
