package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/PhNyx/jenkins-mcp/internal/model"
)

const defaultTimeout = 30 * time.Second

// ConnectionConfig Jenkins 连接配置
// 进程启动时构造一次, 之后不再变更; 凭据只存在于内存中
type ConnectionConfig struct {
	BaseURL  string
	Username string
	Token    string
	// Timeout 单次请求的超时 (连接 + 读取), 零值时取 30s
	Timeout time.Duration
	// InsecureSkipVerify 跳过 HTTPS 证书校验, 用于自签名证书的 Jenkins
	InsecureSkipVerify bool
}

// String 脱敏输出, token 永远不进日志
func (c ConnectionConfig) String() string {
	return fmt.Sprintf("jenkins{url=%s user=%s token=****}", c.BaseURL, c.Username)
}

// BuildSelector 构建选择器, 显式构建号或 LatestBuild
type BuildSelector int64

// LatestBuild 表示取任务当前最新的一次构建
const LatestBuild BuildSelector = 0

// Client Jenkins REST 客户端
// 除持有的连接配置外无任何状态, 多个调用并发使用是安全的
type Client struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

// NewClient 创建 Jenkins REST 客户端
func NewClient(cfg ConnectionConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		token:    cfg.Token,
		http:     newHTTPClient(cfg),
	}
}

// GetJobInfo 获取任务基本信息
// 任务从未构建过时 LastBuild 为 nil, 不算错误
func (c *Client) GetJobInfo(ctx context.Context, ref JobReference) (*model.JobInfo, error) {
	const op = "get_job_info"

	apiURL := c.baseURL + ref.APIPath() +
		"/api/json?tree=name,displayName,fullName,description,url,buildable," +
		"lastBuild[number,url,result,building,timestamp,duration]"

	var resp jobAPIResponse
	if err := c.getJSON(ctx, op, apiURL, KindJobNotFound, &resp); err != nil {
		return nil, err
	}

	name := resp.FullName
	if name == "" {
		name = resp.Name
	}
	if name == "" {
		name = ref.String()
	}

	info := &model.JobInfo{
		Name:        name,
		DisplayName: resp.DisplayName,
		URL:         resp.URL,
		Description: resp.Description,
		Buildable:   resp.Buildable,
	}
	if resp.LastBuild != nil {
		info.LastBuild = convertBuild(resp.LastBuild)
	}

	logx.Info("Fetched job info, job %s, last build %v", ref, info.LastBuildStatus())
	return info, nil
}

// GetBuild 获取指定构建的元数据
func (c *Client) GetBuild(ctx context.Context, ref JobReference, number int64) (*model.Build, error) {
	const op = "get_build"

	apiURL := c.baseURL + ref.APIPath() + "/" + strconv.FormatInt(number, 10) +
		"/api/json?tree=number,url,result,building,timestamp,duration"

	var resp buildAPIResponse
	if err := c.getJSON(ctx, op, apiURL, KindBuildNotFound, &resp); err != nil {
		return nil, err
	}
	return convertBuild(&resp), nil
}

// ResolveLatestBuild 解析任务当前最新的构建号
// 任务存在但没有任何构建时返回 no_builds_found, 与任务不存在区分开
func (c *Client) ResolveLatestBuild(ctx context.Context, ref JobReference) (int64, error) {
	const op = "resolve_latest_build"

	apiURL := c.baseURL + ref.APIPath() + "/api/json?tree=lastBuild[number]"

	var resp struct {
		LastBuild *struct {
			Number int64 `json:"number"`
		} `json:"lastBuild"`
	}
	if err := c.getJSON(ctx, op, apiURL, KindJobNotFound, &resp); err != nil {
		return 0, err
	}

	if resp.LastBuild == nil || resp.LastBuild.Number <= 0 {
		return 0, newError(KindNoBuildsFound, op, "job %q has no builds yet", ref.String())
	}
	return resp.LastBuild.Number, nil
}

// FetchConsoleLog 抓取指定构建的控制台日志
// selector 为 LatestBuild 时先解析出具体构建号再抓取, 返回结果里带上实际
// 使用的构建号; 显式构建号不做存在性预检, 直接请求
func (c *Client) FetchConsoleLog(ctx context.Context, ref JobReference, selector BuildSelector) (*model.ConsoleLog, error) {
	const op = "fetch_console_log"

	number := int64(selector)
	if selector == LatestBuild {
		n, err := c.ResolveLatestBuild(ctx, ref)
		if err != nil {
			return nil, err
		}
		number = n
	} else if number < 1 {
		return nil, newError(KindInvalidReference, op, "build number must be positive, got %d", number)
	}

	buildURL := c.baseURL + ref.APIPath() + "/" + strconv.FormatInt(number, 10)

	// building 标记区分 "日志还会增长" 和 "日志已定稿"
	var meta buildAPIResponse
	if err := c.getJSON(ctx, op, buildURL+"/api/json?tree=number,building,result", KindBuildNotFound, &meta); err != nil {
		return nil, err
	}

	text, err := c.get(ctx, op, buildURL+"/consoleText", KindBuildNotFound)
	if err != nil {
		return nil, err
	}

	logx.Info("Fetched console log, job %s, build %d, completed %v, %d bytes",
		ref, number, !meta.Building, len(text))

	return &model.ConsoleLog{
		Job:         ref.String(),
		BuildNumber: number,
		Completed:   !meta.Building,
		Text:        string(text),
	}, nil
}

// Ping 探活, 访问根节点的元数据端点
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	_, err := c.get(ctx, op, c.baseURL+"/api/json?tree=mode,nodeName", KindUnexpectedResponse)
	return err
}

// ==================== API 响应结构 ====================

type jobAPIResponse struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	FullName    string            `json:"fullName"`
	Description string            `json:"description"`
	URL         string            `json:"url"`
	Buildable   bool              `json:"buildable"`
	LastBuild   *buildAPIResponse `json:"lastBuild"`
}

type buildAPIResponse struct {
	Number    int64   `json:"number"`
	URL       string  `json:"url"`
	Result    string  `json:"result"`
	Building  bool    `json:"building"`
	Timestamp int64   `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

func convertBuild(raw *buildAPIResponse) *model.Build {
	b := &model.Build{
		Number:   raw.Number,
		URL:      raw.URL,
		Result:   raw.Result,
		Building: raw.Building,
		Duration: int64(raw.Duration),
		Status:   model.ParseBuildStatus(raw.Result, raw.Building),
	}
	if raw.Timestamp > 0 {
		b.Timestamp = time.Unix(raw.Timestamp/1000, 0)
	}
	return b
}

// ==================== HTTP 底层 ====================

// get 发起一次带认证的 GET, 按状态码映射错误类别
// notFound 指定 404 对应的类别, 由调用方决定是任务还是构建不存在
func (c *Client) get(ctx context.Context, op, rawURL string, notFound ErrorKind) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, wrapError(KindConnectivity, op, err, "build request for %s", rawURL)
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Accept", "application/json")

	logx.Debug("GET %s", rawURL)

	resp, err := c.http.Do(req)
	if err != nil {
		// 网络失败 / 超时 / TLS 失败统一是连通性错误, 不在这里重试
		return nil, wrapError(KindConnectivity, op, err, "request to %s failed", rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(KindConnectivity, op, err, "read response from %s", rawURL)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, newError(KindAuthentication, op, "credentials rejected by %s", c.baseURL)
	case resp.StatusCode == http.StatusForbidden:
		return nil, newError(KindPermissionDenied, op, "not authorized for %s", rawURL)
	case resp.StatusCode == http.StatusNotFound:
		return nil, newError(notFound, op, "%s returned 404", rawURL)
	default:
		return nil, newError(KindUnexpectedResponse, op, "%s returned unexpected status %d", rawURL, resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, notFound ErrorKind, out any) error {
	body, err := c.get(ctx, op, rawURL, notFound)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrapError(KindUnexpectedResponse, op, err, "undecodable response from %s: %s", rawURL, snippet(body))
	}
	return nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
