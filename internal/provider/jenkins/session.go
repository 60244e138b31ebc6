package jenkins

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bndr/gojenkins"
)

// session gojenkins 会话, 只给列表类查询用
// 核心的 job info / console log 走 Client 的裸 REST 路径,
// 那边需要按状态码区分错误类别
type session struct {
	cfg ConnectionConfig

	mu      sync.Mutex
	jenkins *gojenkins.Jenkins
}

func newSession(cfg ConnectionConfig) *session {
	return &session{cfg: cfg}
}

// connect 惰性建立 gojenkins 会话, 并发调用安全
func (s *session) connect(ctx context.Context) (*gojenkins.Jenkins, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jenkins != nil {
		return s.jenkins, nil
	}

	jenkins := gojenkins.CreateJenkins(newHTTPClient(s.cfg), s.cfg.BaseURL, s.cfg.Username, s.cfg.Token)
	if _, err := jenkins.Init(ctx); err != nil {
		return nil, wrapSessionError("connect", err)
	}

	s.jenkins = jenkins
	return jenkins, nil
}

func newHTTPClient(cfg ConnectionConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// wrapSessionError 把 gojenkins 的错误翻译成本包的错误类别
// gojenkins 对非 2xx 只返回字符串化的状态码
func wrapSessionError(op string, err error) error {
	switch strings.TrimSpace(err.Error()) {
	case "401":
		return newError(KindAuthentication, op, "credentials rejected")
	case "403":
		return newError(KindPermissionDenied, op, "not authorized")
	case "404":
		return newError(KindJobNotFound, op, "job not found")
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		return wrapError(KindConnectivity, op, err, "jenkins unreachable")
	}
	return wrapError(KindUnexpectedResponse, op, err, "jenkins session request failed")
}
