package jenkins

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := newError(KindJobNotFound, "get_job_info", "job %q not found", "team/main")

	assert.Equal(t, KindJobNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindJobNotFound))
	assert.False(t, IsKind(err, KindBuildNotFound))

	// 包了一层之后类别还能取出来
	wrapped := fmt.Errorf("tool failed: %w", err)
	assert.Equal(t, KindJobNotFound, KindOf(wrapped))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapError(KindConnectivity, "fetch_console_log", cause, "request to %s failed", "https://ci.example.com")

	assert.Contains(t, err.Error(), "fetch_console_log")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}
