package node

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateByRunes("abcdef", 3))
	assert.Equal(t, "abcdef", TruncateByRunes("abcdef", 10))
	assert.Equal(t, "", TruncateByRunes("abcdef", 0))

	// 多字节字符按字符数而非字节数截断
	assert.Equal(t, "分布式", TruncateByRunes("分布式系统", 3))
}

func TestIsFatalProviderError(t *testing.T) {
	assert.False(t, IsFatalProviderError(nil))
	assert.False(t, IsFatalProviderError(fmt.Errorf("status code: 429 too many requests")))
	assert.False(t, IsFatalProviderError(fmt.Errorf("connection reset by peer")))

	assert.True(t, IsFatalProviderError(fmt.Errorf("status code: 400 bad request")))
	assert.True(t, IsFatalProviderError(fmt.Errorf("status code: 401 unauthorized")))
	assert.True(t, IsFatalProviderError(fmt.Errorf("invalid_request_error: prompt too long")))
	assert.True(t, IsFatalProviderError(fmt.Errorf("this model's maximum context length is exceeded")))
}
