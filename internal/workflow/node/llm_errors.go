package node

import "strings"

// IsFatalProviderError 判定重试无意义的模型服务商错误。
// 这类错误（非法请求、认证失败、上下文超长）重试只会重复失败。
func IsFatalProviderError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid request"):
		return true
	case strings.Contains(msg, "invalid_request_error"):
		return true
	case strings.Contains(msg, "status code: 400"):
		return true
	case strings.Contains(msg, "status code: 401"):
		return true
	case strings.Contains(msg, "status code: 403"):
		return true
	case strings.Contains(msg, "context length"):
		return true
	case strings.Contains(msg, "maximum context"):
		return true
	case strings.Contains(msg, "unsupported model"):
		return true
	default:
		return false
	}
}
