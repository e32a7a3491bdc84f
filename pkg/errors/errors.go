package errors

// BusinessError 业务错误定义
//
// 供中间件与客户端在 kratos errors 边界处取用统一的错误码信息
type BusinessError struct {
	// HttpCode HTTP状态码
	HttpCode int32
	// Type 错误类型标识（机器可读）
	Type string
	// Message 默认错误描述
	Message string
}

var (
	// ErrSystemError 系统内部错误
	ErrSystemError = &BusinessError{
		HttpCode: 500,
		Type:     "SYSTEM_ERROR",
		Message:  "系统内部错误",
	}

	// ErrViewerHeaderMissing 视图上下文请求头缺失
	ErrViewerHeaderMissing = &BusinessError{
		HttpCode: 401,
		Type:     "VIEWER_HEADER_MISSING",
		Message:  "视图上下文请求头缺失",
	}

	// ErrTenantMissing 租户信息缺失
	ErrTenantMissing = &BusinessError{
		HttpCode: 400,
		Type:     "TENANT_MISSING",
		Message:  "租户信息缺失",
	}

	// ErrBatchTooLarge 批量请求数量超限
	ErrBatchTooLarge = &BusinessError{
		HttpCode: 400,
		Type:     "BATCH_TOO_LARGE",
		Message:  "批量请求数量超过限制",
	}
)
