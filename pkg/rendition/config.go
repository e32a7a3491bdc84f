package rendition

import (
	"fmt"
	"time"
)

const (
	// DefaultServiceName 默认的媒体服务名称（用于服务发现）
	DefaultServiceName = "mediaServer"

	// DefaultBasePath 默认的内部接口路径前缀
	DefaultBasePath = "/internal/v1"

	// DefaultURLExpiresIn 默认URL签名有效期（秒）
	DefaultURLExpiresIn = 3600

	// DefaultTimeout 默认请求超时时间
	DefaultTimeout = 10 * time.Second
)

// ClientConfig 媒体服务内部客户端配置
type ClientConfig struct {
	// Endpoint 服务端点
	// 直连方式: "localhost:9000" 或 "192.168.1.100:9000"
	// 服务发现方式: "discovery:///mediaServer"
	Endpoint string

	// ServiceName 服务名称（用于服务发现）
	ServiceName string

	// BasePath 内部接口路径前缀
	BasePath string

	// Timeout 请求超时时间
	Timeout time.Duration
}

// DefaultInternalConfig 返回默认的内部服务客户端配置
//
// 默认配置:
//   - Endpoint: "discovery:///mediaServer"
//   - ServiceName: "mediaServer"
//   - BasePath: "/internal/v1"
//   - Timeout: 10s
func DefaultInternalConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint:    fmt.Sprintf("discovery:///%s", DefaultServiceName),
		ServiceName: DefaultServiceName,
		BasePath:    DefaultBasePath,
		Timeout:     DefaultTimeout,
	}
}

// Validate 验证配置
func (c *ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("服务端点不能为空")
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// WithEndpoint 设置服务端点
//
// 参数:
//   - endpoint: 服务端点地址
//
// 示例:
//   - 直连: "localhost:9000"
//   - 服务发现: "discovery:///mediaServer"
func (c *ClientConfig) WithEndpoint(endpoint string) *ClientConfig {
	c.Endpoint = endpoint
	return c
}

// WithServiceName 设置服务名称
func (c *ClientConfig) WithServiceName(name string) *ClientConfig {
	c.ServiceName = name
	c.Endpoint = fmt.Sprintf("discovery:///%s", name)
	return c
}

// WithBasePath 设置内部接口路径前缀
func (c *ClientConfig) WithBasePath(basePath string) *ClientConfig {
	c.BasePath = basePath
	return c
}

// WithTimeout 设置请求超时时间
func (c *ClientConfig) WithTimeout(timeout time.Duration) *ClientConfig {
	c.Timeout = timeout
	return c
}

// Copy 创建配置的副本
func (c *ClientConfig) Copy() *ClientConfig {
	return &ClientConfig{
		Endpoint:    c.Endpoint,
		ServiceName: c.ServiceName,
		BasePath:    c.BasePath,
		Timeout:     c.Timeout,
	}
}
