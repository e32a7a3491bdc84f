package fallback

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	// DefaultExtension 默认目标扩展名
	DefaultExtension = "webp"

	// DefaultLoading 默认加载策略
	DefaultLoading = "lazy"
)

// Config 回退控制器配置
type Config struct {
	// DefaultExt 请求未指定扩展名时使用的目标扩展名
	DefaultExt string

	// DefaultLoading 请求未指定加载策略时的透传值
	DefaultLoading string

	// Logger 日志器，为 nil 时使用全局日志器
	Logger log.Logger

	// Events 可选的事件回调，供宿主侧观测使用
	Events Events
}

// DefaultConfig 返回默认的控制器配置
//
// 默认配置:
//   - DefaultExt: "webp"
//   - DefaultLoading: "lazy"
func DefaultConfig() *Config {
	return &Config{
		DefaultExt:     DefaultExtension,
		DefaultLoading: DefaultLoading,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.DefaultExt == "" {
		return fmt.Errorf("默认扩展名不能为空")
	}
	if c.DefaultLoading == "" {
		c.DefaultLoading = DefaultLoading
	}
	return nil
}

// WithDefaultExtension 设置默认目标扩展名
//
// 参数:
//   - ext: 扩展名（不含点），如 "webp"、"avif"
func (c *Config) WithDefaultExtension(ext string) *Config {
	c.DefaultExt = ext
	return c
}

// WithDefaultLoading 设置默认加载策略
func (c *Config) WithDefaultLoading(loading string) *Config {
	c.DefaultLoading = loading
	return c
}

// WithLogger 设置日志器
func (c *Config) WithLogger(logger log.Logger) *Config {
	c.Logger = logger
	return c
}

// WithEvents 设置事件回调
func (c *Config) WithEvents(events Events) *Config {
	c.Events = events
	return c
}

// Copy 创建配置的副本
func (c *Config) Copy() *Config {
	return &Config{
		DefaultExt:     c.DefaultExt,
		DefaultLoading: c.DefaultLoading,
		Logger:         c.Logger,
		Events:         c.Events,
	}
}
