package rendition

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/registry"
	"github.com/go-kratos/kratos/v2/transport/http"

	businessErrors "github.com/heyinLab/imagekit/pkg/errors"
	"github.com/heyinLab/imagekit/pkg/middleware/viewer"
)

// MaxBatchSize 单次批量查询的最大源路径数量
const MaxBatchSize = 100

// SourceURLInfo 单个源路径的投递信息
type SourceURLInfo struct {
	// Src 源路径（回显）
	Src string `json:"src"`
	// URL 规范投递URL（CDN域、含签名）
	URL string `json:"url"`
	// Renditions 已物化的渲染变体映射
	// key: 变体标识，如 "300x300"、"800x600_webp"
	// value: 变体URL
	Renditions map[string]string `json:"renditions,omitempty"`
	// Success 是否成功解析
	Success bool `json:"success"`
	// Error 错误信息（Success=false时）
	Error string `json:"error,omitempty"`
}

// GetSourceURLsOptions 批量查询选项
type GetSourceURLsOptions struct {
	// IncludeRenditions 是否返回已物化的渲染变体
	IncludeRenditions bool `json:"include_renditions"`
	// ExpiresIn URL签名有效期（秒），0 时使用服务端默认值
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

type getSourceURLsRequest struct {
	Srcs              []string `json:"srcs"`
	IncludeRenditions bool     `json:"include_renditions"`
	ExpiresIn         int64    `json:"expires_in,omitempty"`
}

type getSourceURLsReply struct {
	Results map[string]*SourceURLInfo `json:"results"`
}

// Client 媒体服务内部客户端
//
// 封装媒体服务内部接口的 HTTP 调用，供内部微服务查询
// 源图片的投递URL与已物化的渲染变体
//
// 使用示例:
//
//	client, err := rendition.NewClientWithDiscovery(
//	    rendition.DefaultInternalConfig(),
//	    consulDiscovery,
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// 批量查询投递信息
//	results, err := client.GetSourceURLs(ctx, srcs, nil)
type Client struct {
	config *ClientConfig
	conn   *http.Client
	logger *log.Helper
}

// NewClient 创建媒体服务内部客户端（直连方式）
//
// 参数:
//   - config: 客户端配置，可以使用 DefaultInternalConfig() 获取默认配置
//
// 返回:
//   - *Client: 客户端实例
//   - error: 创建失败时的错误信息
//
// 使用示例:
//
//	config := rendition.DefaultInternalConfig().
//	    WithEndpoint("localhost:9000")
//	client, err := rendition.NewClient(config)
func NewClient(config *ClientConfig) (*Client, error) {
	return newClient(config, nil)
}

// NewClientWithDiscovery 创建带服务发现的媒体服务内部客户端
//
// 参数:
//   - config: 客户端配置
//   - discovery: 服务发现实例（如 Consul）
//
// 返回:
//   - *Client: 客户端实例
//   - error: 创建失败时的错误信息
//
// 使用示例:
//
//	// 创建 Consul 服务发现
//	discovery := consul.New(consulClient)
//
//	config := rendition.DefaultInternalConfig()
//	client, err := rendition.NewClientWithDiscovery(config, discovery)
func NewClientWithDiscovery(config *ClientConfig, discovery registry.Discovery) (*Client, error) {
	if discovery == nil {
		return nil, fmt.Errorf("服务发现实例不能为空")
	}
	return newClient(config, discovery)
}

func newClient(config *ClientConfig, discovery registry.Discovery) (*Client, error) {
	if config == nil {
		config = DefaultInternalConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := log.NewHelper(log.With(
		log.GetLogger(),
		"module", "media-internal-client",
	))

	opts := []http.ClientOption{
		http.WithEndpoint(config.Endpoint),
		http.WithTimeout(config.Timeout),
		// 出站请求携带视图上下文（租户、区域、像素密度）
		http.WithMiddleware(viewer.Client()),
	}
	if discovery != nil {
		opts = append(opts, http.WithDiscovery(discovery))
	}

	conn, err := http.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 连接失败: %w", err)
	}

	if discovery != nil {
		logger.Infof("媒体内部服务客户端连接成功 (服务发现): endpoint=%s, timeout=%v", config.Endpoint, config.Timeout)
	}

	return &Client{
		config: config,
		conn:   conn,
		logger: logger,
	}, nil
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ========== 投递信息接口 ==========

// GetSourceURLs 批量查询源路径的投递信息
//
// 参数:
//   - ctx: 上下文（租户等视图信息经中间件透传）
//   - srcs: 源路径列表（最多100个）
//   - opts: 查询选项，nil 时包含渲染变体并使用默认签名有效期
//
// 返回:
//   - map[string]*SourceURLInfo: 源路径到投递信息的映射
//   - error: 错误信息
func (c *Client) GetSourceURLs(ctx context.Context, srcs []string, opts *GetSourceURLsOptions) (map[string]*SourceURLInfo, error) {
	if len(srcs) == 0 {
		return make(map[string]*SourceURLInfo), nil
	}

	if len(srcs) > MaxBatchSize {
		return nil, errors.New(
			int(businessErrors.ErrBatchTooLarge.HttpCode),
			businessErrors.ErrBatchTooLarge.Type,
			fmt.Sprintf("源路径数量不能超过%d个，当前: %d", MaxBatchSize, len(srcs)),
		)
	}

	if opts == nil {
		opts = &GetSourceURLsOptions{
			IncludeRenditions: true,
			ExpiresIn:         DefaultURLExpiresIn,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := &getSourceURLsRequest{
		Srcs:              srcs,
		IncludeRenditions: opts.IncludeRenditions,
		ExpiresIn:         opts.ExpiresIn,
	}

	var reply getSourceURLsReply
	path := c.config.BasePath + "/sources/batch"
	if err := c.conn.Invoke(ctx, "POST", path, req, &reply); err != nil {
		c.logger.WithContext(ctx).Errorf("批量查询投递信息失败: count=%d, error=%v", len(srcs), err)
		return nil, err
	}

	if reply.Results == nil {
		return make(map[string]*SourceURLInfo), nil
	}
	return reply.Results, nil
}

// GetSourceURL 查询单个源路径的投递信息
//
// 参数:
//   - ctx: 上下文
//   - src: 源路径
//
// 返回:
//   - *SourceURLInfo: 投递信息
//   - error: 错误信息
func (c *Client) GetSourceURL(ctx context.Context, src string) (*SourceURLInfo, error) {
	if src == "" {
		return nil, fmt.Errorf("源路径不能为空")
	}

	results, err := c.GetSourceURLs(ctx, []string{src}, nil)
	if err != nil {
		return nil, err
	}

	info, ok := results[src]
	if !ok {
		return nil, fmt.Errorf("媒体服务未返回源路径的投递信息: src=%s", src)
	}
	return info, nil
}
