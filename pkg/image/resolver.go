package image

import (
	"context"

	"github.com/heyinLab/imagekit/pkg/rendition"
)

// Resolver 源路径解析器接口
type Resolver interface {
	// Resolve 批量解析源路径为投递信息
	//
	// 参数:
	//   - ctx: 上下文
	//   - srcs: 源路径列表（已去重）
	//
	// 返回:
	//   - map[string]*SourceInfo: 源路径到投递信息的映射
	//   - error: 解析失败时的错误
	Resolve(ctx context.Context, srcs []string) (map[string]*SourceInfo, error)
}

// ResolverOptions 解析器选项
type ResolverOptions struct {
	// IncludeRenditions 是否包含渲染变体URL（如缩略图）
	IncludeRenditions bool
	// ExpiresIn URL签名有效期（秒），默认3600
	ExpiresIn int64
}

// renditionResolver 基于 rendition.Client 的解析器实现
type renditionResolver struct {
	client *rendition.Client
	opts   *ResolverOptions
}

// NewResolver 创建基于媒体服务客户端的解析器
//
// 参数:
//   - client: 媒体服务客户端
//
// 使用示例:
//
//	resolver := image.NewResolver(renditionClient)
//	filler := image.NewFiller(resolver)
//
// 说明:
//   - 租户与区域信息经视图上下文中间件透传，无需在此显式传递
func NewResolver(client *rendition.Client) Resolver {
	return &renditionResolver{
		client: client,
		opts: &ResolverOptions{
			IncludeRenditions: true,
			ExpiresIn:         rendition.DefaultURLExpiresIn,
		},
	}
}

// NewResolverWithOptions 创建带选项的解析器
//
// 参数:
//   - client: 媒体服务客户端
//   - opts: 解析器选项
//
// 使用示例:
//
//	resolver := image.NewResolverWithOptions(renditionClient, &image.ResolverOptions{
//	    IncludeRenditions: true,
//	    ExpiresIn:         7200,
//	})
func NewResolverWithOptions(client *rendition.Client, opts *ResolverOptions) Resolver {
	if opts == nil {
		opts = &ResolverOptions{
			IncludeRenditions: true,
			ExpiresIn:         rendition.DefaultURLExpiresIn,
		}
	}
	return &renditionResolver{
		client: client,
		opts:   opts,
	}
}

// Resolve 实现 Resolver 接口
func (r *renditionResolver) Resolve(ctx context.Context, srcs []string) (map[string]*SourceInfo, error) {
	if len(srcs) == 0 {
		return make(map[string]*SourceInfo), nil
	}

	results, err := r.client.GetSourceURLs(ctx, srcs, &rendition.GetSourceURLsOptions{
		IncludeRenditions: r.opts.IncludeRenditions,
		ExpiresIn:         r.opts.ExpiresIn,
	})
	if err != nil {
		return nil, err
	}

	sources := make(map[string]*SourceInfo, len(results))
	for src, info := range results {
		sources[src] = &SourceInfo{
			URL:        info.URL,
			Renditions: info.Renditions,
			Success:    info.Success,
			Error:      info.Error,
		}
	}

	return sources, nil
}
