package viewer

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"

	businessErrors "github.com/heyinLab/imagekit/pkg/errors"
	"github.com/heyinLab/imagekit/pkg/middleware/common"
)

// GetCDNProfile 获取CDN投递档位
func GetCDNProfile(ctx context.Context) common.CDNProfile {
	if v, ok := ctx.Value(common.KeyCDNProfile).(common.CDNProfile); ok {
		return v
	}
	return common.CDNProfileDefault
}

// GetPixelDensity 获取设备像素密度，未知时返回 1
func GetPixelDensity(ctx context.Context) int {
	claims, ok := FromContext(ctx)
	if !ok || claims.PixelDensity <= 0 {
		return 1
	}
	return claims.PixelDensity
}

// Server 视图上下文中间件
//
// 从请求头解析观看方信息并注入 context，供渲染变体选取与URL签名使用
//
// 参数:
//   - needTenant: 是否要求租户编码必须存在（内部服务间调用通常为 true）
func Server(needTenant bool) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (reply interface{}, err error) {
			// 从 context 中获取 transport 信息 (HTTP/gRPC)
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return nil, errors.New(
					int(businessErrors.ErrSystemError.HttpCode),
					businessErrors.ErrSystemError.Type,
					businessErrors.ErrSystemError.Message,
				)
			}

			header := tr.RequestHeader()

			// 1. 读取公共 headers
			regionName := header.Get(common.REGIONNAME)

			// 2. 处理租户编码
			tenantCode := header.Get(common.TENANTCODE)
			if needTenant && tenantCode == "" {
				return nil, errors.New(
					int(businessErrors.ErrTenantMissing.HttpCode),
					businessErrors.ErrTenantMissing.Type,
					businessErrors.ErrTenantMissing.Message,
				)
			}

			// 3. 解析像素密度（可选 header，解析失败视为未知）
			pixelDensity := 0
			if densityStr := header.Get(common.PIXELDENSITY); densityStr != "" {
				if d, err := strconv.Atoi(densityStr); err == nil && d > 0 {
					pixelDensity = d
				}
			}

			// 4. 创建 Claims 并注入 context
			claims := &Claims{
				TenantCode:   tenantCode,
				RegionName:   regionName,
				PixelDensity: pixelDensity,
			}
			newCtx := NewContext(ctx, claims)

			// 5. 读取CDN投递档位（可选）
			if profile := header.Get(common.CDNPROFILE); profile != "" {
				newCtx = context.WithValue(newCtx, common.KeyCDNProfile, common.CDNProfile(profile))
			}

			return handler(newCtx, req)
		}
	}
}

// Client 视图上下文转发中间件（客户端侧）
//
// 将 context 中的 Claims 写入出站请求头，
// 供 rendition 客户端在调用媒体服务时携带租户与区域信息
func Client() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (reply interface{}, err error) {
			if tr, ok := transport.FromClientContext(ctx); ok {
				if claims, exist := FromContext(ctx); exist && claims != nil {
					header := tr.RequestHeader()
					if claims.TenantCode != "" {
						header.Set(common.TENANTCODE, claims.TenantCode)
					}
					if claims.RegionName != "" {
						header.Set(common.REGIONNAME, claims.RegionName)
					}
					if claims.PixelDensity > 0 {
						header.Set(common.PIXELDENSITY, strconv.Itoa(claims.PixelDensity))
					}
				}
			}
			return handler(ctx, req)
		}
	}
}
