package middleware

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/middleware"
	"google.golang.org/grpc/metadata"

	"github.com/heyinLab/imagekit/pkg/middleware/common"
	viewerWare "github.com/heyinLab/imagekit/pkg/middleware/viewer"
)

// ExtractClaims 从入站 gRPC 调用的 metadata 还原视图上下文
func ExtractClaims() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (reply interface{}, err error) {
			// 1. 获取 gRPC 传入的 metadata
			if md, ok := metadata.FromIncomingContext(ctx); ok {
				// 准备一个空的 claims 对象
				claims := &viewerWare.Claims{}
				hasData := false

				// 2. 提取租户编码
				if vals := md.Get(common.TENANTCODE); len(vals) > 0 {
					claims.TenantCode = vals[0]
					hasData = true
				}

				// 3. 提取区域名称
				if vals := md.Get(common.REGIONNAME); len(vals) > 0 {
					claims.RegionName = vals[0]
				}

				// 4. 提取像素密度
				if vals := md.Get(common.PIXELDENSITY); len(vals) > 0 {
					if d, err := strconv.Atoi(vals[0]); err == nil && d > 0 {
						claims.PixelDensity = d
					}
				}

				// 5. 如果成功提取到了数据，将其注入到 Context 中
				// 这样后续的业务逻辑（Service层）就可以通过 viewerWare.FromContext(ctx) 拿到了
				if hasData {
					ctx = viewerWare.NewContext(ctx, claims)
				}
			}

			return handler(ctx, req)
		}
	}
}
