package middleware

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/middleware"
	"google.golang.org/grpc/metadata"

	"github.com/heyinLab/imagekit/pkg/middleware/common"
	viewerWare "github.com/heyinLab/imagekit/pkg/middleware/viewer"
)

// ForwardClaims 将视图上下文转发到下游 gRPC 调用
func ForwardClaims() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (reply interface{}, err error) {
			// 1. 从当前上下文中获取视图信息 (通常是 HTTP 侧解析 header 后放进去的)
			claims, ok := viewerWare.FromContext(ctx)
			if ok && claims != nil && claims.TenantCode != "" {
				// 2. 将关键字段放入 gRPC Metadata
				// 使用 AppendToOutgoingContext 可以保留已有的 metadata (如 trace_id)
				ctx = metadata.AppendToOutgoingContext(ctx,
					common.TENANTCODE, claims.TenantCode,
					common.REGIONNAME, claims.RegionName,
					common.PIXELDENSITY, strconv.Itoa(claims.PixelDensity),
				)
			}
			return handler(ctx, req)
		}
	}
}
