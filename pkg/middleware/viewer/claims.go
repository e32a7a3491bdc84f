package viewer

import "context"

// Claims 图片投递的视图上下文
//
// 描述当前请求的观看方信息，决定渲染变体的选取与URL签名的租户域
type Claims struct {
	// TenantCode 租户编码，渲染变体按租户隔离
	TenantCode string
	// RegionName 区域名称，用于按区域就近投递
	RegionName string
	// PixelDensity 设备像素密度倍数（如 2 表示 2x屏），0 表示未知
	PixelDensity int
}

// 定义用于在 context 中传递 Claims 的 key
type claimsKey struct{}

// NewContext 将 Claims 存入 context
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext 从 context 中获取 Claims
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}
