package common

// 常用 Header
const (
	TENANTCODE   string = "X-Tenant-Code"
	REGIONNAME   string = "X-Region-Name"
	PIXELDENSITY string = "X-Pixel-Density"
	CDNPROFILE   string = "X-CDN-Profile"
)

// 图片投递相关的 context key
type deliveryContextKey string

const (
	KeyCDNProfile deliveryContextKey = "cdn_profile"
)

// CDNProfile CDN投递档位
type CDNProfile string

const (
	CDNProfileDefault CDNProfile = "default" // 默认CDN域
	CDNProfileRegion  CDNProfile = "region"  // 按区域就近投递
)
