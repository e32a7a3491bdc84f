package media

import (
	"github.com/heyinLab/imagekit/pkg/image"
	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// 字段标记类型
//
// 在响应DTO上使用这些类型声明字段的填充行为，
// AutoFill 据此收集源路径并回填投递URL
type (
	// SrcPath 源路径，原样复制（不做解析）
	SrcPath string

	// SrcPaths 源路径列表，原样复制
	SrcPaths []string

	// URL 投递URL（双字段模式）
	// 通过 `media:"Cover"` tag 指定持有源路径的源字段
	URL string

	// URLs 投递URL列表（双字段模式）
	URLs []string

	// SrcSet srcset 候选列表字符串（双字段模式）
	// 基于投递URL与填充器配置的尺寸变体构造
	SrcSet string

	// RichText 富文本，data-src="source_path" 占位符会被替换为投递URL
	RichText string
)

// DefaultSrcSetVariants 默认的 srcset 尺寸变体
var DefaultSrcSetVariants = []urlbuilder.SizeVariant{
	{W: 400, H: 300, Density: 1},
	{W: 800, H: 600, Density: 2},
}

// Filler 媒体字段填充器
//
// 包装 image.Filler 并携带 SrcSet 字段使用的尺寸变体配置
type Filler struct {
	filler   *image.Filler
	variants []urlbuilder.SizeVariant
}

// NewFiller 创建媒体字段填充器
//
// 参数:
//   - filler: 图片URL填充器
//
// 使用示例:
//
//	resolver := image.NewResolver(renditionClient)
//	mediaFiller := media.NewFiller(image.NewFiller(resolver))
func NewFiller(filler *image.Filler) *Filler {
	return &Filler{
		filler:   filler,
		variants: DefaultSrcSetVariants,
	}
}

// WithSrcSetVariants 设置 SrcSet 字段使用的尺寸变体
func (f *Filler) WithSrcSetVariants(variants []urlbuilder.SizeVariant) *Filler {
	f.variants = variants
	return f
}
