package urlbuilder

import (
	"fmt"
	"strings"
)

// SizeVariant 尺寸变体
//
// 描述一个候选渲染尺寸，零值字段表示继承调用方的默认值
type SizeVariant struct {
	// W 目标宽度（像素），0 表示继承
	W int
	// H 目标高度（像素），0 表示继承
	H int
	// Ext 目标文件扩展名（不含点），空表示继承
	Ext string
	// Density 像素密度倍数（如 2 表示 2x），0 表示不输出密度后缀
	Density int
}

// BuildResizedURL 构造带尺寸标记的图片URL
//
// 在源路径的最后一个 "." 处拆分出基础路径和原始扩展名，
// 然后按 base + "__{w}x{h}" + 扩展名 + 密度后缀 拼接：
//   - 仅当 w 和 h 都大于 0 时插入尺寸标记
//   - ext 非空时替换原始扩展名，否则保留原始扩展名
//   - density 大于 0 时追加 " {d}x" 后缀（用于 srcset 场景）
//
// 参数:
//   - src: 源图片路径或URL（应包含扩展名；无扩展名时整个字符串视为基础路径）
//   - w: 目标宽度
//   - h: 目标高度
//   - ext: 扩展名覆盖（不含点），空表示不覆盖
//   - density: 像素密度倍数，0 表示无
//
// 返回:
//   - string: 构造后的URL，无错误场景
//
// 使用示例:
//
//	urlbuilder.BuildResizedURL("/img/photo.jpg", 100, 50, "webp", 0)
//	// => "/img/photo__100x50.webp"
func BuildResizedURL(src string, w, h int, ext string, density int) string {
	base := src
	originalExt := ""
	if idx := strings.LastIndex(src, "."); idx >= 0 {
		base = src[:idx]
		originalExt = src[idx:]
	}

	sizeTag := ""
	if w > 0 && h > 0 {
		sizeTag = fmt.Sprintf("__%dx%d", w, h)
	}

	extension := originalExt
	if ext != "" {
		extension = "." + ext
	}

	densitySuffix := ""
	if density > 0 {
		densitySuffix = fmt.Sprintf(" %dx", density)
	}

	return base + sizeTag + extension + densitySuffix
}

// BuildSourceSet 构造 srcset 候选列表字符串
//
// 将每个变体经 BuildResizedURL 转换后用 ", " 连接
//
// 参数:
//   - src: 源图片路径或URL
//   - variants: 尺寸变体列表
//
// 返回:
//   - string: srcset 字符串，variants 为空时返回空字符串
//
// 使用示例:
//
//	urlbuilder.BuildSourceSet("/a/b.png", []urlbuilder.SizeVariant{
//	    {W: 50, H: 50},
//	    {W: 100, H: 100, Ext: "avif"},
//	})
//	// => "/a/b__50x50.png, /a/b__100x100.avif"
func BuildSourceSet(src string, variants []SizeVariant) string {
	if len(variants) == 0 {
		return ""
	}

	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, BuildResizedURL(src, v.W, v.H, v.Ext, v.Density))
	}
	return strings.Join(parts, ", ")
}
