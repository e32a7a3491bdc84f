package image

import (
	"fmt"
	"regexp"

	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// Binding 字段绑定接口
type Binding interface {
	collectSrcs() []string
	fill(sources map[string]*SourceInfo)
}

// ==================== Single 单图绑定 ====================

type singleBinding[T any] struct {
	src    *string
	target *T
	fillFn func(*SourceInfo) T
}

// Single 创建单图绑定
//
// 将源路径对应的投递URL填充到目标字段
//
// 参数:
//   - src: 源路径字段指针
//   - url: 目标URL字段指针
//
// 使用示例:
//
//	image.Single(&a.Cover, &a.CoverURL)
func Single(src *string, url *string) Binding {
	return SingleTo(src, url, func(s *SourceInfo) string {
		return s.URL
	})
}

// SingleTo 创建单图绑定（泛型版本）
//
// 将源路径对应的投递信息转换后填充到目标字段
//
// 参数:
//   - src: 源路径字段指针
//   - target: 目标字段指针（任意类型）
//   - fillFn: 转换函数，将 SourceInfo 转换为目标类型
//
// 使用示例:
//
//	type ImageData struct {
//	    URL       string
//	    Thumbnail string
//	}
//
//	image.SingleTo(&a.Cover, &a.CoverData, func(s *image.SourceInfo) ImageData {
//	    return ImageData{
//	        URL:       s.URL,
//	        Thumbnail: s.GetRendition("300x300"),
//	    }
//	})
func SingleTo[T any](src *string, target *T, fillFn func(*SourceInfo) T) Binding {
	return &singleBinding[T]{
		src:    src,
		target: target,
		fillFn: fillFn,
	}
}

func (b *singleBinding[T]) collectSrcs() []string {
	if b.src == nil || *b.src == "" {
		return nil
	}
	return []string{*b.src}
}

func (b *singleBinding[T]) fill(sources map[string]*SourceInfo) {
	if b.src == nil || *b.src == "" || b.target == nil {
		return
	}
	if info, ok := sources[*b.src]; ok && info.Success {
		*b.target = b.fillFn(info)
	}
}

// ==================== Sized 定尺寸绑定 ====================

// Sized 创建定尺寸单图绑定
//
// 优先使用媒体服务已物化的 "{w}x{h}" 渲染变体，
// 变体不存在时基于规范投递URL构造带尺寸标记的URL
//
// 参数:
//   - src: 源路径字段指针
//   - url: 目标URL字段指针
//   - w: 目标宽度
//   - h: 目标高度
//
// 使用示例:
//
//	image.Sized(&a.Cover, &a.CoverThumbURL, 300, 300)
func Sized(src *string, url *string, w, h int) Binding {
	name := fmt.Sprintf("%dx%d", w, h)
	return SingleTo(src, url, func(s *SourceInfo) string {
		if s.Renditions != nil {
			if u, ok := s.Renditions[name]; ok {
				return u
			}
		}
		return urlbuilder.BuildResizedURL(s.URL, w, h, "", 0)
	})
}

// SourceSet 创建 srcset 绑定
//
// 基于规范投递URL与尺寸变体列表构造 srcset 字符串填充到目标字段
//
// 参数:
//   - src: 源路径字段指针
//   - target: 目标 srcset 字段指针
//   - variants: 尺寸变体列表
//
// 使用示例:
//
//	image.SourceSet(&a.Cover, &a.CoverSrcSet, []urlbuilder.SizeVariant{
//	    {W: 400, H: 300, Density: 1},
//	    {W: 800, H: 600, Density: 2},
//	})
func SourceSet(src *string, target *string, variants []urlbuilder.SizeVariant) Binding {
	return SingleTo(src, target, func(s *SourceInfo) string {
		return urlbuilder.BuildSourceSet(s.URL, variants)
	})
}

// ==================== Multi 多图绑定 ====================

type multiBinding[T any] struct {
	srcs    *[]string
	targets *[]T
	fillFn  func(*SourceInfo) T
}

// Multi 创建多图绑定
//
// 将源路径列表对应的投递URL列表填充到目标字段
// 保持源路径和URL的顺序对应
//
// 参数:
//   - srcs: 源路径列表字段指针
//   - urls: 目标URL列表字段指针
//
// 使用示例:
//
//	image.Multi(&a.Gallery, &a.GalleryURLs)
func Multi(srcs *[]string, urls *[]string) Binding {
	return MultiTo(srcs, urls, func(s *SourceInfo) string {
		return s.URL
	})
}

// MultiTo 创建多图绑定（泛型版本）
//
// 将源路径列表对应的投递信息转换后填充到目标字段
//
// 参数:
//   - srcs: 源路径列表字段指针
//   - targets: 目标列表字段指针（任意类型）
//   - fillFn: 转换函数
//
// 使用示例:
//
//	image.MultiTo(&a.Gallery, &a.GalleryData, func(s *image.SourceInfo) ImageData {
//	    return ImageData{URL: s.URL, Thumbnail: s.GetRendition("300x300")}
//	})
func MultiTo[T any](srcs *[]string, targets *[]T, fillFn func(*SourceInfo) T) Binding {
	return &multiBinding[T]{
		srcs:    srcs,
		targets: targets,
		fillFn:  fillFn,
	}
}

func (b *multiBinding[T]) collectSrcs() []string {
	if b.srcs == nil || len(*b.srcs) == 0 {
		return nil
	}
	result := make([]string, 0, len(*b.srcs))
	for _, src := range *b.srcs {
		if src != "" {
			result = append(result, src)
		}
	}
	return result
}

func (b *multiBinding[T]) fill(sources map[string]*SourceInfo) {
	if b.srcs == nil || len(*b.srcs) == 0 || b.targets == nil {
		return
	}
	srcs := *b.srcs
	results := make([]T, len(srcs))
	for i, src := range srcs {
		if src == "" {
			continue
		}
		if info, ok := sources[src]; ok && info.Success {
			results[i] = b.fillFn(info)
		}
	}
	*b.targets = results
}

// ==================== Rich 富文本绑定 ====================

// 默认图片占位符正则：data-src="source_path" src="..."
// 匹配 data-src="路径" src="任意内容" 格式，替换后保留 data-src，更新 src 为投递URL
var defaultPattern = regexp.MustCompile(`data-src="([^"]+)" src="[^"]*"`)

type richBinding struct {
	raw      *string
	rendered *string
	pattern  *regexp.Regexp
	sized    string
}

// Rich 创建富文本绑定
//
// 替换富文本中的图片占位符为实际投递URL
// 占位符格式：data-src="source_path" src="..."
//
// 参数:
//   - raw: 原始富文本字段指针
//   - rendered: 渲染后的富文本字段指针
//
// 使用示例:
//
//	image.Rich(&a.Description, &a.DescriptionHTML)
func Rich(raw *string, rendered *string) *richBinding {
	return &richBinding{
		raw:      raw,
		rendered: rendered,
		pattern:  defaultPattern,
	}
}

// Pattern 设置自定义匹配模式
//
// 正则必须包含一个捕获组用于提取源路径
//
// 使用示例:
//
//	image.Rich(&a.Content, &a.ContentHTML).Pattern(regexp.MustCompile(`\[img:([^\]]+)\]`))
func (b *richBinding) Pattern(p *regexp.Regexp) *richBinding {
	b.pattern = p
	return b
}

// UseRendition 使用指定渲染变体URL替换
//
// 使用示例:
//
//	image.Rich(&a.Content, &a.ContentHTML).UseRendition("800x600")
func (b *richBinding) UseRendition(name string) *richBinding {
	b.sized = name
	return b
}

func (b *richBinding) collectSrcs() []string {
	if b.raw == nil || *b.raw == "" {
		return nil
	}
	matches := b.pattern.FindAllStringSubmatch(*b.raw, -1)
	if len(matches) == 0 {
		return nil
	}
	srcs := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) >= 2 && m[1] != "" {
			srcs = append(srcs, m[1])
		}
	}
	return srcs
}

func (b *richBinding) fill(sources map[string]*SourceInfo) {
	if b.raw == nil || *b.raw == "" || b.rendered == nil {
		return
	}
	*b.rendered = b.pattern.ReplaceAllStringFunc(*b.raw, func(match string) string {
		subs := b.pattern.FindStringSubmatch(match)
		if len(subs) < 2 {
			return match
		}
		src := subs[1]
		info, ok := sources[src]
		if !ok || !info.Success {
			return match // 保持原占位符
		}
		var url string
		if b.sized != "" {
			url = info.GetRendition(b.sized)
		} else {
			url = info.URL
		}
		// 保留 data-src，更新 src
		return `data-src="` + src + `" src="` + url + `"`
	})
}
