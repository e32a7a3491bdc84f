package image

import (
	"context"
)

// Filler 图片URL填充器
//
// 负责收集绑定的源路径，批量查询投递信息，然后分发填充
type Filler struct {
	resolver Resolver
}

// NewFiller 创建填充器
//
// 参数:
//   - resolver: 源路径解析器
//
// 使用示例:
//
//	resolver := image.NewResolver(renditionClient)
//	filler := image.NewFiller(resolver)
func NewFiller(resolver Resolver) *Filler {
	return &Filler{resolver: resolver}
}

// Resolve 批量解析源路径（去重后透传给解析器）
//
// 供 media 包等上层批量填充逻辑复用
func (f *Filler) Resolve(ctx context.Context, srcs []string) (map[string]*SourceInfo, error) {
	return f.resolver.Resolve(ctx, srcs)
}

// Fill 填充投递URL
//
// 收集所有绑定的源路径，去重后批量查询，然后分发填充
//
// 参数:
//   - ctx: 上下文
//   - bindings: 字段绑定列表
//
// 使用示例:
//
//	filler.Fill(ctx,
//	    image.Single(&p.Cover, &p.CoverURL),
//	    image.Sized(&p.Cover, &p.CoverThumbURL, 300, 300),
//	    image.Multi(&p.Gallery, &p.GalleryURLs),
//	    image.Rich(&p.Detail, &p.DetailHTML),
//	)
func (f *Filler) Fill(ctx context.Context, bindings ...Binding) error {
	if len(bindings) == 0 {
		return nil
	}

	// 1. 收集所有源路径并去重
	srcSet := make(map[string]struct{})
	for _, b := range bindings {
		if b == nil {
			continue
		}
		for _, src := range b.collectSrcs() {
			srcSet[src] = struct{}{}
		}
	}

	if len(srcSet) == 0 {
		return nil
	}

	// 2. 转换为切片
	srcs := make([]string, 0, len(srcSet))
	for src := range srcSet {
		srcs = append(srcs, src)
	}

	// 3. 批量查询
	sources, err := f.resolver.Resolve(ctx, srcs)
	if err != nil {
		return err
	}

	// 4. 填充所有绑定
	for _, b := range bindings {
		if b != nil {
			b.fill(sources)
		}
	}

	return nil
}

// ==================== 泛型辅助函数 ====================

// BindingFunc 绑定函数类型
//
// 用于定义结构体的字段绑定关系
type BindingFunc[T any] func(*T) []Binding

// FillOne 填充单个对象
//
// 参数:
//   - ctx: 上下文
//   - f: 填充器
//   - item: 要填充的对象指针
//   - bindFn: 绑定函数
//
// 使用示例:
//
//	func ArticleBindings(a *Article) []image.Binding {
//	    return []image.Binding{
//	        image.Single(&a.Cover, &a.CoverURL),
//	        image.Multi(&a.Gallery, &a.GalleryURLs),
//	    }
//	}
//
//	image.FillOne(ctx, filler, article, ArticleBindings)
func FillOne[T any](ctx context.Context, f *Filler, item *T, bindFn BindingFunc[T]) error {
	if item == nil {
		return nil
	}
	return f.Fill(ctx, bindFn(item)...)
}

// FillSlice 批量填充对象切片
//
// 所有对象的源路径会合并去重后一次性查询，然后分发填充
// 这是最高效的批量填充方式
//
// 参数:
//   - ctx: 上下文
//   - f: 填充器
//   - items: 要填充的对象切片
//   - bindFn: 绑定函数
//
// 使用示例:
//
//	articles, _ := repo.ListArticles(ctx)
//	image.FillSlice(ctx, filler, articles, ArticleBindings)
func FillSlice[T any](ctx context.Context, f *Filler, items []*T, bindFn BindingFunc[T]) error {
	if len(items) == 0 {
		return nil
	}

	var bindings []Binding
	for _, item := range items {
		if item != nil {
			bindings = append(bindings, bindFn(item)...)
		}
	}

	return f.Fill(ctx, bindings...)
}

// FillMap 填充 map 中的对象
//
// 参数:
//   - ctx: 上下文
//   - f: 填充器
//   - items: 要填充的对象 map
//   - bindFn: 绑定函数
//
// 使用示例:
//
//	articlesMap := map[string]*Article{...}
//	image.FillMap(ctx, filler, articlesMap, ArticleBindings)
func FillMap[K comparable, V any](ctx context.Context, f *Filler, items map[K]*V, bindFn BindingFunc[V]) error {
	if len(items) == 0 {
		return nil
	}

	var bindings []Binding
	for _, item := range items {
		if item != nil {
			bindings = append(bindings, bindFn(item)...)
		}
	}

	return f.Fill(ctx, bindings...)
}
