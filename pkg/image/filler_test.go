package image

import (
	"context"
	"testing"

	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// mockResolver 测试用的 mock 解析器
type mockResolver struct {
	data map[string]*SourceInfo
}

func newMockResolver(data map[string]*SourceInfo) *mockResolver {
	return &mockResolver{data: data}
}

func (m *mockResolver) Resolve(ctx context.Context, srcs []string) (map[string]*SourceInfo, error) {
	result := make(map[string]*SourceInfo)
	for _, src := range srcs {
		if info, ok := m.data[src]; ok {
			result[src] = info
		}
	}
	return result, nil
}

// 测试数据
var testData = map[string]*SourceInfo{
	"/img/cover.jpg": {
		URL:        "https://cdn.example.com/img/cover.jpg",
		Renditions: map[string]string{"300x300": "https://cdn.example.com/img/cover__300x300.jpg"},
		Success:    true,
	},
	"/img/banner.png": {
		URL:        "https://cdn.example.com/img/banner.png",
		Renditions: map[string]string{"300x300": "https://cdn.example.com/img/banner__300x300.png"},
		Success:    true,
	},
	"/img/detail.jpg": {
		URL:     "https://cdn.example.com/img/detail.jpg",
		Success: true,
	},
	"/img/missing.jpg": {
		Success: false,
		Error:   "source not found",
	},
}

func TestSingle(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := "/img/cover.jpg"
	var url string

	err := filler.Fill(ctx, Single(&src, &url))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	if url != "https://cdn.example.com/img/cover.jpg" {
		t.Errorf("expected url to be filled, got: %s", url)
	}
}

func TestSingleEmpty(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := ""
	var url string

	err := filler.Fill(ctx, Single(&src, &url))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	if url != "" {
		t.Errorf("expected url to be empty, got: %s", url)
	}
}

func TestSingleFailed(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := "/img/missing.jpg"
	url := "original"

	err := filler.Fill(ctx, Single(&src, &url))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	// 解析失败时保持原值
	if url != "original" {
		t.Errorf("expected url to keep original value, got: %s", url)
	}
}

func TestSingleTo(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	type ImageData struct {
		URL       string
		Thumbnail string
	}

	src := "/img/cover.jpg"
	var data ImageData

	err := filler.Fill(ctx, SingleTo(&src, &data, func(s *SourceInfo) ImageData {
		return ImageData{
			URL:       s.URL,
			Thumbnail: s.GetRendition("300x300"),
		}
	}))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	if data.URL != "https://cdn.example.com/img/cover.jpg" {
		t.Errorf("expected url to be filled, got: %s", data.URL)
	}
	if data.Thumbnail != "https://cdn.example.com/img/cover__300x300.jpg" {
		t.Errorf("expected thumbnail rendition, got: %s", data.Thumbnail)
	}
}

func TestSizedPrefersRendition(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := "/img/cover.jpg"
	var url string

	err := filler.Fill(ctx, Sized(&src, &url, 300, 300))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	// 已物化的变体直接使用
	if url != "https://cdn.example.com/img/cover__300x300.jpg" {
		t.Errorf("expected materialized rendition, got: %s", url)
	}
}

func TestSizedFallsBackToBuiltURL(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := "/img/detail.jpg"
	var url string

	err := filler.Fill(ctx, Sized(&src, &url, 300, 300))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	// 无变体时基于规范URL构造尺寸标记
	if url != "https://cdn.example.com/img/detail__300x300.jpg" {
		t.Errorf("expected constructed resized url, got: %s", url)
	}
}

func TestSourceSet(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	src := "/img/cover.jpg"
	var srcset string

	err := filler.Fill(ctx, SourceSet(&src, &srcset, []urlbuilder.SizeVariant{
		{W: 400, H: 300, Density: 1},
		{W: 800, H: 600, Density: 2},
	}))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	want := "https://cdn.example.com/img/cover__400x300.jpg 1x, https://cdn.example.com/img/cover__800x600.jpg 2x"
	if srcset != want {
		t.Errorf("unexpected srcset:\n got: %s\nwant: %s", srcset, want)
	}
}

func TestMulti(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	srcs := []string{"/img/cover.jpg", "/img/banner.png", "/img/missing.jpg"}
	var urls []string

	err := filler.Fill(ctx, Multi(&srcs, &urls))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	if len(urls) != 3 {
		t.Fatalf("expected 3 urls, got: %d", len(urls))
	}
	if urls[0] != "https://cdn.example.com/img/cover.jpg" {
		t.Errorf("unexpected urls[0]: %s", urls[0])
	}
	if urls[1] != "https://cdn.example.com/img/banner.png" {
		t.Errorf("unexpected urls[1]: %s", urls[1])
	}
	// 失败的源路径保持零值，位置不变
	if urls[2] != "" {
		t.Errorf("expected empty url for failed source, got: %s", urls[2])
	}
}

func TestRich(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	raw := `<p><img data-src="/img/cover.jpg" src="placeholder"></p>`
	var rendered string

	err := filler.Fill(ctx, Rich(&raw, &rendered))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	want := `<p><img data-src="/img/cover.jpg" src="https://cdn.example.com/img/cover.jpg"></p>`
	if rendered != want {
		t.Errorf("unexpected rendered:\n got: %s\nwant: %s", rendered, want)
	}
}

func TestRichUseRendition(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	raw := `<img data-src="/img/cover.jpg" src="">`
	var rendered string

	err := filler.Fill(ctx, Rich(&raw, &rendered).UseRendition("300x300"))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	want := `<img data-src="/img/cover.jpg" src="https://cdn.example.com/img/cover__300x300.jpg">`
	if rendered != want {
		t.Errorf("unexpected rendered:\n got: %s\nwant: %s", rendered, want)
	}
}

func TestRichKeepsUnresolvedPlaceholder(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	raw := `<img data-src="/img/missing.jpg" src="placeholder">`
	var rendered string

	err := filler.Fill(ctx, Rich(&raw, &rendered))
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	// 解析失败的占位符保持原样
	if rendered != raw {
		t.Errorf("expected placeholder to be kept, got: %s", rendered)
	}
}

func TestFillSlice(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	type Article struct {
		Cover    string
		CoverURL string
	}

	articles := []*Article{
		{Cover: "/img/cover.jpg"},
		{Cover: "/img/banner.png"},
	}

	err := FillSlice(ctx, filler, articles, func(a *Article) []Binding {
		return []Binding{Single(&a.Cover, &a.CoverURL)}
	})
	if err != nil {
		t.Fatalf("FillSlice failed: %v", err)
	}

	if articles[0].CoverURL != "https://cdn.example.com/img/cover.jpg" {
		t.Errorf("unexpected articles[0].CoverURL: %s", articles[0].CoverURL)
	}
	if articles[1].CoverURL != "https://cdn.example.com/img/banner.png" {
		t.Errorf("unexpected articles[1].CoverURL: %s", articles[1].CoverURL)
	}
}

func TestFillNilBindings(t *testing.T) {
	filler := NewFiller(newMockResolver(testData))
	ctx := context.Background()

	if err := filler.Fill(ctx); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if err := filler.Fill(ctx, nil, nil); err != nil {
		t.Fatalf("Fill with nil bindings failed: %v", err)
	}
}
