package urlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildResizedURL(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		w, h    int
		ext     string
		density int
		want    string
	}{
		{
			name: "尺寸加扩展名覆盖",
			src:  "/img/photo.jpg", w: 100, h: 50, ext: "webp",
			want: "/img/photo__100x50.webp",
		},
		{
			name: "保留原始扩展名",
			src:  "/img/photo.jpg", w: 200, h: 100,
			want: "/img/photo__200x100.jpg",
		},
		{
			name: "宽为0时省略尺寸标记",
			src:  "/img/photo.jpg", w: 0, h: 50,
			want: "/img/photo.jpg",
		},
		{
			name: "高为0时省略尺寸标记",
			src:  "/img/photo.jpg", w: 50, h: 0,
			want: "/img/photo.jpg",
		},
		{
			name: "无尺寸仅换扩展名",
			src:  "/img/photo.jpg", ext: "webp",
			want: "/img/photo.webp",
		},
		{
			name: "密度后缀",
			src:  "/img/photo.png", w: 100, h: 100, density: 2,
			want: "/img/photo__100x100.png 2x",
		},
		{
			name: "路径中包含多个点时取最后一个",
			src:  "/img/a.b/photo.min.jpg", w: 10, h: 10,
			want: "/img/a.b/photo.min__10x10.jpg",
		},
		{
			name: "无扩展名路径整体作为基础路径",
			src:  "/img/photo", w: 10, h: 20, ext: "webp",
			want: "/img/photo__10x20.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildResizedURL(tt.src, tt.w, tt.h, tt.ext, tt.density)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSourceSet(t *testing.T) {
	got := BuildSourceSet("/a/b.png", []SizeVariant{
		{W: 50, H: 50},
		{W: 100, H: 100, Ext: "avif"},
	})
	assert.Equal(t, "/a/b__50x50.png, /a/b__100x100.avif", got)
}

func TestBuildSourceSetWithDensity(t *testing.T) {
	got := BuildSourceSet("/a/b.png", []SizeVariant{
		{W: 50, H: 50, Density: 1},
		{W: 100, H: 100, Density: 2},
	})
	assert.Equal(t, "/a/b__50x50.png 1x, /a/b__100x100.png 2x", got)
}

func TestBuildSourceSetEmpty(t *testing.T) {
	assert.Equal(t, "", BuildSourceSet("/a/b.png", nil))
}
