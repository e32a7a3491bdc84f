package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// recordingEvents 记录事件序列的测试回调
type recordingEvents struct {
	trying    []string
	failed    []string
	exhausted [][]string
}

func (r *recordingEvents) OnTrying(url string) { r.trying = append(r.trying, url) }

func (r *recordingEvents) OnCandidateFailed(url string) { r.failed = append(r.failed, url) }

func (r *recordingEvents) OnExhausted(candidates []string) {
	r.exhausted = append(r.exhausted, candidates)
}

func newTestController(events Events) *Controller {
	return NewController(DefaultConfig().WithEvents(events))
}

func TestInitializeCandidateOrder(t *testing.T) {
	ctrl := newTestController(nil)
	ctrl.Initialize(Request{
		Src: "/img/photo.jpg",
		W:   100,
		H:   50,
		Sizes: []urlbuilder.SizeVariant{
			{W: 200, H: 100},
			{Ext: "avif"},
		},
	})

	require.Equal(t, []string{
		"/img/photo__100x50.webp",
		"/img/photo__200x100.webp",
		"/img/photo__100x50.avif",
		"/img/photo.webp",
	}, ctrl.Candidates())
	assert.Equal(t, "/img/photo__100x50.webp", ctrl.CurrentURL())
}

func TestInitializeDeduplicates(t *testing.T) {
	ctrl := newTestController(nil)
	// 变体与主候选完全重合时只保留首次出现
	ctrl.Initialize(Request{
		Src:   "/img/photo.jpg",
		W:     100,
		H:     50,
		Sizes: []urlbuilder.SizeVariant{{W: 100, H: 50}},
	})

	require.Equal(t, []string{
		"/img/photo__100x50.webp",
		"/img/photo.webp",
	}, ctrl.Candidates())
}

func TestInitializeUnsizedCollapses(t *testing.T) {
	ctrl := newTestController(nil)
	// 宽高为0时主候选与无尺寸回退相同，列表长度为1
	ctrl.Initialize(Request{Src: "/img/photo.jpg"})

	require.Equal(t, []string{"/img/photo.webp"}, ctrl.Candidates())
}

func TestFallbackSequence(t *testing.T) {
	events := &recordingEvents{}
	ctrl := newTestController(events)
	ctrl.Initialize(Request{Src: "/img/photo.jpg", W: 100, H: 50, Ext: "webp"})

	require.Equal(t, []string{"/img/photo__100x50.webp", "/img/photo.webp"}, ctrl.Candidates())
	assert.Equal(t, "/img/photo__100x50.webp", ctrl.CurrentURL())
	keyBefore := ctrl.RenderKey()

	// 第一次失败: 推进到无尺寸回退
	ctrl.OnLoadFailure()
	assert.Equal(t, "/img/photo.webp", ctrl.CurrentURL())
	assert.Equal(t, keyBefore+1, ctrl.RenderKey())
	assert.False(t, ctrl.Exhausted())

	// 第二次失败: 耗尽，CurrentURL 与代次保持不变
	ctrl.OnLoadFailure()
	assert.True(t, ctrl.Exhausted())
	assert.Equal(t, "/img/photo.webp", ctrl.CurrentURL())
	assert.Equal(t, keyBefore+1, ctrl.RenderKey())

	assert.Equal(t, []string{"/img/photo__100x50.webp", "/img/photo.webp"}, events.failed)
	assert.Equal(t, []string{"/img/photo.webp"}, events.trying)
	require.Len(t, events.exhausted, 1)
	assert.Equal(t, []string{"/img/photo__100x50.webp", "/img/photo.webp"}, events.exhausted[0])
}

func TestExhaustedIsTerminal(t *testing.T) {
	events := &recordingEvents{}
	ctrl := newTestController(events)
	ctrl.Initialize(Request{Src: "/img/photo.jpg", W: 100, H: 50})

	for i := 0; i < 5; i++ {
		ctrl.OnLoadFailure()
	}

	// 错误信号只发出一次，终态下的额外调用为空操作
	require.Len(t, events.exhausted, 1)
	assert.Len(t, events.failed, 2)
	assert.True(t, ctrl.Exhausted())
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctrl := newTestController(nil)
	req := Request{Src: "/img/photo.jpg", W: 100, H: 50}

	ctrl.Initialize(req)
	first := ctrl.Candidates()
	ctrl.OnLoadFailure()
	assert.Equal(t, "/img/photo.webp", ctrl.CurrentURL())

	// 重新初始化: 即使此前已推进，游标也无条件回到 0
	ctrl.Initialize(req)
	assert.Equal(t, first, ctrl.Candidates())
	assert.Equal(t, first[0], ctrl.CurrentURL())
	assert.False(t, ctrl.Exhausted())
}

func TestSkipKnownBadCandidates(t *testing.T) {
	events := &recordingEvents{}
	ctrl := newTestController(events)
	req := Request{Src: "/img/photo.jpg", W: 100, H: 50, Sizes: []urlbuilder.SizeVariant{{W: 200, H: 100}}}

	// 第一代: 前两个候选都失败，进入失败缓存
	ctrl.Initialize(req)
	ctrl.OnLoadFailure()
	ctrl.OnLoadFailure()
	assert.Equal(t, "/img/photo.webp", ctrl.CurrentURL())

	// 第二代: 重建候选列表但失败缓存保留，
	// 首个候选失败后应跳过已知失败的第二个候选，且不为其发出尝试信号
	events.trying = nil
	ctrl.Initialize(req)
	assert.Equal(t, "/img/photo__100x50.webp", ctrl.CurrentURL())
	ctrl.OnLoadFailure()

	assert.Equal(t, "/img/photo.webp", ctrl.CurrentURL())
	assert.Equal(t, []string{"/img/photo.webp"}, events.trying)
	assert.NotContains(t, events.trying, "/img/photo__200x100.webp")
}

func TestSkipCascadesToExhaustion(t *testing.T) {
	events := &recordingEvents{}
	ctrl := newTestController(events)
	req := Request{Src: "/img/photo.jpg", W: 100, H: 50, Sizes: []urlbuilder.SizeVariant{{W: 200, H: 100}}}

	// 第一代: 全部失败
	ctrl.Initialize(req)
	ctrl.OnLoadFailure()
	ctrl.OnLoadFailure()
	ctrl.OnLoadFailure()
	require.True(t, ctrl.Exhausted())

	// 第二代: 首个候选失败后，剩余候选全部已知失败，一次调用直接耗尽
	ctrl.Initialize(req)
	ctrl.OnLoadFailure()
	assert.True(t, ctrl.Exhausted())
	assert.Equal(t, "/img/photo__100x50.webp", ctrl.CurrentURL())
	require.Len(t, events.exhausted, 2)
}

func TestStaleRenderKeyIgnored(t *testing.T) {
	ctrl := newTestController(nil)
	ctrl.Initialize(Request{Src: "/img/photo.jpg", W: 100, H: 50})
	staleKey := ctrl.RenderKey()

	// 属性变化触发重建，在途加载的回调携带旧代次，应被忽略
	ctrl.Initialize(Request{Src: "/img/other.jpg", W: 100, H: 50})
	ctrl.OnLoadFailureAt(staleKey)

	assert.Equal(t, "/img/other__100x50.webp", ctrl.CurrentURL())
	assert.False(t, ctrl.Exhausted())

	// 当前代次的回调正常生效
	ctrl.OnLoadFailureAt(ctrl.RenderKey())
	assert.Equal(t, "/img/other.webp", ctrl.CurrentURL())
}

func TestEmptySrcDegenerates(t *testing.T) {
	ctrl := newTestController(nil)
	ctrl.Initialize(Request{Src: ""})

	assert.Empty(t, ctrl.Candidates())
	assert.Equal(t, "", ctrl.CurrentURL())

	// 空列表下的失败回报为空操作
	ctrl.OnLoadFailure()
	assert.Equal(t, "", ctrl.CurrentURL())
}

func TestViewPassThrough(t *testing.T) {
	ctrl := newTestController(nil)
	ctrl.Initialize(Request{Src: "/img/photo.jpg", Alt: "封面", W: 100, H: 50})

	view := ctrl.View()
	assert.Equal(t, "/img/photo__100x50.webp", view.URL)
	assert.Equal(t, ctrl.RenderKey(), view.RenderKey)
	assert.Equal(t, "封面", view.Alt)
	assert.Equal(t, 100, view.W)
	assert.Equal(t, 50, view.H)
	// 未指定时应用默认加载策略
	assert.Equal(t, "lazy", view.Loading)
}
