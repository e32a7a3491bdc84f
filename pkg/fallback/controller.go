package fallback

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// Request 图片渲染请求
//
// 由宿主组件提供的不可变描述，Initialize 时做默认值归一化
type Request struct {
	// Src 源图片路径或URL（必填，空值视为退化请求，候选列表为空）
	Src string
	// Alt 替代文本，透传给渲染层
	Alt string
	// W 目标显示宽度（像素），0 表示不限定
	W int
	// H 目标显示高度（像素），0 表示不限定
	H int
	// Ext 目标扩展名覆盖（不含点），空时使用配置默认值
	Ext string
	// Sizes 附加尺寸变体，按输入顺序生成候选URL
	Sizes []urlbuilder.SizeVariant
	// Loading 加载策略提示（如 "lazy"/"eager"），透传给渲染层
	Loading string
}

// RenderState 暴露给渲染层的只读状态
type RenderState struct {
	// URL 当前应渲染的图片URL
	URL string
	// RenderKey 渲染代次，宿主应将其作为身份令牌，
	// 相同URL在不同代次下仍视为全新的加载尝试
	RenderKey uint64
	// Alt 替代文本，原样透传
	Alt string
	// W 目标宽度，原样透传
	W int
	// H 目标高度，原样透传
	H int
	// Loading 加载策略，原样透传
	Loading string
}

// Controller 图片URL回退控制器
//
// 持有有序去重的候选URL列表、当前游标、失败缓存和渲染代次。
// 宿主渲染器展示 CurrentURL，加载失败时回报 OnLoadFailure，
// 控制器推进到下一个未知失败的候选，直到成功或耗尽。
//
// 失败缓存的生命周期与控制器实例一致，不跨实例共享；
// Initialize 重建候选列表时不清空失败缓存（保留跨代次的失败记忆）。
//
// 控制器不做任何网络操作，所有方法同步执行且非并发安全，
// 约定由单一事件循环串行调用；乱序的陈旧回调可通过
// OnLoadFailureAt 携带代次来过滤。
//
// 使用示例:
//
//	ctrl := fallback.NewController(fallback.DefaultConfig())
//	ctrl.Initialize(fallback.Request{Src: "/img/photo.jpg", W: 100, H: 50})
//	// 渲染 ctrl.CurrentURL()，加载失败时:
//	ctrl.OnLoadFailureAt(ctrl.RenderKey())
type Controller struct {
	config *Config
	logger *log.Helper

	request    Request
	candidates []string
	index      int
	currentURL string
	renderKey  uint64
	failures   map[string]bool
	exhausted  bool
}

// NewController 创建回退控制器
//
// 参数:
//   - config: 控制器配置，nil 时使用 DefaultConfig()
func NewController(config *Config) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		config = DefaultConfig()
	}

	base := config.Logger
	if base == nil {
		base = log.GetLogger()
	}
	logger := log.NewHelper(log.With(base, "module", "image-fallback"))

	return &Controller{
		config:   config,
		logger:   logger,
		failures: make(map[string]bool),
	}
}

// Initialize 初始化或重建候选列表
//
// 候选顺序: 主尺寸URL -> 各 Sizes 变体URL（按输入顺序）-> 换扩展名的无尺寸URL，
// 精确字符串去重并保留首次出现的位置。游标重置到 0 并递增渲染代次。
//
// 必须在创建后立即调用一次，之后 Src/Ext/W/H 任一变化时同步重调；
// 重建不清空失败缓存
//
// 参数:
//   - req: 图片渲染请求
func (c *Controller) Initialize(req Request) {
	// 1. 默认值归一化
	if req.Ext == "" {
		req.Ext = c.config.DefaultExt
	}
	if req.Loading == "" {
		req.Loading = c.config.DefaultLoading
	}
	c.request = req

	// 2. 构建候选列表
	c.candidates = buildCandidates(req)

	// 3. 重置游标
	c.index = 0
	c.exhausted = false
	c.currentURL = ""
	if len(c.candidates) > 0 {
		c.currentURL = c.candidates[0]
	}
	c.renderKey++
}

// buildCandidates 按请求构建有序去重的候选URL列表
func buildCandidates(req Request) []string {
	if req.Src == "" {
		return nil
	}

	raw := make([]string, 0, len(req.Sizes)+2)

	// 主候选: 换扩展名并按目标尺寸缩放
	raw = append(raw, urlbuilder.BuildResizedURL(req.Src, req.W, req.H, req.Ext, 0))

	// 各尺寸变体，缺省字段回退到请求级的值
	for _, v := range req.Sizes {
		w, h, ext := v.W, v.H, v.Ext
		if w == 0 {
			w = req.W
		}
		if h == 0 {
			h = req.H
		}
		if ext == "" {
			ext = req.Ext
		}
		raw = append(raw, urlbuilder.BuildResizedURL(req.Src, w, h, ext, 0))
	}

	// 最终回退: 换扩展名但不加尺寸标记
	raw = append(raw, urlbuilder.BuildResizedURL(req.Src, 0, 0, req.Ext, 0))

	// 去重，保留首次出现
	seen := make(map[string]struct{}, len(raw))
	candidates := make([]string, 0, len(raw))
	for _, u := range raw {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		candidates = append(candidates, u)
	}
	return candidates
}

// OnLoadFailure 处理当前候选URL的加载失败
//
// 记录失败缓存并推进游标，跳过所有已知失败的候选；
// 找到可尝试的候选时更新 CurrentURL 并递增渲染代次，
// 耗尽时进入终态（CurrentURL 保持末次值），仅发出一次错误信号，
// 终态下的后续调用为空操作
func (c *Controller) OnLoadFailure() {
	if c.exhausted || len(c.candidates) == 0 {
		return
	}

	// 1. 记录当前候选失败
	c.failures[c.currentURL] = false
	c.logger.Warnf("候选图片加载失败: url=%s", c.currentURL)
	if c.config.Events != nil {
		c.config.Events.OnCandidateFailed(c.currentURL)
	}

	// 2. 向后寻找第一个未知失败的候选
	// 已知失败的候选直接跳过，不为其发出尝试信号
	next := c.index + 1
	for next < len(c.candidates) {
		if known, ok := c.failures[c.candidates[next]]; ok && !known {
			next++
			continue
		}
		break
	}
	c.index = next

	// 3. 耗尽: 进入终态，CurrentURL 与渲染代次保持不变
	if next >= len(c.candidates) {
		c.exhausted = true
		c.logger.Errorf("全部候选图片加载失败: candidates=%v", c.candidates)
		if c.config.Events != nil {
			c.config.Events.OnExhausted(c.Candidates())
		}
		return
	}

	// 4. 推进到下一个候选
	c.currentURL = c.candidates[next]
	c.renderKey++
	c.logger.Infof("尝试下一个候选图片: url=%s", c.currentURL)
	if c.config.Events != nil {
		c.config.Events.OnTrying(c.currentURL)
	}
}

// OnLoadFailureAt 带代次保护的失败处理
//
// 仅当 renderKey 与当前渲染代次一致时才生效，
// 用于过滤被 Initialize 或此前推进所取代的在途加载回调
//
// 参数:
//   - renderKey: 宿主发起该次加载时读取到的渲染代次
func (c *Controller) OnLoadFailureAt(renderKey uint64) {
	if renderKey != c.renderKey {
		return
	}
	c.OnLoadFailure()
}

// CurrentURL 返回当前应渲染的URL
func (c *Controller) CurrentURL() string {
	return c.currentURL
}

// RenderKey 返回当前渲染代次
func (c *Controller) RenderKey() uint64 {
	return c.renderKey
}

// Exhausted 返回是否已耗尽全部候选
func (c *Controller) Exhausted() bool {
	return c.exhausted
}

// Candidates 返回候选URL列表的副本
func (c *Controller) Candidates() []string {
	out := make([]string, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// View 返回暴露给渲染层的完整状态
func (c *Controller) View() RenderState {
	return RenderState{
		URL:       c.currentURL,
		RenderKey: c.renderKey,
		Alt:       c.request.Alt,
		W:         c.request.W,
		H:         c.request.H,
		Loading:   c.request.Loading,
	}
}
