package fallback

// Events 回退过程事件回调接口
//
// 所有方法都在调用 Initialize / OnLoadFailure 的线程上同步执行，
// 实现方不应阻塞
type Events interface {
	// OnTrying 切换到下一个候选URL时触发
	OnTrying(url string)

	// OnCandidateFailed 某个候选URL加载失败时触发
	OnCandidateFailed(url string)

	// OnExhausted 全部候选URL耗尽时触发，携带完整候选列表
	OnExhausted(candidates []string)
}
