package image

// SourceInfo 源图片的投递信息
type SourceInfo struct {
	// URL 规范投递URL
	URL string
	// Renditions 已物化的渲染变体映射
	// key: 变体标识，如 "300x300"、"800x600_webp"
	// value: 变体URL
	Renditions map[string]string
	// Success 是否成功解析
	Success bool
	// Error 错误信息（Success=false时）
	Error string
}

// GetRendition 获取指定渲染变体的URL
// 如果变体不存在，返回规范投递URL
func (s *SourceInfo) GetRendition(name string) string {
	if s.Renditions != nil {
		if url, ok := s.Renditions[name]; ok {
			return url
		}
	}
	return s.URL
}
