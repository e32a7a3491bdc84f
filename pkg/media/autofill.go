package media

import (
	"context"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/heyinLab/imagekit/pkg/image"
	"github.com/heyinLab/imagekit/pkg/urlbuilder"
)

// dataSrcRegex 匹配任意标签的 data-src="xxx" 属性中的源路径
// 支持 <img>, <video>, <audio> 等任意标签
var dataSrcRegex = regexp.MustCompile(`data-src=["']([^"']+)["']`)

// ==================== 类型缓存 ====================

// typeInfo 缓存的类型信息
type typeInfo struct {
	fields []fieldInfo
}

// fieldInfo 字段信息
type fieldInfo struct {
	srcIndex  int    // 源字段索引（用于普通字段映射）
	dstIndex  int    // 目标字段索引
	name      string // 字段名
	fieldType fieldType
	pathIndex int // 源路径字段索引（用于URL/URLs/SrcSet类型，从对应的路径字段获取值）
	// 嵌套类型信息（slice/struct/map）
	elemInfo *typeInfo
	srcElem  reflect.Type
	dstElem  reflect.Type
	keyType  reflect.Type // map的key类型
}

// fieldType 字段类型
type fieldType int

const (
	fieldTypeBasic    fieldType = iota // 基本类型，直接复制
	fieldTypeURL                       // URL 类型（双字段模式）
	fieldTypeURLs                      // URLs 类型（双字段模式）
	fieldTypeSrcSet                    // SrcSet 类型（双字段模式）
	fieldTypeRichText                  // RichText 类型
	fieldTypeSlice                     // 切片类型，需要递归
	fieldTypeStruct                    // 结构体类型，需要递归
	fieldTypeMap                       // Map类型，需要递归（如多语言 map[string]*Lang）
)

// typeCache 类型信息缓存
var typeCache sync.Map // map[typePair]*typeInfo

// typePair 类型对
type typePair struct {
	src reflect.Type
	dst reflect.Type
}

// ==================== AutoFill 入口 ====================

// AutoFill 自动映射并填充投递URL
//
// 将源切片自动映射到目标切片，并填充所有投递URL
//
// 支持的字段类型:
//   - URL: 单图投递URL（双字段模式），CoverURL 从 Cover 获取源路径
//   - URLs: 多图投递URL（双字段模式），GalleryURL 从 Gallery 获取源路径列表
//   - SrcSet: srcset 字符串（双字段模式），CoverSrcSet 从 Cover 获取源路径
//   - RichText: 富文本，data-src="source_path" → src="url"
//
// 参数:
//   - ctx: 上下文
//   - filler: 媒体字段填充器
//   - src: 源数据切片（如 []*ent.Article）
//   - dst: 目标切片指针（如 *[]*ArticleResponse）
//
// 示例:
//
//	var responses []*ArticleResponse
//	media.AutoFill(ctx, filler, articles, &responses)
func AutoFill[S, D any](ctx context.Context, filler *Filler, src []S, dst *[]D) error {
	if len(src) == 0 || dst == nil {
		return nil
	}

	// 1. 创建目标切片
	result := make([]D, len(src))

	// 2. 获取类型信息
	srcType := reflect.TypeOf(src).Elem()
	dstType := reflect.TypeOf(result).Elem()
	info := getTypeInfo(srcType, dstType)

	// 3. 收集所有源路径
	collector := &srcCollector{srcs: make(map[string]struct{})}

	// 4. 映射并收集源路径
	// 如果目标是指针类型，需要先创建实例
	dstIsPtr := dstType.Kind() == reflect.Ptr
	for i := range src {
		srcVal := reflect.ValueOf(&src[i]).Elem()
		if dstIsPtr {
			// 创建新实例并设置到result
			newElem := reflect.New(dstType.Elem())
			reflect.ValueOf(&result[i]).Elem().Set(newElem)
			mapAndCollect(srcVal, newElem.Elem(), info, collector)
		} else {
			dstVal := reflect.ValueOf(&result[i]).Elem()
			mapAndCollect(srcVal, dstVal, info, collector)
		}
	}

	// 5. 批量解析投递信息
	if len(collector.srcs) > 0 {
		srcs := make([]string, 0, len(collector.srcs))
		for s := range collector.srcs {
			srcs = append(srcs, s)
		}

		sources, err := filler.filler.Resolve(ctx, srcs)
		if err != nil {
			return err
		}

		// 6. 填充URL
		for i := range result {
			dstVal := reflect.ValueOf(&result[i]).Elem()
			fillURLs(dstVal, info, sources, filler.variants)
		}
	}

	*dst = result
	return nil
}

// AutoFillOne 自动映射并填充单个对象
//
// 参数:
//   - ctx: 上下文
//   - filler: 媒体字段填充器
//   - src: 源对象指针
//   - dst: 目标对象指针
//
// 示例:
//
//	var response ArticleResponse
//	media.AutoFillOne(ctx, filler, article, &response)
func AutoFillOne[S, D any](ctx context.Context, filler *Filler, src *S, dst *D) error {
	if src == nil || dst == nil {
		return nil
	}

	srcSlice := []S{*src}
	var dstSlice []D

	if err := AutoFill(ctx, filler, srcSlice, &dstSlice); err != nil {
		return err
	}

	if len(dstSlice) > 0 {
		*dst = dstSlice[0]
	}
	return nil
}

// ==================== 内部实现 ====================

// srcCollector 源路径收集器
type srcCollector struct {
	srcs map[string]struct{}
}

func (c *srcCollector) add(src string) {
	if src != "" {
		c.srcs[src] = struct{}{}
	}
}

func (c *srcCollector) addAll(srcs []string) {
	for _, src := range srcs {
		c.add(src)
	}
}

// getTypeInfo 获取类型信息（带缓存）
func getTypeInfo(srcType, dstType reflect.Type) *typeInfo {
	// 解引用指针
	srcType = deref(srcType)
	dstType = deref(dstType)

	pair := typePair{src: srcType, dst: dstType}
	if cached, ok := typeCache.Load(pair); ok {
		return cached.(*typeInfo)
	}

	info := buildTypeInfo(srcType, dstType)
	typeCache.Store(pair, info)
	return info
}

// deref 解引用指针类型
func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// pathFieldName 解析双字段模式的源字段名
//
// 优先取 `media:"Cover"` tag，没有 tag 时尝试去掉字段名的类型后缀
func pathFieldName(f reflect.StructField, suffix string) string {
	if name := f.Tag.Get("media"); name != "" {
		return name
	}
	return strings.TrimSuffix(f.Name, suffix)
}

// buildTypeInfo 构建类型信息
func buildTypeInfo(srcType, dstType reflect.Type) *typeInfo {
	if srcType.Kind() != reflect.Struct || dstType.Kind() != reflect.Struct {
		return &typeInfo{}
	}

	// 构建源字段索引映射
	srcFields := make(map[string]int)
	for i := 0; i < srcType.NumField(); i++ {
		f := srcType.Field(i)
		if f.IsExported() {
			srcFields[f.Name] = i
		}
	}

	var fields []fieldInfo
	for i := 0; i < dstType.NumField(); i++ {
		dstField := dstType.Field(i)
		if !dstField.IsExported() {
			continue
		}

		dstFieldType := dstField.Type

		// 检查是否为 URL 类型（双字段模式）
		if dstFieldType == reflect.TypeOf(URL("")) {
			if pathIdx, ok := srcFields[pathFieldName(dstField, "URL")]; ok {
				fields = append(fields, fieldInfo{
					srcIndex:  -1, // 不直接从同名字段复制
					dstIndex:  i,
					name:      dstField.Name,
					fieldType: fieldTypeURL,
					pathIndex: pathIdx,
				})
			}
			continue
		}

		// 检查是否为 URLs 类型（双字段模式）
		if dstFieldType == reflect.TypeOf(URLs{}) {
			if pathIdx, ok := srcFields[pathFieldName(dstField, "URL")]; ok {
				fields = append(fields, fieldInfo{
					srcIndex:  -1,
					dstIndex:  i,
					name:      dstField.Name,
					fieldType: fieldTypeURLs,
					pathIndex: pathIdx,
				})
			}
			continue
		}

		// 检查是否为 SrcSet 类型（双字段模式）
		if dstFieldType == reflect.TypeOf(SrcSet("")) {
			if pathIdx, ok := srcFields[pathFieldName(dstField, "SrcSet")]; ok {
				fields = append(fields, fieldInfo{
					srcIndex:  -1,
					dstIndex:  i,
					name:      dstField.Name,
					fieldType: fieldTypeSrcSet,
					pathIndex: pathIdx,
				})
			}
			continue
		}

		// 其他类型需要同名字段
		srcIdx, ok := srcFields[dstField.Name]
		if !ok {
			continue
		}

		srcField := srcType.Field(srcIdx)
		fi := fieldInfo{
			srcIndex: srcIdx,
			dstIndex: i,
			name:     dstField.Name,
		}

		// 判断字段类型
		switch {
		case dstFieldType == reflect.TypeOf(SrcPath("")):
			// SrcPath 类型直接复制（路径保持不变）
			fi.fieldType = fieldTypeBasic
		case dstFieldType == reflect.TypeOf(SrcPaths{}):
			// SrcPaths 类型直接复制（路径列表保持不变）
			fi.fieldType = fieldTypeBasic
		case dstFieldType == reflect.TypeOf(RichText("")):
			fi.fieldType = fieldTypeRichText
		case dstFieldType.Kind() == reflect.Slice:
			fi.srcElem = srcField.Type.Elem()
			fi.dstElem = dstFieldType.Elem()
			// 基础类型切片（如 []string）直接复制
			if isBasicType(fi.dstElem) {
				fi.fieldType = fieldTypeBasic
			} else {
				fi.fieldType = fieldTypeSlice
				fi.elemInfo = getTypeInfo(fi.srcElem, fi.dstElem)
			}
		case dstFieldType.Kind() == reflect.Map:
			fi.fieldType = fieldTypeMap
			fi.keyType = dstFieldType.Key()
			fi.srcElem = srcField.Type.Elem()
			fi.dstElem = dstFieldType.Elem()
			fi.elemInfo = getTypeInfo(fi.srcElem, fi.dstElem)
		case deref(dstFieldType).Kind() == reflect.Struct && !isBasicType(dstFieldType):
			fi.fieldType = fieldTypeStruct
			fi.srcElem = srcField.Type
			fi.dstElem = dstFieldType
			fi.elemInfo = getTypeInfo(fi.srcElem, fi.dstElem)
		default:
			fi.fieldType = fieldTypeBasic
		}

		fields = append(fields, fi)
	}

	return &typeInfo{fields: fields}
}

// isBasicType 判断是否为基础类型（不需要递归）
func isBasicType(t reflect.Type) bool {
	t = deref(t)
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	// time.Time 等也视为基础类型
	if t.PkgPath() == "time" && t.Name() == "Time" {
		return true
	}
	return false
}

// mapAndCollect 映射字段并收集源路径
func mapAndCollect(srcVal, dstVal reflect.Value, info *typeInfo, collector *srcCollector) {
	// 解引用指针
	srcVal = derefValue(srcVal)
	dstVal = derefValue(dstVal)

	if !srcVal.IsValid() || !dstVal.IsValid() {
		return
	}

	for _, fi := range info.fields {
		dstField := dstVal.Field(fi.dstIndex)

		switch fi.fieldType {
		case fieldTypeBasic:
			srcField := srcVal.Field(fi.srcIndex)
			if srcField.Type().AssignableTo(dstField.Type()) {
				dstField.Set(srcField)
			} else if srcField.Type().ConvertibleTo(dstField.Type()) {
				dstField.Set(srcField.Convert(dstField.Type()))
			}

		case fieldTypeURL, fieldTypeSrcSet:
			// 从对应的源路径字段获取值
			pathField := srcVal.Field(fi.pathIndex)
			src := getStringValue(pathField)
			// 先存储路径，后面fillURLs会替换成URL/srcset
			dstField.SetString(src)
			collector.add(src)

		case fieldTypeURLs:
			// 从对应的源路径列表字段获取值
			pathsField := srcVal.Field(fi.pathIndex)
			srcs := getStringSliceValue(pathsField)
			if len(srcs) > 0 {
				slice := reflect.MakeSlice(dstField.Type(), len(srcs), len(srcs))
				for i, src := range srcs {
					slice.Index(i).SetString(src)
				}
				dstField.Set(slice)
				collector.addAll(srcs)
			}

		case fieldTypeRichText:
			srcField := srcVal.Field(fi.srcIndex)
			// 复制值并提取源路径
			text := getStringValue(srcField)
			dstField.SetString(text)
			matches := dataSrcRegex.FindAllStringSubmatch(text, -1)
			for _, m := range matches {
				if len(m) > 1 {
					collector.add(m[1])
				}
			}

		case fieldTypeSlice:
			srcField := srcVal.Field(fi.srcIndex)
			mapSliceAndCollect(srcField, dstField, fi, collector)

		case fieldTypeMap:
			srcField := srcVal.Field(fi.srcIndex)
			mapMapAndCollect(srcField, dstField, fi, collector)

		case fieldTypeStruct:
			srcField := srcVal.Field(fi.srcIndex)
			mapStructAndCollect(srcField, dstField, fi, collector)
		}
	}
}

// mapSliceAndCollect 映射切片并收集源路径
func mapSliceAndCollect(srcField, dstField reflect.Value, fi fieldInfo, collector *srcCollector) {
	srcField = derefValue(srcField)
	if !srcField.IsValid() || srcField.IsNil() || srcField.Len() == 0 {
		return
	}

	length := srcField.Len()
	slice := reflect.MakeSlice(dstField.Type(), length, length)

	for i := 0; i < length; i++ {
		srcElem := srcField.Index(i)
		dstElem := slice.Index(i)

		// 如果目标是指针类型，需要创建新实例
		if fi.dstElem.Kind() == reflect.Ptr {
			newElem := reflect.New(fi.dstElem.Elem())
			dstElem.Set(newElem)
			mapAndCollect(srcElem, newElem.Elem(), fi.elemInfo, collector)
		} else {
			mapAndCollect(srcElem, dstElem, fi.elemInfo, collector)
		}
	}

	dstField.Set(slice)
}

// mapStructAndCollect 映射结构体并收集源路径
func mapStructAndCollect(srcField, dstField reflect.Value, fi fieldInfo, collector *srcCollector) {
	srcField = derefValue(srcField)
	if !srcField.IsValid() {
		return
	}

	// 如果目标是指针类型，需要创建新实例
	if fi.dstElem.Kind() == reflect.Ptr {
		newElem := reflect.New(fi.dstElem.Elem())
		dstField.Set(newElem)
		mapAndCollect(srcField, newElem.Elem(), fi.elemInfo, collector)
	} else {
		mapAndCollect(srcField, dstField, fi.elemInfo, collector)
	}
}

// mapMapAndCollect 映射map并收集源路径（如多语言 map[string]*Lang）
func mapMapAndCollect(srcField, dstField reflect.Value, fi fieldInfo, collector *srcCollector) {
	srcField = derefValue(srcField)
	if !srcField.IsValid() || srcField.IsNil() || srcField.Len() == 0 {
		return
	}

	// 创建目标map
	dstMap := reflect.MakeMap(dstField.Type())

	// 检查源是否为 map[string]interface{} 类型
	srcElemKind := deref(fi.srcElem).Kind()
	isInterfaceSrc := srcElemKind == reflect.Interface

	for _, key := range srcField.MapKeys() {
		srcElem := srcField.MapIndex(key)

		// 如果目标value是指针类型，需要创建新实例
		if fi.dstElem.Kind() == reflect.Ptr {
			newElem := reflect.New(fi.dstElem.Elem())
			if isInterfaceSrc {
				// 源是 interface{} 类型，特殊处理
				mapInterfaceToStruct(srcElem, newElem.Elem(), collector)
			} else {
				mapAndCollect(srcElem, newElem.Elem(), fi.elemInfo, collector)
			}
			dstMap.SetMapIndex(key, newElem)
		} else {
			newElem := reflect.New(fi.dstElem).Elem()
			if isInterfaceSrc {
				mapInterfaceToStruct(srcElem, newElem, collector)
			} else {
				mapAndCollect(srcElem, newElem, fi.elemInfo, collector)
			}
			dstMap.SetMapIndex(key, newElem)
		}
	}

	dstField.Set(dstMap)
}

func mapInterfaceToStruct(srcVal, dstVal reflect.Value, collector *srcCollector) {
	srcVal = derefValue(srcVal)
	dstVal = derefValue(dstVal)

	if !srcVal.IsValid() || !dstVal.IsValid() {
		return
	}

	if srcVal.Kind() != reflect.Map {
		return
	}

	dstType := dstVal.Type()
	if dstType.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < dstType.NumField(); i++ {
		dstField := dstType.Field(i)
		if !dstField.IsExported() {
			continue
		}

		jsonTag := dstField.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			jsonTag = dstField.Name
		} else if idx := strings.Index(jsonTag, ","); idx != -1 {
			jsonTag = jsonTag[:idx]
		}

		srcMapVal := srcVal.MapIndex(reflect.ValueOf(jsonTag))
		if !srcMapVal.IsValid() {
			continue
		}

		actualVal := derefValue(srcMapVal)
		if !actualVal.IsValid() {
			continue
		}

		dstFieldVal := dstVal.Field(i)
		dstFieldType := dstField.Type

		switch {
		case dstFieldType == reflect.TypeOf(RichText("")):
			if actualVal.Kind() == reflect.String {
				text := actualVal.String()
				dstFieldVal.SetString(text)
				matches := dataSrcRegex.FindAllStringSubmatch(text, -1)
				for _, m := range matches {
					if len(m) > 1 {
						collector.add(m[1])
					}
				}
			}
		case dstFieldType == reflect.TypeOf(SrcPath("")):
			if actualVal.Kind() == reflect.String {
				dstFieldVal.SetString(actualVal.String())
				collector.add(actualVal.String())
			}
		case dstFieldType.Kind() == reflect.String:
			if actualVal.Kind() == reflect.String {
				dstFieldVal.SetString(actualVal.String())
			}
		case dstFieldType.Kind() == reflect.Int, dstFieldType.Kind() == reflect.Int64:
			switch actualVal.Kind() {
			case reflect.Float64:
				dstFieldVal.SetInt(int64(actualVal.Float()))
			case reflect.Int, reflect.Int64:
				dstFieldVal.SetInt(actualVal.Int())
			}
		case dstFieldType.Kind() == reflect.Float64:
			if actualVal.Kind() == reflect.Float64 {
				dstFieldVal.SetFloat(actualVal.Float())
			}
		case dstFieldType.Kind() == reflect.Bool:
			if actualVal.Kind() == reflect.Bool {
				dstFieldVal.SetBool(actualVal.Bool())
			}
		}
	}
}

// fillURLs 填充投递URL
func fillURLs(dstVal reflect.Value, info *typeInfo, sources map[string]*image.SourceInfo, variants []urlbuilder.SizeVariant) {
	dstVal = derefValue(dstVal)
	if !dstVal.IsValid() {
		return
	}

	for _, fi := range info.fields {
		dstField := dstVal.Field(fi.dstIndex)

		switch fi.fieldType {
		case fieldTypeURL:
			src := dstField.String()
			if res, ok := sources[src]; ok && res.Success {
				dstField.SetString(res.URL)
			}

		case fieldTypeSrcSet:
			src := dstField.String()
			if res, ok := sources[src]; ok && res.Success {
				dstField.SetString(urlbuilder.BuildSourceSet(res.URL, variants))
			}

		case fieldTypeURLs:
			if dstField.Len() > 0 {
				for i := 0; i < dstField.Len(); i++ {
					src := dstField.Index(i).String()
					if res, ok := sources[src]; ok && res.Success {
						dstField.Index(i).SetString(res.URL)
					}
				}
			}

		case fieldTypeRichText:
			text := dstField.String()
			newText := dataSrcRegex.ReplaceAllStringFunc(text, func(match string) string {
				m := dataSrcRegex.FindStringSubmatch(match)
				if len(m) > 1 {
					if res, ok := sources[m[1]]; ok && res.Success {
						// 将 data-src="source_path" 替换为 src="url"
						return `src="` + res.URL + `"`
					}
				}
				return match
			})
			dstField.SetString(newText)

		case fieldTypeSlice:
			fillSliceURLs(dstField, fi, sources, variants)

		case fieldTypeMap:
			fillMapURLs(dstField, fi, sources, variants)

		case fieldTypeStruct:
			fillStructURLs(dstField, fi, sources, variants)
		}
	}
}

// fillSliceURLs 填充切片中的URL
func fillSliceURLs(dstField reflect.Value, fi fieldInfo, sources map[string]*image.SourceInfo, variants []urlbuilder.SizeVariant) {
	dstField = derefValue(dstField)
	if !dstField.IsValid() || dstField.IsNil() {
		return
	}

	for i := 0; i < dstField.Len(); i++ {
		elem := dstField.Index(i)
		fillURLs(elem, fi.elemInfo, sources, variants)
	}
}

// fillStructURLs 填充结构体中的URL
func fillStructURLs(dstField reflect.Value, fi fieldInfo, sources map[string]*image.SourceInfo, variants []urlbuilder.SizeVariant) {
	dstField = derefValue(dstField)
	if !dstField.IsValid() {
		return
	}
	fillURLs(dstField, fi.elemInfo, sources, variants)
}

// fillMapURLs 填充map中的URL
func fillMapURLs(dstField reflect.Value, fi fieldInfo, sources map[string]*image.SourceInfo, variants []urlbuilder.SizeVariant) {
	dstField = derefValue(dstField)
	if !dstField.IsValid() || dstField.IsNil() {
		return
	}

	// 检查源是否为 interface{} 类型
	srcElemKind := deref(fi.srcElem).Kind()
	isInterfaceSrc := srcElemKind == reflect.Interface

	for _, key := range dstField.MapKeys() {
		elem := dstField.MapIndex(key)
		if elem.Kind() == reflect.Ptr && !elem.IsNil() {
			if isInterfaceSrc {
				fillInterfaceStructURLs(elem.Elem(), sources)
			} else {
				fillURLs(elem.Elem(), fi.elemInfo, sources, variants)
			}
		}
	}
}

// fillInterfaceStructURLs 填充从 interface{} 转换来的结构体中的URL
func fillInterfaceStructURLs(dstVal reflect.Value, sources map[string]*image.SourceInfo) {
	dstVal = derefValue(dstVal)
	if !dstVal.IsValid() || dstVal.Kind() != reflect.Struct {
		return
	}

	dstType := dstVal.Type()
	for i := 0; i < dstType.NumField(); i++ {
		dstField := dstType.Field(i)
		if !dstField.IsExported() {
			continue
		}

		fieldVal := dstVal.Field(i)
		fieldType := dstField.Type

		switch {
		case fieldType == reflect.TypeOf(RichText("")):
			text := fieldVal.String()
			newText := dataSrcRegex.ReplaceAllStringFunc(text, func(match string) string {
				m := dataSrcRegex.FindStringSubmatch(match)
				if len(m) > 1 {
					if res, ok := sources[m[1]]; ok && res.Success {
						return `src="` + res.URL + `"`
					}
				}
				return match
			})
			fieldVal.SetString(newText)
		}
	}
}

// derefValue 解引用Value
func derefValue(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// getStringValue 获取字符串值
func getStringValue(v reflect.Value) string {
	v = derefValue(v)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return ""
}

// getStringSliceValue 获取字符串切片值
func getStringSliceValue(v reflect.Value) []string {
	v = derefValue(v)
	if !v.IsValid() || v.Kind() != reflect.Slice {
		return nil
	}

	result := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		result[i] = getStringValue(v.Index(i))
	}
	return result
}
