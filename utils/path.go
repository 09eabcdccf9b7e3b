package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// 双重检验保证key路径是正常的
func SafeJoinRel(baseRel, key string) (string, error) {
	// 系统转换
	baseRel = filepath.Clean(filepath.FromSlash(baseRel))
	key = filepath.Clean(filepath.FromSlash(key))

	if filepath.IsAbs(key) { //不接受绝对路径的key
		return "", fmt.Errorf("absolute path not allowed")
	}
	if key == ".." || strings.HasPrefix(key, ".."+string(filepath.Separator)) { //不能存在..
		return "", fmt.Errorf("path traversal detected")
	}
	full := filepath.Join(baseRel, key)
	relBack, err := filepath.Rel(baseRel, full) //full 在 baseRel 之下时返回相对路径
	if err != nil {
		return "", err
	}
	if relBack == ".." || strings.HasPrefix(relBack, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base")
	}
	return full, nil
}

// SanitizeFilename 清洗客户端声明的文件名：
// 去掉路径成分，空格换下划线，只保留字母数字（含中文）和 . _ -
// 清洗到空就给个占位名
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = name[strings.LastIndex(name, "/")+1:] //丢掉一切路径前缀

	var b strings.Builder
	for _, ch := range name {
		switch {
		case unicode.IsLetter(ch) || unicode.IsDigit(ch):
			b.WriteRune(ch)
		case ch == '.' || ch == '_' || ch == '-':
			b.WriteRune(ch)
		case unicode.IsSpace(ch):
			b.WriteRune('_')
		}
	}
	cleaned := b.String()
	cleaned = strings.Trim(cleaned, ".") //防止 "..xxx" 或纯点名
	if cleaned == "" {
		cleaned = "unnamed"
	}
	return cleaned
}
