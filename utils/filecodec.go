package utils

// 文件身份编码：存储名 = 原始名的词干 + "_" + 上传时间戳 + 扩展名
// 列表时从存储名反解出原始名和上传时间，磁盘之外不存任何元数据
import (
	"path/filepath"
	"strings"
	"time"
)

const (
	StampLayout   = "20060102_150405"  // 存储名内嵌的15位时间戳
	DisplayLayout = "2006.01.02 15:04" // 列表展示格式，不带秒
)

// EncodeStoredName 生成带时间戳的存储文件名
// "evidence.jpg" + 2024-03-01 10:15:00 → "evidence_20240301_101500.jpg"
func EncodeStoredName(originalName string, t time.Time) string {
	ext := filepath.Ext(originalName)
	stem := strings.TrimSuffix(originalName, ext)
	return stem + "_" + t.Format(StampLayout) + ext
}

// DecodeStoredName 从存储名恢复原始文件名和展示用的上传时间
// 从右边取最后两段下划线分隔的内容当时间戳，必须正好是8位日期+6位时间，
// 否则认为名字里没有时间戳，ok=false，原始名就是存储名本身。
// 原始名本来就长得像 xxx_12345678_123456.ext 的场合无法区分，按时间戳解。
func DecodeStoredName(stored string) (originalName, displayTime string, ok bool) {
	ext := filepath.Ext(stored)
	stem := strings.TrimSuffix(stored, ext)

	i2 := strings.LastIndex(stem, "_")
	if i2 <= 0 {
		return stored, "", false
	}
	i1 := strings.LastIndex(stem[:i2], "_")
	if i1 < 0 {
		return stored, "", false
	}
	datePart := stem[i1+1 : i2] // YYYYMMDD
	timePart := stem[i2+1:]     // HHMMSS
	if !isDigits(datePart, 8) || !isDigits(timePart, 6) {
		return stored, "", false
	}
	return stem[:i1] + ext, formatDisplay(datePart, timePart), true
}

// 2024.03.01 10:15 这种固定宽度零填充的形式，字符串序就是时间序
func formatDisplay(datePart, timePart string) string {
	return datePart[:4] + "." + datePart[4:6] + "." + datePart[6:8] +
		" " + timePart[:2] + ":" + timePart[2:4]
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
