package utils

import (
	"fmt"
)

// Get_size 人类可读的文件大小，日志里用
func Get_size(data int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case data < KB:
		return fmt.Sprintf("%dB", data)
	case data < MB:
		return fmt.Sprintf("%.2fKB", float64(data)/KB)
	case data < GB:
		return fmt.Sprintf("%.2fMB", float64(data)/MB)
	default:
		return fmt.Sprintf("%.2fGB", float64(data)/GB)
	}
}
