package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeAnswer 统一 Unicode 组合形式、大小写和空白，
// 以便 "Apple " 与 "apple"、NFD 输入的韩文与 NFC 形式判定一致
func NormalizeAnswer(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// Caser 不是并发安全的，每次新建
	return cases.Fold().String(s)
}

// GradeAnswer 标准答案为空时一律判错
func GradeAnswer(expected, given string) bool {
	want := NormalizeAnswer(expected)
	if want == "" {
		return false
	}
	return want == NormalizeAnswer(given)
}
