package codec

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizeStatic validates and formats an identifier code.
// 接受 1-6 位数字（可夹杂任意分隔符），4 位以上补横线：
// "123456" -> "123-456"，"12345" -> "12-345"，"1234" -> "1-234"。
// Returns false when the input does not contain 1 to 6 digits.
func NormalizeStatic(input string) (string, bool) {
	digits := nonDigit.ReplaceAllString(strings.TrimSpace(input), "")
	if len(digits) < 1 || len(digits) > 6 {
		return "", false
	}
	if len(digits) <= 3 {
		return digits, true
	}
	cut := len(digits) - 3
	return digits[:cut] + "-" + digits[cut:], true
}

// StaticDigits strips separators from a formatted identifier code.
func StaticDigits(static string) string {
	return nonDigit.ReplaceAllString(static, "")
}
