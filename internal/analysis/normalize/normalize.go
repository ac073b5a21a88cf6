package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Key 将用户输入转换为查表使用的规范键：大小写折叠、去除重音符号、移除控制字符。
// 不会修剪或合并空白，首尾空白由调用方在输入边界处理。
func Key(raw string) string {
	if raw == "" {
		return ""
	}

	// Casers are stateful, build them per call. Lowering first keeps scripts
	// whose fold maps lowercase back to uppercase (Cherokee) stable.
	lowered := cases.Lower(language.Und).String(raw)
	folded := cases.Fold().String(lowered)

	stripped := strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, norm.NFD.String(folded))

	return norm.NFC.String(stripped)
}

// isStripped reports runes that never belong in a key: combining marks left
// over from decomposition and control codes such as backspace (U+0008).
func isStripped(r rune) bool {
	if unicode.Is(unicode.Mn, r) {
		return true
	}
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}
