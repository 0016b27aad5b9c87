package chat

import "strings"

// DefaultTitleLength es el largo maximo, en runas, antes de truncar un titulo.
const DefaultTitleLength = 20

const titleEllipsis = "..."

// DeriveTitle arma el titulo visible de un chat a partir de texto libre.
func DeriveTitle(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultTitleLength
	}
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxLength {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:maxLength])) + titleEllipsis
}
