package pretoken

import "unicode"

func isLetter(r rune) bool     { return unicode.IsLetter(r) }
func isNumber(r rune) bool     { return unicode.IsNumber(r) }
func isWhitespace(r rune) bool { return unicode.IsSpace(r) }
func foldLower(r rune) rune    { return unicode.ToLower(r) }
