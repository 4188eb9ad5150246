// ABOUTME: Argument tokenizer for chat commands.
// ABOUTME: Splits on whitespace and groups quoted arguments, including Unicode quote pairs.
package command

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned when a quoted argument is never closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// quotePairs maps each opening quote to the rune that closes it.
var quotePairs = map[rune]rune{
	'"':      '"',
	'\u2018': '\u2019', // ‘ ’
	'\u201a': '\u201b', // ‚ ‛
	'\u201c': '\u201d', // “ ”
	'\u201e': '\u201f', // „ ‟
	'\u2e42': '\u2e42', // ⹂
	'\u300c': '\u300d', // 「 」
	'\u300e': '\u300f', // 『 』
	'\u301d': '\u301e', // 〝 〞
	'\ufe41': '\ufe42', // ﹁ ﹂
	'\ufe43': '\ufe44', // ﹃ ﹄
	'\uff02': '\uff02', // ＂
	'\uff62': '\uff63', // ｢ ｣
	'\u00ab': '\u00bb', // « »
	'\u2039': '\u203a', // ‹ ›
	'\u300a': '\u300b', // 《 》
	'\u3008': '\u3009', // 〈 〉
}

// Tokenize splits a command line into arguments. A quote at the start of an
// argument groups words until its matching closing quote; ASCII double quotes
// and the common typographic and CJK pairs are recognised. Inside a quoted
// argument a backslash escapes the closing quote or another backslash.
func Tokenize(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		closing rune
		inQuote bool
		started bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes) && (runes[i+1] == closing || runes[i+1] == '\\'):
			i++
			current.WriteRune(runes[i])
		case inQuote && r == closing:
			inQuote = false
		case !started && isOpeningQuote(r):
			closing = quotePairs[r]
			inQuote = true
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}

func isOpeningQuote(r rune) bool {
	_, ok := quotePairs[r]
	return ok
}
