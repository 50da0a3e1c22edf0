package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return b.String()
}

func TrimAndNormalize(s string) string {
	p := Pipeline{
		strings.TrimSpace,
		collapseWhitespace,
	}
	return p.Apply(s)
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeNote(note string) string {
	return TrimAndNormalize(note)
}
