package textutil

import "strings"

// NormalizeName lowercases a name and collapses runs of whitespace to single
// spaces. Punctuation is deliberately kept: parenthetical suffixes such as
// "(VPX 2021)" must stay visible to similarity scoring so they cost partial
// credit instead of being silently removed.
func NormalizeName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	return strings.Join(strings.Fields(value), " ")
}

// Stem returns the file name without its final extension. Directory
// components are not removed; pass a bare name.
func Stem(fileName string) string {
	if idx := strings.LastIndexByte(fileName, '.'); idx > 0 {
		return fileName[:idx]
	}
	return fileName
}

// TrimAliasSuffix removes a trailing alias token (e.g. "dmd" from
// "BanzaiRun_DMD") when it is joined to the stem by a space, underscore, or
// hyphen. Comparison is case-insensitive. The original string is returned
// unchanged when no such suffix exists.
func TrimAliasSuffix(stem, alias string) string {
	alias = strings.TrimSpace(alias)
	if alias == "" || len(stem) <= len(alias) {
		return stem
	}
	lowered := strings.ToLower(stem)
	if !strings.HasSuffix(lowered, strings.ToLower(alias)) {
		return stem
	}
	cut := len(stem) - len(alias)
	switch stem[cut-1] {
	case ' ', '_', '-':
		return strings.TrimRight(stem[:cut-1], " _-")
	}
	return stem
}
