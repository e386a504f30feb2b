// Package textutil provides the text primitives shared by matching and media
// naming: name normalization, a longest-common-subsequence similarity ratio,
// stem and alias-suffix handling, and filename sanitization.
//
// Normalization lowercases and collapses whitespace but never strips
// punctuation or parenthetical suffixes; similarity scoring is expected to
// absorb those through partial credit.
package textutil
