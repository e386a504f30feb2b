package textutil_test

import (
	"testing"

	"github.com/keithbphillips/PinballUX/internal/textutil"
)

func TestSimilarityRatio(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{name: "identical", a: "Medieval Madness", b: "Medieval Madness", min: 1, max: 1},
		{name: "case insensitive", a: "XENON", b: "xenon", min: 1, max: 1},
		{name: "whitespace collapsed", a: "Banzai  Run", b: "Banzai Run", min: 1, max: 1},
		{name: "missing space", a: "Banzai Run", b: "BanzaiRun", min: 0.90, max: 0.96},
		{name: "parenthetical suffix", a: "Medieval Madness (VPX 2021)", b: "Medieval Madness", min: 0.70, max: 0.80},
		{name: "unrelated", a: "Xenon", b: "Firepower", min: 0, max: 0.35},
		{name: "empty side", a: "", b: "Xenon", min: 0, max: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := textutil.SimilarityRatio(tc.a, tc.b)
			if got < tc.min || got > tc.max {
				t.Fatalf("SimilarityRatio(%q, %q) = %.3f, want within [%.2f, %.2f]", tc.a, tc.b, got, tc.min, tc.max)
			}
			again := textutil.SimilarityRatio(tc.a, tc.b)
			if got != again {
				t.Fatalf("SimilarityRatio not deterministic: %.6f then %.6f", got, again)
			}
		})
	}
}

func TestSimilarityRatioSymmetry(t *testing.T) {
	ab := textutil.SimilarityRatio("Attack From Mars", "Attack From Mars LE")
	ba := textutil.SimilarityRatio("Attack From Mars LE", "Attack From Mars")
	if ab != ba {
		t.Fatalf("expected symmetric ratio, got %.6f and %.6f", ab, ba)
	}
}

func TestTrimAliasSuffix(t *testing.T) {
	cases := []struct {
		stem  string
		alias string
		want  string
	}{
		{stem: "BanzaiRun_DMD", alias: "dmd", want: "BanzaiRun"},
		{stem: "Banzai Run - fulldmd", alias: "fulldmd", want: "Banzai Run"},
		{stem: "Xenon", alias: "dmd", want: "Xenon"},
		{stem: "dmd", alias: "dmd", want: "dmd"},
		{stem: "CamelDMD", alias: "dmd", want: "CamelDMD"},
	}
	for _, tc := range cases {
		if got := textutil.TrimAliasSuffix(tc.stem, tc.alias); got != tc.want {
			t.Fatalf("TrimAliasSuffix(%q, %q) = %q, want %q", tc.stem, tc.alias, got, tc.want)
		}
	}
}

func TestStem(t *testing.T) {
	if got := textutil.Stem("Xenon.f4v"); got != "Xenon" {
		t.Fatalf("Stem = %q, want Xenon", got)
	}
	if got := textutil.Stem(".hidden"); got != ".hidden" {
		t.Fatalf("Stem of dotfile = %q, want unchanged", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName("AC/DC: Back in Black*"); got != "AC-DC- Back in Black-" {
		t.Fatalf("SanitizeFileName = %q", got)
	}
	if got := textutil.SanitizeFileName("  Whirlwind  "); got != "Whirlwind" {
		t.Fatalf("SanitizeFileName trim = %q", got)
	}
}
