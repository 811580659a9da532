package graphics

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func TestCleanInfoLog(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0:12(3): error: syntax error\n\x00\x00", "0:12(3): error: syntax error"},
		{"line one\n  line two\n\x00garbage", "line one line two"},
		{"\x00", "no info log"},
		{"", "no info log"},
	}
	for _, tc := range cases {
		if got := cleanInfoLog([]uint8(tc.in)); got != tc.want {
			t.Errorf("cleanInfoLog(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStageName(t *testing.T) {
	if stageName(gl.VERTEX_SHADER) != "vertex" || stageName(gl.FRAGMENT_SHADER) != "fragment" {
		t.Fatal("known stages misnamed")
	}
	if got := stageName(7); got != "0x7" {
		t.Fatalf("unknown stage = %q", got)
	}
}
