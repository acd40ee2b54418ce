package hex

import (
	"strings"
	"testing"
)

func TestFormatBytesWithoutSpaces(t *testing.T) {
	var sb strings.Builder
	FormatBytes(&sb, false, []byte{0xde, 0xad, 0x00, 0xff})
	if got, want := sb.String(), "DEAD00FF"; got != want {
		t.Fatalf("FormatBytes = %q, want %q", got, want)
	}
}

func TestFormatBytesWithSpaces(t *testing.T) {
	var sb strings.Builder
	FormatBytes(&sb, true, []byte{0x01, 0x02})
	if got, want := sb.String(), "01 02 "; got != want {
		t.Fatalf("FormatBytes = %q, want %q", got, want)
	}
}

func TestFormatBytesEmpty(t *testing.T) {
	var sb strings.Builder
	FormatBytes(&sb, false, nil)
	if got := sb.String(); got != "" {
		t.Fatalf("FormatBytes(nil) = %q, want empty", got)
	}
}
