package pdf

import (
	"bytes"
	"testing"
)

func TestCompress_TruncatesAfterTrailer(t *testing.T) {
	data := []byte("%PDF-1.4\ncontent\n%%EOF\ntrailing garbage")
	out, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatalf("expected output ending at trailer, got %q", out)
	}
}

func TestCompress_RejectsNonPDF(t *testing.T) {
	if _, err := Compress([]byte("<html>not a pdf</html>")); err == nil {
		t.Fatal("expected header error")
	}
	if _, err := Compress([]byte("%PDF-1.4\nno trailer")); err == nil {
		t.Fatal("expected trailer error")
	}
}
