package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.doc", "d.txt", "e.csv", "f.xlsx"} {
		if !Supported(name) {
			t.Fatalf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.png", "b", "c.exe"} {
		if Supported(name) {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}

func TestText_Plain(t *testing.T) {
	got, err := Text(context.Background(), "cv.txt", []byte("Jane Doe\r\nBackend Engineer   \r\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Jane Doe\nBackend Engineer" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_PlainRejectsBinary(t *testing.T) {
	_, err := Text(context.Background(), "cv.txt", []byte("%PDF-1.7 binary"))
	if !errors.Is(err, ErrBinaryText) {
		t.Fatalf("expected ErrBinaryText, got %v", err)
	}
}

func TestText_CSV(t *testing.T) {
	got, err := Text(context.Background(), "cv.csv", []byte("name,role\nJane Doe,Engineer\n,\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "name role\nJane Doe Engineer" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_XLSX(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "Jane Doe")
	_ = f.SetCellValue("Sheet1", "B1", "Go")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	got, err := Text(context.Background(), "cv.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Jane Doe Go" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestText_Unsupported(t *testing.T) {
	_, err := Text(context.Background(), "photo.png", []byte("x"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDocxXMLToText(t *testing.T) {
	raw := `<w:document><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>R&amp;D Lead</w:t></w:r></w:p></w:body></w:document>`
	got := strings.TrimSpace(docxXMLToText(raw))
	if got != "Jane Doe\nR&D Lead" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestIsBinaryData(t *testing.T) {
	if !IsBinaryData("PK\x03\x04") {
		t.Fatalf("zip magic must be binary")
	}
	if IsBinaryData("hello world") {
		t.Fatalf("plain text must not be binary")
	}
}
