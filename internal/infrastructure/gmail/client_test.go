package gmail

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
)

func TestParseSender(t *testing.T) {
	cases := map[string]string{
		`"Jane Doe" <jane@example.com>`: "Jane Doe",
		`John Smith <john@example.com>`: "John Smith",
		`recruit@example.com`:           "recruit",
		`<anon@example.com>`:            "anon",
		``:                              "",
	}
	for in, want := range cases {
		if got := parseSender(in); got != want {
			t.Fatalf("parseSender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlattenParts(t *testing.T) {
	root := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{Filename: "a.pdf"},
			{Parts: []*gmailapi.MessagePart{{Filename: "b.docx"}}},
		},
	}
	var names []string
	for _, p := range flattenParts(root) {
		if p.Filename != "" {
			names = append(names, p.Filename)
		}
	}
	if len(names) != 2 || names[0] != "a.pdf" || names[1] != "b.docx" {
		t.Fatalf("unexpected parts %v", names)
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour).UTC()}
	if err := saveToken(path, tok); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != "at" || got.RefreshToken != "rt" {
		t.Fatalf("unexpected token %+v", got)
	}
}
