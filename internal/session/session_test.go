package session

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestContentHashHex(t *testing.T) {
	// SHA-256 of "hello world" and of empty input are well-known.
	if got := ContentHashHex([]byte("hello world")); got != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected hash %q", got)
	}
	if got := ContentHashHex(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty hash %q", got)
	}
}

func TestNew_AssignsUUID(t *testing.T) {
	s := New("")
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("expected uuid session id, got %q: %v", s.ID, err)
	}
	if New("").ID == s.ID {
		t.Error("expected distinct session ids")
	}
}

func TestCredentialPrecedence(t *testing.T) {
	s := New("  env-key ")
	if key, src := s.Credential(); key != "env-key" || src != CredentialEnvironment {
		t.Errorf("expected environment key, got %q (%s)", key, src)
	}
	s.SetCredential("typed-key")
	if key, src := s.Credential(); key != "typed-key" || src != CredentialExplicit {
		t.Errorf("expected explicit key to win, got %q (%s)", key, src)
	}
	s.SetCredential("")
	if key, _ := s.Credential(); key != "env-key" {
		t.Errorf("expected fallback to environment key, got %q", key)
	}

	empty := New("")
	if key, src := empty.Credential(); key != "" || src != CredentialNone {
		t.Errorf("expected no credential, got %q (%s)", key, src)
	}
}

func TestLoadDocument_ReplacesAndKeepsTranscript(t *testing.T) {
	s := New("")
	s.Append(RoleUser, "hi")
	s.LoadDocument("a.txt", "first", []byte("first"))
	info := s.LoadDocument("b.txt", "second", []byte("second"))

	if s.Document() != "second" {
		t.Errorf("expected document replaced, got %q", s.Document())
	}
	if info.Filename != "b.txt" || info.ContentHash != ContentHashHex([]byte("second")) {
		t.Errorf("unexpected info %+v", info)
	}
	if len(s.Messages()) != 1 {
		t.Errorf("expected transcript kept across uploads, got %d messages", len(s.Messages()))
	}
	snap := s.Snapshot()
	if snap.Filename != "b.txt" || snap.DocumentChars != 6 || snap.LoadedAt == nil {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestClear(t *testing.T) {
	s := New("env")
	s.SetCredential("typed")
	s.LoadDocument("deck.pptx", "=== SLIDE 1 ===\nx", []byte("zip"))
	s.Append(RoleUser, "q")
	s.Append(RoleAssistant, "a")

	s.Clear()
	if s.Document() != "" {
		t.Error("expected document cleared")
	}
	if len(s.Messages()) != 0 {
		t.Error("expected transcript cleared")
	}
	if key, _ := s.Credential(); key != "typed" {
		t.Errorf("expected credential to survive clear, got %q", key)
	}
	snap := s.Snapshot()
	if snap.Filename != "" || snap.LoadedAt != nil || snap.Slides != 0 {
		t.Errorf("expected empty snapshot after clear, got %+v", snap)
	}
}

func TestAppend_OrderAndImmutability(t *testing.T) {
	s := New("")
	first := s.Append(RoleUser, "question")
	s.Append(RoleAssistant, "Error: quota exceeded")

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0] != first {
		t.Errorf("expected first message unchanged, got %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "Error: quota exceeded" {
		t.Errorf("unexpected second message %+v", msgs[1])
	}

	msgs[0].Content = "tampered"
	if s.Messages()[0].Content != "question" {
		t.Error("expected Messages to return a copy")
	}
}

func TestDescribe(t *testing.T) {
	short := Describe("notes.md", "hello")
	if short.Characters != 5 || short.Large || short.Preview != "hello" || short.Slides != 0 {
		t.Errorf("unexpected info %+v", short)
	}

	text := "=== SLIDE 1 ===\n" + strings.Repeat("ü", 60000) + "\n\n=== SLIDE 2 ===\nend"
	info := Describe("deck.pptx", text)
	if info.Slides != 2 {
		t.Errorf("expected 2 slides, got %d", info.Slides)
	}
	if !info.Large {
		t.Error("expected large document")
	}
	if !strings.HasSuffix(info.Preview, "...") {
		t.Error("expected truncated preview to end with ...")
	}
	if n := len([]rune(strings.TrimSuffix(info.Preview, "..."))); n != PreviewChars {
		t.Errorf("expected %d preview chars, got %d", PreviewChars, n)
	}

	exact := Describe("x.txt", strings.Repeat("a", PreviewChars))
	if strings.HasSuffix(exact.Preview, "...") {
		t.Error("expected untruncated preview at the limit")
	}
}

func TestMessageIDsSortable(t *testing.T) {
	s := New("")
	var ids []string
	for i := 0; i < 500; i++ {
		ids = append(ids, s.Append(RoleUser, "m").ID)
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if len(id) != 26 {
			t.Fatalf("expected 26-char id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("expected ids in generation order to sort ascending")
	}
}

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("unexpected zero encoding %q", got)
	}
	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("unexpected max encoding %q", got)
	}
}

func TestIDGenerator_ClockStepBack(t *testing.T) {
	var g idGenerator
	now := time.Now()
	a := g.next(now)
	b := g.next(now.Add(-time.Second))
	if b <= a {
		t.Errorf("expected monotonic ids across clock step back: %s then %s", a, b)
	}
}
