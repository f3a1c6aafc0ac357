// Package session holds the in-memory state of one interactive session:
// the extracted document, the chat transcript and the API credential.
package session

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/deckchat/internal/deck"
	"github.com/google/uuid"
)

// Role is the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Messages are never modified after Append.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CredentialSource tells where the active credential came from.
type CredentialSource string

const (
	CredentialExplicit    CredentialSource = "explicit"
	CredentialEnvironment CredentialSource = "environment"
	CredentialNone        CredentialSource = "none"
)

const (
	// LargeDocumentChars marks a document as large in upload statistics.
	LargeDocumentChars = 50000
	// PreviewChars bounds the upload preview.
	PreviewChars = 1000
)

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	updatedAt time.Time

	envCredential string
	credential    string

	document    string
	filename    string
	contentHash string
	loadedAt    time.Time

	messages []Message
	ids      idGenerator
}

// New creates a session. envCredential is the fallback used when no
// explicit credential has been set.
func New(envCredential string) *Session {
	now := time.Now()
	return &Session{
		ID:            uuid.New().String(),
		CreatedAt:     now,
		updatedAt:     now,
		envCredential: strings.TrimSpace(envCredential),
	}
}

// SetCredential stores an explicit credential. An empty value reverts to the
// environment credential.
func (s *Session) SetCredential(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = strings.TrimSpace(key)
	s.updatedAt = time.Now()
}

// Credential returns the active credential; an explicit one wins over the
// environment.
func (s *Session) Credential() (string, CredentialSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.credential != "":
		return s.credential, CredentialExplicit
	case s.envCredential != "":
		return s.envCredential, CredentialEnvironment
	}
	return "", CredentialNone
}

// LoadDocument replaces the current document. raw is the uploaded file and
// is only hashed. The transcript is kept.
func (s *Session) LoadDocument(filename, text string, raw []byte) DocumentInfo {
	info := Describe(filename, text)
	info.ContentHash = ContentHashHex(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = text
	s.filename = filename
	s.contentHash = info.ContentHash
	s.loadedAt = time.Now()
	s.updatedAt = s.loadedAt
	return info
}

// Document returns the current extracted text, "" when none is loaded.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Clear drops the document and the transcript together. The credential is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = ""
	s.filename = ""
	s.contentHash = ""
	s.loadedAt = time.Time{}
	s.messages = nil
	s.updatedAt = time.Now()
}

// Append adds a message to the transcript and returns it.
func (s *Session) Append(role Role, content string) Message {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	m := Message{
		ID:        s.ids.next(now),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
	s.messages = append(s.messages, m)
	s.updatedAt = now
	return m
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Snapshot is a read-only, JSON-safe view of the session.
type Snapshot struct {
	ID               string           `json:"session_id"`
	Filename         string           `json:"filename,omitempty"`
	DocumentChars    int              `json:"document_chars"`
	Slides           int              `json:"slides"`
	ContentHash      string           `json:"content_hash,omitempty"`
	LoadedAt         *time.Time       `json:"loaded_at,omitempty"`
	Messages         int              `json:"messages"`
	CredentialSource CredentialSource `json:"credential_source"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	_, source := s.Credential()

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:               s.ID,
		Filename:         s.filename,
		DocumentChars:    utf8.RuneCountInString(s.document),
		Slides:           strings.Count(s.document, deck.SlideMarker),
		ContentHash:      s.contentHash,
		Messages:         len(s.messages),
		CredentialSource: source,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.updatedAt,
	}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		snap.LoadedAt = &t
	}
	return snap
}

// DocumentInfo summarizes an extracted document for the uploader.
type DocumentInfo struct {
	Filename    string `json:"filename"`
	Characters  int    `json:"characters"`
	Slides      int    `json:"slides"`
	Large       bool   `json:"large"`
	Preview     string `json:"preview"`
	ContentHash string `json:"content_hash,omitempty"`
}

// Describe computes upload statistics for extracted text.
func Describe(filename, text string) DocumentInfo {
	chars := utf8.RuneCountInString(text)
	preview := text
	if chars > PreviewChars {
		preview = string([]rune(text)[:PreviewChars]) + "..."
	}
	return DocumentInfo{
		Filename:   filename,
		Characters: chars,
		Slides:     strings.Count(text, deck.SlideMarker),
		Large:      chars > LargeDocumentChars,
		Preview:    preview,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
