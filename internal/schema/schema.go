// Package schema holds the structured bilingual commit and changelog types
// the LLM is asked to produce, plus their lenient JSON decoding and rendering.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// breakingSentinel is what a boolean `"breaking_change": true` normalizes to.
const breakingSentinel = "Breaking change"

// snippetLimit bounds how much offending text a ParseError carries.
const snippetLimit = 200

// ParseError reports a response that could not be decoded into a schema type.
// It keeps a truncated snippet of the offending text for diagnostics.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v (text: %q)", e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(text string, err error) *ParseError {
	snippet := strings.TrimSpace(text)
	if len(snippet) > snippetLimit {
		cut := snippetLimit
		for cut > 0 && !isRuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut] + "..."
	}
	return &ParseError{Snippet: snippet, Err: err}
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// CommitMessage is a bilingual Conventional Commit. Body and BodyEn are
// independently optional; nothing forces them to the same length.
type CommitMessage struct {
	CommitType     string
	Scope          string
	Description    string
	DescriptionEn  string
	Body           []string
	BodyEn         []string
	BreakingChange string
}

// stringList accepts a JSON string (wrapped into a one-element list), an
// array of strings, or null (kept as nil).
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*l = items
	return nil
}

func decodeBreakingChange(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	switch trimmed := strings.TrimSpace(string(raw)); trimmed {
	case "null", "false":
		return "", nil
	case "true":
		return breakingSentinel, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("breaking_change must be a boolean or string: %w", err)
	}
	return s, nil
}

func (m *CommitMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type           string          `json:"type"`
		CommitType     string          `json:"commit_type"`
		Scope          string          `json:"scope"`
		Description    string          `json:"description"`
		DescriptionEn  string          `json:"description_en"`
		Body           stringList      `json:"body"`
		BodyEn         stringList      `json:"body_en"`
		BreakingChange json.RawMessage `json:"breaking_change"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	commitType := raw.CommitType
	if commitType == "" {
		commitType = raw.Type
	}
	if commitType == "" {
		return fmt.Errorf("missing commit type")
	}
	if raw.Description == "" {
		return fmt.Errorf("missing description")
	}

	breaking, err := decodeBreakingChange(raw.BreakingChange)
	if err != nil {
		return err
	}

	m.CommitType = commitType
	m.Scope = raw.Scope
	m.Description = raw.Description
	m.DescriptionEn = raw.DescriptionEn
	m.Body = raw.Body
	m.BodyEn = raw.BodyEn
	m.BreakingChange = breaking
	return nil
}

// ParseCommitMessage decodes an LLM response body into a CommitMessage.
func ParseCommitMessage(text string) (*CommitMessage, error) {
	var msg CommitMessage
	if err := json.Unmarshal([]byte(text), &msg); err != nil {
		return nil, newParseError(text, err)
	}
	return &msg, nil
}

// FormatConventional renders the commit message:
//
//	type(scope): 中文描述
//	English description
//
//	body and body_en lines interleaved pairwise
//
//	BREAKING CHANGE: ...
//
// Chinese body lines without an English counterpart get a
// "[Translation needed]" placeholder; extra English lines print alone.
func (m *CommitMessage) FormatConventional() string {
	var b strings.Builder

	b.WriteString(m.CommitType)
	if m.Scope != "" {
		fmt.Fprintf(&b, "(%s)", m.Scope)
	}
	b.WriteString(": ")
	b.WriteString(m.Description)
	b.WriteByte('\n')
	b.WriteString(m.DescriptionEn)

	if m.Body != nil && m.BodyEn != nil && (len(m.Body) > 0 || len(m.BodyEn) > 0) {
		b.WriteString("\n\n")
		maxLen := len(m.Body)
		if len(m.BodyEn) > maxLen {
			maxLen = len(m.BodyEn)
		}
		for i := 0; i < maxLen; i++ {
			if i > 0 {
				b.WriteByte('\n')
			}
			if i < len(m.Body) {
				b.WriteString(m.Body[i])
				b.WriteByte('\n')
			}
			if i < len(m.BodyEn) {
				b.WriteString(m.BodyEn[i])
			} else if i < len(m.Body) {
				b.WriteString("[Translation needed]")
			}
		}
	}

	if m.BreakingChange != "" {
		b.WriteString("\n\nBREAKING CHANGE: ")
		b.WriteString(m.BreakingChange)
	}

	return b.String()
}

// ChangelogSummary is a bilingual summary of a span of commits.
type ChangelogSummary struct {
	Title        string              `json:"title"`
	TitleEn      string              `json:"title_en"`
	Highlights   []string            `json:"highlights"`
	HighlightsEn []string            `json:"highlights_en"`
	Categories   ChangelogCategories `json:"categories"`
}

// ChangelogCategories groups changelog items; each list defaults to empty.
type ChangelogCategories struct {
	Features     []string `json:"features"`
	Fixes        []string `json:"fixes"`
	Improvements []string `json:"improvements"`
	Others       []string `json:"others"`
}

// ParseChangelogSummary decodes an LLM response body into a ChangelogSummary.
func ParseChangelogSummary(text string) (*ChangelogSummary, error) {
	var summary ChangelogSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, newParseError(text, err)
	}
	if summary.Title == "" || summary.TitleEn == "" {
		return nil, newParseError(text, fmt.Errorf("missing title"))
	}
	return &summary, nil
}

// FormatDisplay renders the changelog as markdown with bilingual headers.
// Highlights pair positionally; unmatched entries are dropped.
func (s *ChangelogSummary) FormatDisplay() string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n", s.Title)
	fmt.Fprintf(&b, "## %s\n\n", s.TitleEn)

	if len(s.Highlights) > 0 {
		b.WriteString("### 亮点 / Highlights\n")
		pairs := len(s.Highlights)
		if len(s.HighlightsEn) < pairs {
			pairs = len(s.HighlightsEn)
		}
		for i := 0; i < pairs; i++ {
			fmt.Fprintf(&b, "- %s / %s\n", s.Highlights[i], s.HighlightsEn[i])
		}
		b.WriteByte('\n')
	}

	writeSection := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(header)
		b.WriteByte('\n')
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteByte('\n')
	}

	writeSection("### ✨ 新功能 / Features", s.Categories.Features)
	writeSection("### 🐛 修复 / Fixes", s.Categories.Fixes)
	writeSection("### 🔧 改进 / Improvements", s.Categories.Improvements)
	writeSection("### 📝 其他 / Others", s.Categories.Others)

	return b.String()
}
