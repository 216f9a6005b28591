package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bicommit/internal/clients/common"
	"bicommit/internal/git"
	"bicommit/internal/schema"
)

type fakeResponse struct {
	content string
	signal  common.CompletionSignal
	err     error
}

type fakeProvider struct {
	responses []fakeResponse
	calls     int
	budgets   []int
	messages  [][]common.Message
}

func (p *fakeProvider) Name() string { return "Fake" }

func (p *fakeProvider) Send(_ context.Context, msgs []common.Message, maxTokens int) (string, common.CompletionSignal, error) {
	p.budgets = append(p.budgets, maxTokens)
	p.messages = append(p.messages, msgs)
	resp := p.responses[p.calls]
	p.calls++
	return resp.content, resp.signal, resp.err
}

func stop() common.CompletionSignal   { return common.CompletionSignal{Kind: common.SignalStop} }
func length() common.CompletionSignal { return common.CompletionSignal{Kind: common.SignalLength} }

const validCommitJSON = `{"type":"feat","scope":"core","description":"新增功能","description_en":"Add feature"}`

var testCommitCtx = CommitContext{BranchName: "main", FileCount: 1, AddedLines: 2, RemovedLines: 1}

func TestGenerateCommitSuccess(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: validCommitJSON, signal: stop()},
	}}
	c := New(provider, 2000)

	msg, err := c.GenerateCommit(context.Background(), "diff --git a b", testCommitCtx)
	if err != nil {
		t.Fatalf("GenerateCommit() error = %v", err)
	}
	if msg.CommitType != "feat" || msg.Scope != "core" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, want 1", provider.calls)
	}
}

func TestGenerateCommitTruncationGrowsBudget(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "{\"partial", signal: length()},
		{content: validCommitJSON, signal: stop()},
	}}
	c := New(provider, 500)

	if _, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx); err != nil {
		t.Fatalf("GenerateCommit() error = %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("calls = %d, want 2", provider.calls)
	}
	if provider.budgets[0] != 500 || provider.budgets[1] != 1000 {
		t.Errorf("budgets = %v, want [500 1000]", provider.budgets)
	}

	// The retry carries the corrective instruction as a second system message.
	retry := provider.messages[1]
	if len(retry) != 3 || retry[1].Role != "system" || !strings.Contains(retry[1].Content, "truncated") {
		t.Errorf("retry messages = %+v, want corrective system message", retry)
	}
	if len(provider.messages[0]) != 2 {
		t.Errorf("first attempt has %d messages, want 2", len(provider.messages[0]))
	}
}

func TestGenerateCommitTruncationExhaustsAttempts(t *testing.T) {
	responses := make([]fakeResponse, 4)
	for i := range responses {
		responses[i] = fakeResponse{content: "{\"partial", signal: length()}
	}
	provider := &fakeProvider{responses: responses}
	c := New(provider, 500)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var truncErr *TruncatedError
	if !errors.As(err, &truncErr) {
		t.Fatalf("error is %T, want *TruncatedError", err)
	}
	if truncErr.Empty {
		t.Error("Empty = true, want false for non-empty truncated text")
	}
	if provider.calls != 4 {
		t.Errorf("calls = %d, want exactly 4", provider.calls)
	}
	// 500 -> 1000 -> 2000 -> 4000, ceiling respected.
	want := []int{500, 1000, 2000, 4000}
	for i, b := range want {
		if provider.budgets[i] != b {
			t.Errorf("budgets = %v, want %v", provider.budgets, want)
			break
		}
	}
}

func TestGenerateCommitBudgetCeiling(t *testing.T) {
	responses := make([]fakeResponse, 4)
	for i := range responses {
		responses[i] = fakeResponse{content: "x", signal: length()}
	}
	provider := &fakeProvider{responses: responses}
	c := New(provider, 3000)

	c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	want := []int{3000, 4000, 4000, 4000}
	for i, b := range want {
		if provider.budgets[i] != b {
			t.Fatalf("budgets = %v, want %v", provider.budgets, want)
		}
	}
}

func TestGenerateCommitRepeatedEmptyTruncation(t *testing.T) {
	responses := make([]fakeResponse, 4)
	for i := range responses {
		responses[i] = fakeResponse{content: "  ", signal: length()}
	}
	provider := &fakeProvider{responses: responses}
	c := New(provider, 2000)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var truncErr *TruncatedError
	if !errors.As(err, &truncErr) {
		t.Fatalf("error is %T, want *TruncatedError", err)
	}
	if !truncErr.Empty {
		t.Error("Empty = false, want true for repeated empty truncation")
	}
}

func TestGenerateCommitContentFilteredIsFatal(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "", signal: common.CompletionSignal{Kind: common.SignalContentFiltered}},
	}}
	c := New(provider, 2000)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var filteredErr *ContentFilteredError
	if !errors.As(err, &filteredErr) {
		t.Fatalf("error is %T, want *ContentFilteredError", err)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, content filter must not be retried", provider.calls)
	}
}

func TestGenerateCommitUnknownFinishReason(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "x", signal: common.CompletionSignal{Kind: common.SignalUnknown, Reason: "tool_calls"}},
	}}
	c := New(provider, 2000)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var finishErr *UnexpectedFinishError
	if !errors.As(err, &finishErr) {
		t.Fatalf("error is %T, want *UnexpectedFinishError", err)
	}
	if finishErr.Reason != "tool_calls" {
		t.Errorf("Reason = %q, want raw reason string", finishErr.Reason)
	}
}

func TestGenerateCommitProviderErrorAborts(t *testing.T) {
	reqErr := &common.RequestError{Kind: common.KindAuth, Status: 401, Provider: "Fake"}
	provider := &fakeProvider{responses: []fakeResponse{
		{err: reqErr},
	}}
	c := New(provider, 2000)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	if !errors.Is(err, reqErr) {
		t.Fatalf("error = %v, want the provider error unchanged", err)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, transport errors must not be retried", provider.calls)
	}
}

func TestGenerateCommitStripsFence(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "```json\n" + validCommitJSON + "\n```", signal: stop()},
	}}
	c := New(provider, 2000)

	msg, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	if err != nil {
		t.Fatalf("GenerateCommit() error = %v", err)
	}
	if msg.CommitType != "feat" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestGenerateCommitExtractionFallback(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "Sure! Here is the commit message:\n" + validCommitJSON + "\nLet me know if you need changes.", signal: stop()},
	}}
	c := New(provider, 2000)

	msg, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	if err != nil {
		t.Fatalf("GenerateCommit() error = %v", err)
	}
	if msg.Description != "新增功能" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestGenerateCommitNoExtractableObject(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "I could not produce JSON, sorry.", signal: stop()},
	}}
	c := New(provider, 2000)

	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error is %T, want *ExtractionError", err)
	}
	if extractErr.Primary == nil {
		t.Error("Primary error not preserved")
	}
	if extractErr.Err != nil {
		t.Error("Err should be nil when no object was found")
	}
}

func TestGenerateCommitExtractionParseFailureChainsBoth(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: "prefix {\"type\":\"feat\"} suffix", signal: stop()},
	}}
	c := New(provider, 2000)

	// Extracted object is missing the required description.
	_, err := c.GenerateCommit(context.Background(), "diff", testCommitCtx)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error is %T, want *ExtractionError", err)
	}
	if extractErr.Primary == nil || extractErr.Err == nil {
		t.Errorf("both stage errors must be chained: %+v", extractErr)
	}
	var parseErr *schema.ParseError
	if !errors.As(err, &parseErr) {
		t.Error("chained error should expose the schema parse failure")
	}
}

func TestGenerateCommitEmptyDiff(t *testing.T) {
	provider := &fakeProvider{}
	c := New(provider, 2000)

	if _, err := c.GenerateCommit(context.Background(), "   ", testCommitCtx); err == nil {
		t.Fatal("expected error for empty diff")
	}
	if provider.calls != 0 {
		t.Errorf("calls = %d, want 0", provider.calls)
	}
}

var testCommits = []git.CommitInfo{
	{ShortID: "abc1234", Time: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), Summary: "feat: 登录", Author: "dev"},
	{ShortID: "def5678", Time: time.Date(2025, 7, 28, 9, 0, 0, 0, time.UTC), Summary: "fix: 超时", Author: "dev"},
}

const validChangelogJSON = `{"title":"认证","title_en":"Auth","highlights":["登录"],"highlights_en":["Login"],"categories":{"features":["登录 / Login"]}}`

func TestGenerateChangelogSingleAttempt(t *testing.T) {
	// Even a truncation signal does not trigger a retry on the changelog path.
	provider := &fakeProvider{responses: []fakeResponse{
		{content: validChangelogJSON, signal: length()},
	}}
	c := New(provider, 2000)

	summary, err := c.GenerateChangelog(context.Background(), testCommits, ChangelogContext{TotalCommits: 2, DateRange: "2025-07-28 ~ 2025-08-01"})
	if err != nil {
		t.Fatalf("GenerateChangelog() error = %v", err)
	}
	if summary.TitleEn != "Auth" {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, changelog must be single-attempt", provider.calls)
	}
	if provider.budgets[0] != 2000 {
		t.Errorf("budget = %d, want the initial budget", provider.budgets[0])
	}
}

func TestGenerateChangelogPromptContainsCommits(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: validChangelogJSON, signal: stop()},
	}}
	c := New(provider, 2000)

	if _, err := c.GenerateChangelog(context.Background(), testCommits, ChangelogContext{TotalCommits: 2}); err != nil {
		t.Fatalf("GenerateChangelog() error = %v", err)
	}

	user := provider.messages[0][1].Content
	if !strings.Contains(user, "- [abc1234] 2025-08-01 - feat: 登录 (dev)") {
		t.Errorf("prompt missing commit line:\n%s", user)
	}
	if !strings.Contains(user, "Total commits: 2") {
		t.Errorf("prompt missing commit count:\n%s", user)
	}
}

func TestGenerateChangelogNoCommits(t *testing.T) {
	provider := &fakeProvider{}
	c := New(provider, 2000)

	if _, err := c.GenerateChangelog(context.Background(), nil, ChangelogContext{}); err == nil {
		t.Fatal("expected error for empty commit list")
	}
}

func TestTruncateDiff(t *testing.T) {
	tests := []struct {
		name string
		diff string
		max  int
		want string
	}{
		{"short diff unchanged", "abc", 10, "abc"},
		{"ascii cut at limit", "abcdef", 3, "abc"},
		{"multibyte not split", "中文字", 4, "中"}, // each rune is 3 bytes
		{"cut exactly on boundary", "中文", 3, "中"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateDiff(tt.diff, tt.max); got != tt.want {
				t.Errorf("truncateDiff(%q, %d) = %q, want %q", tt.diff, tt.max, got, tt.want)
			}
		})
	}
}
