// Package core drives one LLM generation: prompt assembly, the bounded
// truncation-retry loop, and recovery of a structured result from the
// provider's free-form text.
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"bicommit/internal/clients/common"
	"bicommit/internal/git"
	"bicommit/internal/jsonparser"
	"bicommit/internal/schema"
)

const (
	// maxCommitAttempts bounds the truncation-growth loop for commit
	// generation. Changelog generation is always a single attempt.
	maxCommitAttempts = 4

	// tokenCeiling caps the doubled token budget.
	tokenCeiling = 4000
)

// Provider is one LLM vendor. Send issues a single bounded-timeout request
// and reports the text plus the provider's own completion signal.
type Provider interface {
	Name() string
	Send(ctx context.Context, msgs []common.Message, maxTokens int) (string, common.CompletionSignal, error)
}

type Core struct {
	provider  Provider
	maxTokens int
}

func New(provider Provider, maxTokens int) *Core {
	if provider == nil {
		panic("provider cannot be nil")
	}
	return &Core{
		provider:  provider,
		maxTokens: maxTokens,
	}
}

// GenerateCommit produces a structured commit message for the given diff.
// When the provider signals truncation, the token budget doubles (up to the
// ceiling) and the request is retried with a corrective instruction, at most
// maxCommitAttempts sends in total. All retry state is local to this call.
func (c *Core) GenerateCommit(ctx context.Context, diff string, commitCtx CommitContext) (*schema.CommitMessage, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, fmt.Errorf("diff cannot be empty")
	}

	prompt := buildCommitPrompt(diff, commitCtx)
	maxTokens := c.maxTokens

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		msgs := []common.Message{
			{Role: "system", Content: commitPromptSystem},
		}
		if attempt > 0 {
			msgs = append(msgs, common.Message{Role: "system", Content: commitPromptRetry})
		}
		msgs = append(msgs, common.Message{Role: "user", Content: prompt})

		content, signal, err := c.provider.Send(ctx, msgs, maxTokens)
		if err != nil {
			return nil, err
		}

		log.Debug().Str("content", content).Msg("AI message content")

		switch signal.Kind {
		case common.SignalLength:
			lastAttempt := attempt+1 == maxCommitAttempts
			if lastAttempt {
				return nil, &TruncatedError{Empty: strings.TrimSpace(content) == ""}
			}
			maxTokens = growTokenBudget(maxTokens)
			log.Debug().Int("max_tokens", maxTokens).Msg("Response truncated, retrying with larger budget")
			continue
		case common.SignalContentFiltered:
			return nil, &ContentFilteredError{}
		case common.SignalUnknown:
			return nil, &UnexpectedFinishError{Reason: signal.Reason}
		}

		return parseResponse(content, schema.ParseCommitMessage)
	}

	return nil, fmt.Errorf("failed to obtain a valid commit message from %s after multiple attempts", c.provider.Name())
}

// GenerateChangelog summarizes a span of commits in a single attempt with the
// initial token budget; there is no truncation-growth loop on this path.
func (c *Core) GenerateChangelog(ctx context.Context, commits []git.CommitInfo, changelogCtx ChangelogContext) (*schema.ChangelogSummary, error) {
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits to summarize")
	}

	msgs := []common.Message{
		{Role: "system", Content: changelogPromptSystem},
		{Role: "user", Content: buildChangelogPrompt(commits, changelogCtx)},
	}

	content, _, err := c.provider.Send(ctx, msgs, c.maxTokens)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("content", content).Msg("AI message content")

	return parseResponse(content, schema.ParseChangelogSummary)
}

func growTokenBudget(current int) int {
	grown := current * 2
	if grown > tokenCeiling {
		return tokenCeiling
	}
	return grown
}

// parseResponse strips any markdown fence and tries a direct schema parse;
// on failure it falls back to brace-scanning for an embedded object. Both
// stage errors are chained when the fallback also fails.
func parseResponse[T any](content string, parse func(string) (*T, error)) (*T, error) {
	clean := jsonparser.StripFence(strings.TrimSpace(content))

	result, primaryErr := parse(clean)
	if primaryErr == nil {
		return result, nil
	}

	extracted, ok := jsonparser.ExtractObject(clean)
	if !ok {
		return nil, &ExtractionError{Primary: primaryErr}
	}

	result, err := parse(extracted)
	if err != nil {
		return nil, &ExtractionError{Primary: primaryErr, Err: err}
	}
	return result, nil
}
