package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bicommit/internal/git"
)

// maxDiffChars caps how much diff text goes into the prompt.
const maxDiffChars = 3000

// CommitContext carries the repository facts the prompt mentions alongside
// the diff itself.
type CommitContext struct {
	BranchName   string
	FileCount    int
	AddedLines   int
	RemovedLines int
}

// ChangelogContext frames the commit list for the changelog prompt.
type ChangelogContext struct {
	TotalCommits int
	DateRange    string
}

const commitPromptSystem = "You are a helpful assistant that generates git commit messages in JSON format. Reply with exactly one valid, minified JSON object."

const commitPromptRetry = "Your previous answer was truncated. Send the complete JSON object this time, keep it under 600 characters, and avoid any commentary or markdown fences."

const changelogPromptSystem = "You are a helpful assistant that generates changelog summaries in JSON format. Reply with exactly one valid, minified JSON object."

func buildCommitPrompt(diff string, ctx CommitContext) string {
	branch := ctx.BranchName
	if branch == "" {
		branch = "unknown"
	}

	return fmt.Sprintf(`You are a Git commit message generator. Based on the following git diff, generate a bilingual (Chinese and English) structured commit message.

Context:
- Branch: %s
- Files changed: %d
- Lines added: %d
- Lines removed: %d

Git Diff:
`+"```"+`
%s
`+"```"+`

Generate a commit message following the Conventional Commits specification with bilingual format:
- type: feat, fix, docs, style, refactor, test, chore, perf
- scope: optional, the component or area affected
- description: 中文简要描述（50字符以内）
- description_en: English brief description (50 chars or less)
- body: 中文详细说明数组，每个元素是一条说明（如："添加了用户认证功能"、"优化了数据库查询性能"）
- body_en: English detailed explanation array, each element corresponds to Chinese version
- breaking_change: optional, if there are breaking changes

Important requirements:
1. description should be in Chinese, description_en should be its English translation
2. body and body_en should be arrays of strings, each element is one point
3. Each Chinese point in body should have a corresponding English translation in body_en
4. Keep descriptions concise and clear

Respond with a JSON object containing these fields. Example:
{
    "type": "feat",
    "scope": "auth",
    "description": "添加用户认证功能",
    "description_en": "Add user authentication feature",
    "body": ["实现了JWT令牌验证", "添加了用户登录接口", "集成了OAuth2.0支持"],
    "body_en": ["Implement JWT token validation", "Add user login endpoint", "Integrate OAuth2.0 support"],
    "breaking_change": null
}
`, branch, ctx.FileCount, ctx.AddedLines, ctx.RemovedLines, truncateDiff(diff, maxDiffChars))
}

func buildChangelogPrompt(commits []git.CommitInfo, ctx ChangelogContext) string {
	var commitLines []string
	for _, c := range commits {
		commitLines = append(commitLines, fmt.Sprintf("- [%s] %s - %s (%s)",
			c.ShortID, c.Time.Format("2006-01-02"), c.Summary, c.Author))
	}

	dateRange := ctx.DateRange
	if dateRange == "" {
		dateRange = "N/A"
	}

	return fmt.Sprintf(`You are a changelog summarizer. Based on the following git commits, generate a bilingual (Chinese and English) changelog summary.

Context:
- Total commits: %d
- Date range: %s

Git Commits:
`+"```"+`
%s
`+"```"+`

Generate a changelog summary with the following structure:
- title: 中文标题，简要概括这些提交的主题
- title_en: English title summarizing the theme
- highlights: 中文亮点列表，最重要的2-3个变更
- highlights_en: English highlights corresponding to Chinese
- categories: 按类型分类的变更列表（双语混合格式）
  - features: 新功能列表
  - fixes: 修复列表
  - improvements: 改进列表
  - others: 其他变更

Important:
1. Analyze commit messages to understand the changes
2. Group similar changes together
3. Use clear, concise language
4. Each item in categories should be bilingual format: "中文描述 / English description"

Respond with a JSON object. Example:
{
    "title": "用户认证与性能优化",
    "title_en": "User Authentication and Performance Optimization",
    "highlights": ["添加了完整的用户认证系统", "优化了数据库查询性能"],
    "highlights_en": ["Added complete user authentication system", "Optimized database query performance"],
    "categories": {
        "features": ["用户登录功能 / User login feature", "OAuth2.0 支持 / OAuth2.0 support"],
        "fixes": ["修复登录超时问题 / Fix login timeout issue"],
        "improvements": ["优化API响应速度 / Optimize API response speed"],
        "others": ["更新依赖版本 / Update dependencies"]
    }
}
`, ctx.TotalCommits, dateRange, strings.Join(commitLines, "\n"))
}

// truncateDiff cuts the diff at maxChars bytes, backing up to the nearest
// rune boundary so a multi-byte character is never split.
func truncateDiff(diff string, maxChars int) string {
	if len(diff) <= maxChars {
		return diff
	}
	boundary := maxChars
	for boundary > 0 && !utf8.RuneStart(diff[boundary]) {
		boundary--
	}
	return diff[:boundary]
}
