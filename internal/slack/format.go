package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/scan-io-git/perfscan/internal/orchestrator"
	"github.com/scan-io-git/perfscan/internal/perf"
	"github.com/scan-io-git/perfscan/internal/report"
)

const (
	maxSectionText     = 2900
	maxRecommendations = 3
)

var severityBadge = map[perf.Severity]string{
	perf.SeverityCritical: ":red_circle: *CRITICAL*",
	perf.SeverityHigh:     ":large_orange_circle: *HIGH*",
	perf.SeverityMedium:   ":large_yellow_circle: *MEDIUM*",
	perf.SeverityLow:      ":white_circle: *LOW*",
}

var levelEmoji = map[perf.PerformanceLevel]string{
	perf.LevelExcellent: ":rocket:",
	perf.LevelGood:      ":white_check_mark:",
	perf.LevelModerate:  ":warning:",
	perf.LevelPoor:      ":rotating_light:",
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, truncate(text, maxSectionText), false, false)
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, truncate(text, 150), false, false)
}

// escape applies Slack's mrkdwn escaping of control characters.
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func link(url, label string) string {
	if url == "" {
		return escape(label)
	}
	return fmt.Sprintf("<%s|%s>", url, escape(label))
}

// ReportMessage renders a as a channel visible Block Kit message with at most maxFindings findings.
func ReportMessage(a *orchestrator.Analysis, maxFindings int) *slack.Msg {
	r := a.Result
	findings := report.Collect(r)

	summary := fmt.Sprintf("%s Score *%d/100* (%s)\n%d files analysed, %d findings",
		levelEmoji[r.PerformanceLevel], r.OverallPerformanceScore, r.PerformanceLevel, r.FilesAnalyzed, len(findings))
	if a.Skipped > 0 {
		summary += fmt.Sprintf(", %d files skipped", a.Skipped)
	}
	if a.Truncated {
		summary += ", file list truncated"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(plain("Performance report")),
		slack.NewSectionBlock(mrkdwn("*"+link(a.Target.Raw, a.Target.Title)+"*\n"+summary), nil, nil),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			mrkdwn(fmt.Sprintf("*Bottlenecks*\n%d (%d critical)", r.Bottlenecks.TotalBottlenecks, r.Bottlenecks.CriticalBottlenecks)),
			mrkdwn(fmt.Sprintf("*Complexity*\n%d/100", r.Complexity.OverallScore)),
			mrkdwn(fmt.Sprintf("*Memory*\n%d/100", r.Memory.OverallScore)),
			mrkdwn(fmt.Sprintf("*Database*\n%d/100", r.Database.OverallScore)),
		}, nil),
	}

	if len(findings) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		shown := findings
		if maxFindings > 0 && len(shown) > maxFindings {
			shown = shown[:maxFindings]
		}
		for _, f := range shown {
			where := fmt.Sprintf("%s:%d", f.Location.File, f.Location.StartLine)
			text := fmt.Sprintf("%s %s\n%s · `%s`", severityBadge[f.Severity], escape(f.Title), link(a.Permalink(f.Location), where), f.RuleID())
			if f.Recommendation != "" {
				text += "\n_" + escape(f.Recommendation) + "_"
			}
			blocks = append(blocks, slack.NewSectionBlock(mrkdwn(text), nil, nil))
		}
		if hidden := len(findings) - len(shown); hidden > 0 {
			blocks = append(blocks, slack.NewContextBlock("", mrkdwn(fmt.Sprintf("…and %d more findings. Run `perfscan analyse` for the full report.", hidden))))
		}
	}

	if len(r.Recommendations) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		var sb strings.Builder
		sb.WriteString("*Recommendations*")
		for i, rec := range r.Recommendations {
			if i == maxRecommendations {
				break
			}
			fmt.Fprintf(&sb, "\n• *%s* (%s priority): %s", escape(rec.Title), rec.Priority, escape(rec.Description))
		}
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(sb.String()), nil, nil))
	}

	footer := "result `" + r.ID + "`"
	if a.Target.Ref != "" {
		footer += " · ref `" + a.Target.Ref + "`"
	}
	if a.Cached {
		footer += " · cached"
	}
	blocks = append(blocks, slack.NewContextBlock("", mrkdwn(footer)))

	return &slack.Msg{
		ResponseType:    slack.ResponseTypeInChannel,
		ReplaceOriginal: true,
		Text:            fmt.Sprintf("Performance score %d/100 (%s) for %s", r.OverallPerformanceScore, r.PerformanceLevel, a.Target.Title),
		Blocks:          slack.Blocks{BlockSet: blocks},
	}
}

// AckMessage is the immediate ephemeral reply to an accepted command.
func AckMessage(url string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf(":hourglass_flowing_sand: Analysing %s, the report will be posted here shortly.", url),
	}
}

// ErrorMessage is an ephemeral reply explaining why a command failed.
func ErrorMessage(target string, err error) *slack.Msg {
	text := fmt.Sprintf(":x: Could not analyse %s: %s", target, escape(err.Error()))
	if target == "" {
		text = ":x: " + escape(err.Error())
	}
	return &slack.Msg{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: true,
		Text:            text,
	}
}

// HelpMessage describes the command syntax.
func HelpMessage(command string) *slack.Msg {
	text := fmt.Sprintf("*Usage:* `%s <github url> [flags]`\n"+
		"Analyses the JavaScript, TypeScript and SQL files of a pull request, issue, repository, folder or file.\n"+
		"```%s```\n*Examples:*\n`%s https://github.com/acme/shop/pull/42`\n`%s https://github.com/acme/shop/tree/main/src --only database,memory`",
		command, Usage(), command, command)
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}
