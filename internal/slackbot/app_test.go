package slackbot

import (
	"context"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/notionModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

type fakePoster struct {
	channels []string
	count    int
}

func (f *fakePoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	f.count++
	return channelID, "1700000000.000100", nil
}

func TestStripMention(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<@U0123ABCD> where is the deploy runbook?", "where is the deploy runbook?"},
		{"<@U0123ABCD>", ""},
		{"  <@U0123ABCD>   sync  ", "sync"},
		{"no mention at all", "no mention at all"},
		{"<@U0123ABCD> hey <@U0456EFGH> check this", "hey  check this"},
	}
	for _, c := range cases {
		if got := StripMention(c.in); got != c.want {
			t.Errorf("StripMention(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsSyncCommand(t *testing.T) {
	if !IsSyncCommand("sync") || !IsSyncCommand("  SYNC ") {
		t.Error("expected sync command to be recognized")
	}
	if IsSyncCommand("sync the workspace please") {
		t.Error("a full sentence is a question, not a sync command")
	}
}

func TestFormatAnswerIncludesSlackLinks(t *testing.T) {
	payload := jobModel.JobPayload{
		Answer: "Deploys run through the release pipeline.",
		Citations: []notionModel.Citation{
			{Label: 1, Title: "Release Runbook", URL: "https://notion.so/abc", PageID: "abc"},
			{Label: 3, Title: "Untitled", PageID: "def"},
		},
	}

	got := FormatAnswer(payload)

	if !strings.HasPrefix(got, payload.Answer) {
		t.Errorf("answer text missing from %q", got)
	}
	if !strings.Contains(got, "[1] <https://notion.so/abc|Release Runbook>") {
		t.Errorf("linked citation missing from %q", got)
	}
	if !strings.Contains(got, "[3] Untitled") {
		t.Errorf("citation without url should render plain, got %q", got)
	}
}

func TestNotifyAnswerRouting(t *testing.T) {
	posts := &fakePoster{}
	app := &App{api: posts, logger: logger_i.NewLogger("SlackAppTest")}

	// jobs without a slack channel are HTTP jobs, nothing gets posted
	app.NotifyAnswer(context.Background(), jobModel.Job{JobType: jobModel.JobTypeQuestion})
	if posts.count != 0 {
		t.Fatalf("expected no post for a job without a channel, got %d", posts.count)
	}

	answered := jobModel.Job{JobType: jobModel.JobTypeQuestion}
	answered.JobPayload.SlackChannel = "C777"
	answered.JobPayload.SlackThreadTS = "1700000000.000001"
	answered.JobPayload.Answer = "The retro doc lives under Engineering."
	app.NotifyAnswer(context.Background(), answered)

	failed := jobModel.Job{JobType: jobModel.JobTypeQuestion}
	failed.JobPayload.SlackChannel = "C777"
	failed.Error = jobModel.JobError{Code: 500, Message: "LLM_GENERATION_FAILURE"}
	app.NotifyAnswer(context.Background(), failed)

	synced := jobModel.Job{JobType: jobModel.JobTypeSync}
	synced.JobPayload.SlackChannel = "C888"
	synced.JobPayload.PagesSynced = 12
	synced.JobPayload.ChunksSynced = 240
	app.NotifyAnswer(context.Background(), synced)

	if posts.count != 3 {
		t.Fatalf("expected 3 posts, got %d", posts.count)
	}
	if posts.channels[2] != "C888" {
		t.Errorf("sync report posted to %q, want C888", posts.channels[2])
	}
}
