package slackbot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/adapter/utils"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/domain/jobModel"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/handlers"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/metrics"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
)

// poster is the slice of the Slack API the app needs, kept small for tests.
type poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

type App struct {
	api    poster
	socket *socketmode.Client
	logger *logger_i.Logger
}

func NewApp(settings config.Settings) *App {
	api := slack.New(
		settings.SlackBotToken,
		slack.OptionAppLevelToken(settings.SlackAppLevelToken),
	)
	return &App{
		api:    api,
		socket: socketmode.New(api),
		logger: logger_i.NewLogger("SlackApp"),
	}
}

// Run blocks on the Socket Mode event loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("Socket mode connection ended", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-a.socket.Events:
			if !ok {
				return nil
			}
			a.handleSocketEvent(ctx, evt)
		}
	}
}

func (a *App) handleSocketEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		a.logger.Info("Connecting to Slack")
	case socketmode.EventTypeConnected:
		a.logger.Info("Connected to Slack")
	case socketmode.EventTypeConnectionError:
		a.logger.Error("Slack connection error", "data", evt.Data)
	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		a.socket.Ack(*evt.Request)
		if eventsAPIEvent.Type != slackevents.CallbackEvent {
			return
		}
		switch ev := eventsAPIEvent.InnerEvent.Data.(type) {
		case *slackevents.AppMentionEvent:
			a.handleMention(ctx, ev)
		}
	}
}

func (a *App) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	metrics.SlackMentionsTotal.Inc()

	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}
	traceId := utils.GetNewUUID()
	question := StripMention(ev.Text)

	a.logger.Info("App mention received", "traceId", traceId, "channel", ev.Channel)

	if question == "" {
		a.post(ev.Channel, threadTS, "Ask me a question about the workspace, or say `sync` to refresh the index.")
		return
	}

	if IsSyncCommand(question) {
		_, started := handlers.EnqueueSlackSync(ev.Channel, threadTS, traceId)
		if !started {
			a.post(ev.Channel, threadTS, "A workspace sync is already running, try again once it finishes.")
			return
		}
		a.post(ev.Channel, threadTS, "Workspace sync started, I'll report back here when it's done.")
		return
	}

	threadKey := ev.Channel + ":" + threadTS
	handlers.EnqueueSlackQuestion(question, threadKey, ev.Channel, threadTS, traceId)
}

// NotifyAnswer posts a finished job's result back into the originating thread.
// It satisfies the worker pool's notifier hook.
func (a *App) NotifyAnswer(ctx context.Context, job jobModel.Job) {
	channel := job.JobPayload.SlackChannel
	threadTS := job.JobPayload.SlackThreadTS
	if channel == "" {
		return
	}

	if job.Error.Message != "" {
		a.post(channel, threadTS, "Sorry, I couldn't finish that one: "+job.Error.Message)
		return
	}

	switch job.JobType {
	case jobModel.JobTypeSync:
		a.post(channel, threadTS, fmt.Sprintf(
			"Workspace sync finished: %d pages, %d chunks indexed.",
			job.JobPayload.PagesSynced, job.JobPayload.ChunksSynced))
	default:
		a.post(channel, threadTS, FormatAnswer(job.JobPayload))
	}
}

func (a *App) post(channel, threadTS, text string) {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}
	if _, _, err := a.api.PostMessage(channel, options...); err != nil {
		a.logger.Error("Failed to post message", "channel", channel, "error", err)
	}
}

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// StripMention removes bot mention tags from the message text and trims the
// remainder down to the actual question.
func StripMention(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

func IsSyncCommand(question string) bool {
	return strings.EqualFold(strings.TrimSpace(question), "sync")
}

// FormatAnswer renders the answer plus a source list using Slack link markup.
func FormatAnswer(payload jobModel.JobPayload) string {
	var b strings.Builder
	b.WriteString(payload.Answer)
	if len(payload.Citations) > 0 {
		b.WriteString("\n\n*Sources*\n")
		for _, c := range payload.Citations {
			if c.URL != "" {
				b.WriteString(fmt.Sprintf("[%d] <%s|%s>\n", c.Label, c.URL, c.Title))
			} else {
				b.WriteString(fmt.Sprintf("[%d] %s\n", c.Label, c.Title))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
