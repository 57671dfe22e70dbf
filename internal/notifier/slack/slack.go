package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/ranking"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(fact *padel.MatchFact, pointsAwarded float64, dryRun bool) error {
	msg := s.formatResultNotification(fact, pointsAwarded)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendMovementDigest(movements []notifier.Movement, dryRun bool) error {
	msg := s.formatMovementDigest(movements)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(rows []ranking.StandingRow, kind padel.SubjectKind, dryRun bool) error {
	msg := s.formatStandings(rows, kind)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendH2HSummary(summary *h2h.Summary, dryRun bool) error {
	msg := s.formatH2H(summary)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendSubjectNotFound(query string, dryRun bool) error {
	msg := s.formatSubjectNotFound(query)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatStandingsResponse formats a standings message for a slash command response.
func (s *Notifier) FormatStandingsResponse(rows []ranking.StandingRow, kind padel.SubjectKind) (any, error) {
	return s.formatStandings(rows, kind), nil
}

// FormatH2HResponse formats a head-to-head message for a slash command response.
func (s *Notifier) FormatH2HResponse(summary *h2h.Summary) (any, error) {
	return s.formatH2H(summary), nil
}

// FormatSubjectNotFoundResponse formats a not-found message for a slash command response.
func (s *Notifier) FormatSubjectNotFoundResponse(query string) (any, error) {
	return s.formatSubjectNotFound(query), nil
}

// formatResultNotification creates the Slack message for a ranked match using Block Kit.
func (s *Notifier) formatResultNotification(fact *padel.MatchFact, pointsAwarded float64) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match result ranked! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s defeated %s\n%s · %s · %s",
		displayName(fact.WinnerID), displayName(fact.LoserID()),
		fact.Category, fact.Round, fact.Date.Format("Monday 02 Jan"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	var setLines []string
	for i, set := range fact.Sets {
		setLines = append(setLines, fmt.Sprintf("• Set %d: %d-%d", i+1, set.Home, set.Away))
	}
	scoreText := "No scores recorded."
	if len(setLines) > 0 {
		scoreText = strings.Join(setLines, "\n")
	}
	if fact.Walkover {
		scoreText += "\n(walkover)"
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoreText, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 +%.1f ranking points", pointsAwarded), true, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatMovementDigest creates the Slack digest for ranking movement after a
// processing run.
func (s *Notifier) formatMovementDigest(movements []notifier.Movement) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📈 Ranking movement 📈", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(movements) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "No ranking changes this run.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, m := range movements {
		arrow := "→"
		if m.Rank < m.PreviousRank {
			arrow = "⬆️"
		} else if m.Rank > m.PreviousRank {
			arrow = "⬇️"
		}
		lines = append(lines, fmt.Sprintf("%s %s: #%d %s #%d (%.1f pts, +%.1f)",
			arrow, displayName(m.SubjectID), m.PreviousRank, arrow, m.Rank, m.Points, m.PointsChange))
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatStandings creates the Slack message for current standings.
func (s *Notifier) formatStandings(rows []ranking.StandingRow, kind padel.SubjectKind) slack.Message {
	blocks := make([]slack.Block, 0)

	title := "🏆 Player Ranking 🏆"
	if kind == padel.SubjectPair {
		title = "🏆 Pair Ranking 🏆"
	}
	headerText := slack.NewTextBlockObject("plain_text", title, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "No ranked subjects yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, row := range rows {
		medal := ""
		switch row.Rank {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s — %.1f pts", row.Rank, medal, displayName(row.SubjectID), row.Points))
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatH2H creates the Slack message for a head-to-head comparison.
func (s *Notifier) formatH2H(summary *h2h.Summary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text",
		fmt.Sprintf("⚔️ %s vs %s ⚔️", displayName(summary.SubjectA), displayName(summary.SubjectB)), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if summary.NoHistory {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "These two have never faced each other.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Matches\n%d", summary.TotalMatches), true, false),
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Wins\n%d - %d", summary.WinsA, summary.WinsB), true, false),
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Sets\n%d - %d", summary.SetsA, summary.SetsB), true, false),
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("Games\n%d - %d", summary.GamesA, summary.GamesB), true, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	if summary.Streak.Length > 0 {
		streakText := fmt.Sprintf("🔥 %s has won the last %d", displayName(summary.Streak.SubjectID), summary.Streak.Length)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", streakText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatSubjectNotFound(query string) slack.Message {
	text := slack.NewTextBlockObject("plain_text",
		fmt.Sprintf("Sorry, couldn't find anyone matching '%s'. 🤷", query), true, false)
	return slack.NewBlockMessage(slack.NewSectionBlock(text, nil, nil))
}

// displayName renders a subject slug for humans: pair slugs become
// "a & b", single slugs get dashes replaced with spaces.
func displayName(subjectID string) string {
	parts := strings.Split(subjectID, "--")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, "-", " ")
	}
	return strings.Join(parts, " & ")
}
