// internal/assistant/format/formatter.go
package format

import (
	"fmt"
	"sort"
	"strings"

	"workspace-assistant/internal/models"
)

// noMessagesSentence is the literal answer for narrative queries that end
// up with no usable context.
const noMessagesSentence = "No valid messages were found for this query."

// FormatNarrative renders enriched messages into the transcript block fed to
// the generation provider. Messages are ordered chronologically and grouped
// by calendar day.
func FormatNarrative(messages []models.MessageContext) string {
	if len(messages) == 0 {
		return noMessagesSentence
	}

	ordered := make([]models.MessageContext, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var b strings.Builder
	currentDay := ""
	for _, mc := range ordered {
		day := mc.CreatedAt.Format("January 2, 2006")
		if day != currentDay {
			if currentDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(day)
			b.WriteString(":\n")
			currentDay = day
		}
		b.WriteString(formatLine(mc))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLine(mc models.MessageContext) string {
	line := fmt.Sprintf("[%s] %s", mc.CreatedAt.Format("15:04"), displayName(mc.User))
	if mc.ChannelName != "" {
		line += " in #" + mc.ChannelName
	}
	return fmt.Sprintf("%s: \"%s\"", line, sanitize(mc.Content))
}

func displayName(u *models.UserInfo) string {
	if u == nil || (u.Username == "" && u.FullName == "") {
		return "@unknown_user"
	}
	if u.FullName == "" {
		return "@" + u.Username
	}
	if u.Username == "" {
		return u.FullName
	}
	return fmt.Sprintf("%s (@%s)", u.FullName, u.Username)
}

// sanitize flattens control characters and escapes double quotes so a
// message can never break out of its quoted transcript line.
func sanitize(content string) string {
	var b strings.Builder
	for _, r := range content {
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			// drop remaining control characters
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FormatAggregate renders count and statistical results into a final answer
// without involving the generation provider. channelName and timeframe
// qualify the sentence when present.
func FormatAggregate(result *models.AggregatedResult, channelName, timeframe string, ascending bool) string {
	if result == nil {
		return noMessagesSentence
	}
	if result.Count != nil {
		return formatCount(*result.Count, channelName, timeframe)
	}
	return formatStatistics(result.Statistics, channelName, timeframe, ascending)
}

func formatCount(count int, channelName, timeframe string) string {
	if count == 0 {
		return "I found no messages" + qualifiers(channelName, timeframe) + "."
	}
	return fmt.Sprintf("I found exactly %d %s%s.", count, pluralMessages(count), qualifiers(channelName, timeframe))
}

func formatStatistics(stats []models.UserActivity, channelName, timeframe string, ascending bool) string {
	if len(stats) == 0 {
		return "I found no user activity" + qualifiers(channelName, timeframe) + "."
	}

	direction := "most"
	if ascending {
		direction = "least"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the %s active users%s:\n", direction, qualifiers(channelName, timeframe))
	for i, s := range stats {
		name := s.Username
		if name == "" {
			name = s.UserID
		}
		fmt.Fprintf(&b, "%d. @%s with %d %s\n", i+1, name, s.Count, pluralMessages(s.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}

func qualifiers(channelName, timeframe string) string {
	var q string
	if channelName != "" {
		q += " in channel #" + channelName
	}
	if timeframe != "" {
		q += " during " + timeframe
	}
	return q
}

func pluralMessages(n int) string {
	if n == 1 {
		return "message"
	}
	return "messages"
}
