// Package digest renders trend batches into chat messages.
package digest

import (
	"strings"
	"unicode/utf8"

	"github.com/abdulachik/trendbot/internal/monitor"
)

const (
	// Header is the first line of every trends message.
	Header = "🔥 أهم الترندات العالمية الآن:"

	// Bullet prefixes each trend line.
	Bullet = "• "

	// Greeting answers the /start command.
	Greeting = "🤖 أهلاً بك! سأرسل أهم الترندات العالمية تلقائيًا كل ساعة."

	// TelegramMaxLength is the maximum character count of a Telegram text message.
	TelegramMaxLength = 4096
)

// FormatTrends builds the header line followed by one bullet line per trend,
// in the order given.
func FormatTrends(trends []monitor.Trend) string {
	titles := make([]string, len(trends))
	for i, t := range trends {
		titles[i] = t.Title
	}
	return FormatTitles(titles)
}

// FormatTitles is FormatTrends for bare labels.
func FormatTitles(titles []string) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, title := range titles {
		b.WriteString("\n")
		b.WriteString(Bullet)
		b.WriteString(title)
	}
	return b.String()
}

// FitsInLimit checks if the formatted message fits within the limit.
func FitsInLimit(formatted string, limit int) bool {
	return utf8.RuneCountInString(formatted) <= limit
}

// TruncateLines drops whole trailing lines until text fits in limit runes.
// The first line is always kept, cut mid-line if it alone is too long.
func TruncateLines(text string, limit int) string {
	if FitsInLimit(text, limit) {
		return text
	}

	lines := strings.Split(text, "\n")
	for len(lines) > 1 {
		lines = lines[:len(lines)-1]
		joined := strings.Join(lines, "\n")
		if FitsInLimit(joined, limit) {
			return joined
		}
	}

	runes := []rune(lines[0])
	if limit < 0 {
		limit = 0
	}
	return string(runes[:limit])
}
