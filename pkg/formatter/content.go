// Package formatter turns post content into plain text, markdown and chat messages.
package formatter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var markdown = md.NewConverter("", true, &md.Options{
	HeadingStyle:     "atx",
	BulletListMarker: "-",
})

// StripHTML returns the text content of an HTML fragment.
func StripHTML(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.TrimSpace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(strings.ReplaceAll(doc.Text(), "\u00a0", " "))
}

// CountChars counts the characters of the visible text.
func CountChars(html string) int {
	return utf8.RuneCountInString(StripHTML(html))
}

// TruncateText trims text and cuts it to maxLength characters followed by "...".
func TruncateText(text string, maxLength int) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= maxLength {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}

// Preview picks a one-line label: the title, else the start of the body, else fallback.
func Preview(title, html string, maxLength int, fallback string) string {
	if title != "" {
		return title
	}
	if text := TruncateText(StripHTML(html), maxLength); text != "" {
		return text
	}
	return fallback
}

func HTMLToMarkdown(html string) (string, error) {
	return markdown.ConvertString(html)
}

var nonSlug = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// MarkdownFilename slugs the first 30 characters of the text, falling back to id.
func MarkdownFilename(html, id string) string {
	text := []rune(StripHTML(html))
	if len(text) > 30 {
		text = text[:30]
	}
	slug := strings.ToLower(strings.Trim(nonSlug.ReplaceAllString(string(text), "-"), "-"))
	if slug == "" {
		slug = id
	}
	return slug + ".md"
}

// FormatDate renders epoch milliseconds like "10 March 2025".
func FormatDate(millis int64, loc *time.Location) string {
	return time.UnixMilli(millis).In(loc).Format("2 January 2006")
}

// FormatWeekRange renders a Monday-started week like "Mar 10 - 16, 2025"
// or "Mar 31 - Apr 6, 2025".
func FormatWeekRange(weekStart time.Time) string {
	weekEnd := weekStart.AddDate(0, 0, 6)
	if weekStart.Month() == weekEnd.Month() {
		return weekStart.Format("Jan 2") + " - " + weekEnd.Format("2, ") + weekStart.Format("2006")
	}
	return weekStart.Format("Jan 2") + " - " + weekEnd.Format("Jan 2") + ", " + weekStart.Format("2006")
}

// FormatNumber groups the digits of n by thousands: 1234567 is "1,234,567".
func FormatNumber(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

const markdownV2Special = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
