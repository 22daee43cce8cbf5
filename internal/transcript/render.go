package transcript

import (
	"fmt"
	"strings"

	"quill/internal/queue"
)

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are
// truncated, not rounded, so 75.5s renders as 00:01:15,500 and 80.2509s as
// 00:01:20,250.
func FormatSRTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, ',')
}

// FormatVTTTimestamp renders seconds as HH:MM:SS.mmm with the same
// truncation rule as SRT.
func FormatVTTTimestamp(seconds float64) string {
	return formatTimestamp(seconds, '.')
}

func formatTimestamp(seconds float64, sep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds * 1000)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, sep, millis)
}

// RenderSRT renders segments as a SubRip subtitle document.
func RenderSRT(segments []queue.Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatSRTTimestamp(segment.StartSeconds), FormatSRTTimestamp(segment.EndSeconds))
		writeCueText(&b, segment)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderVTT renders segments as a WebVTT document.
func RenderVTT(segments []queue.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, segment := range segments {
		fmt.Fprintf(&b, "%s --> %s\n", FormatVTTTimestamp(segment.StartSeconds), FormatVTTTimestamp(segment.EndSeconds))
		writeCueText(&b, segment)
		b.WriteString("\n")
	}
	return b.String()
}

func writeCueText(b *strings.Builder, segment queue.Segment) {
	text := strings.TrimSpace(segment.Text)
	if segment.Speaker != "" {
		fmt.Fprintf(b, "[%s] %s\n", segment.Speaker, text)
		return
	}
	b.WriteString(text)
	b.WriteString("\n")
}
