package ticket

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
)

// TranscriptInlineLimit is the largest transcript, in characters, submitted
// as an inline message. Larger transcripts go out as an attached document.
// Mirrors the transport's inline-message limit.
const TranscriptInlineLimit = 1900

// RenderTranscript serializes a channel's history into the transcript
// document submitted at closure.
func RenderTranscript(t *domain.Ticket, msgs []gateway.HistoryMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transcript: %s (ticket %s)\n", t.TicketType, t.ID)
	fmt.Fprintf(&b, "Requester: %s | Helpers: %s\n\n", t.RequesterID, strings.Join(t.Helpers, ", "))
	for _, msg := range msgs {
		author := msg.Author
		if author == "" {
			author = msg.AuthorID
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp.UTC().Format("2006-01-02 15:04:05"), author, msg.Text)
	}
	return b.String()
}

// TranscriptFilename builds a stable document name for a ticket transcript.
func TranscriptFilename(t *domain.Ticket) string {
	slug := strings.ToLower(strings.ReplaceAll(t.TicketType, " ", "-"))
	return fmt.Sprintf("transcript-%s-%s.txt", slug, t.ID)
}

// TranscriptFitsInline reports whether the transcript may be sent as a plain
// message instead of a document.
func TranscriptFitsInline(transcript string) bool {
	return utf8.RuneCountInString(transcript) <= TranscriptInlineLimit
}
