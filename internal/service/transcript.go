package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codeview-ai/codeview-api/internal/models"
)

// ErrNoTranscriptData indicates a report was requested for a session that has
// no recorded events. A report built from nothing is meaningless, so this is
// surfaced instead of an empty transcript.
var ErrNoTranscriptData = errors.New("no session events to build a transcript from")

const transcriptHeader = "Interview Transcript:\n\n"

// AssembleTranscript folds the ordered session event log into a single
// document for grading. Events are processed in the order given; the caller
// is responsible for chronological ordering and the assembler never re-sorts.
// Event kinds it does not recognise are skipped so that new kinds can be
// recorded before the assembler learns to render them.
func AssembleTranscript(events []models.SessionEvent) (string, error) {
	if len(events) == 0 {
		return "", ErrNoTranscriptData
	}

	var builder strings.Builder
	builder.WriteString(transcriptHeader)

	for _, event := range events {
		switch event.Kind {
		case models.SessionEventKindVoiceTurn:
			var payload models.VoiceTurnPayload
			if err := event.DecodePayload(&payload); err != nil {
				return "", fmt.Errorf("decode voice turn event %d: %w", event.ID, err)
			}
			builder.WriteString("[VOICE] ")
			builder.WriteString(payload.Text)
			builder.WriteString("\n")
		case models.SessionEventKindCodeSubmission:
			var payload models.CodeSubmissionPayload
			if err := event.DecodePayload(&payload); err != nil {
				return "", fmt.Errorf("decode code submission event %d: %w", event.ID, err)
			}
			result := payload.Output
			if result == "" {
				result = payload.Error
			}
			builder.WriteString("[CODE SUBMISSION]\nStatus: ")
			builder.WriteString(payload.Status)
			builder.WriteString("\n---\n")
			builder.WriteString(payload.Code)
			builder.WriteString("\n---\nResult: ")
			builder.WriteString(result)
			builder.WriteString("\n\n")
		}
	}

	return builder.String(), nil
}
