package callsession

import "fmt"

const (
	// AgentName labels agent lines in the transcript.
	AgentName = "Anshika"
	// VisibleTranscriptEntries is how many trailing transcript entries are shown.
	VisibleTranscriptEntries = 5
)

// FormatDuration renders seconds as mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Line renders the entry with its speaker label.
func (e Entry) Line() string {
	if e.Role == "agent" {
		return AgentName + ": " + e.Text
	}
	return "You: " + e.Text
}

// VisibleTranscript returns the trailing entries the widget renders.
func (s Snapshot) VisibleTranscript() []Entry {
	if len(s.Transcript) <= VisibleTranscriptEntries {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-VisibleTranscriptEntries:]
}

// StatusText is the caption under the call button.
func (s Snapshot) StatusText() string {
	switch s.Status {
	case StatusIdle:
		if s.Mode == ModePhone {
			return "Tap to initiate phone call"
		}
		return "Tap to call Shakti AI"
	case StatusConnecting:
		return "Connecting..."
	case StatusCalling:
		return fmt.Sprintf("Calling %s...", s.PhoneNumber)
	case StatusConnected:
		return FormatDuration(s.ElapsedSeconds)
	case StatusEnded:
		return "Call ended"
	default:
		return ""
	}
}
