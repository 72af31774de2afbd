package activity

import (
	"strings"

	"github.com/NVB20/whatsapp-automation-mk-II/internal/domain/roster"
)

// Classifier turns raw chat messages into activity events using the
// configured keyword lists. A message that matches a practice keyword is a
// practice submission; otherwise a message keyword makes it a plain
// message; otherwise it is not an activity at all.
type Classifier struct {
	practiceWords []string
	messageWords  []string
}

func NewClassifier(practiceWords, messageWords []string) *Classifier {
	return &Classifier{
		practiceWords: practiceWords,
		messageWords:  messageWords,
	}
}

// Classify enriches msg with the sender's directory entry and classifies
// its text. The second return value is false when the message matches no
// keyword list and should be ignored.
func (c *Classifier) Classify(msg RawMessage, directory *roster.Roster) (Event, bool) {
	var kind Kind
	switch {
	case containsKeyword(msg.Text, c.practiceWords):
		kind = KindPractice
	case containsKeyword(msg.Text, c.messageWords):
		kind = KindMessage
	default:
		return Event{}, false
	}

	info := resolveSender(msg.Sender, directory)
	return Event{
		PhoneNumber: info.PhoneNumber,
		Name:        info.Name,
		Lesson:      info.Lesson,
		Teacher:     info.Teacher,
		Kind:        kind,
		OccurredAt:  msg.Timestamp,
	}, true
}

// resolveSender looks the sender up in the directory; senders not on the
// roster still produce an event, with "Unknown" placeholders, so their
// activity is not silently lost.
func resolveSender(sender string, directory *roster.Roster) roster.Student {
	if info, ok := directory.LookupSender(sender); ok {
		return info
	}

	phone := roster.CleanPhoneNumber(sender)
	info := roster.Student{
		PhoneNumber: phone,
		Name:        sender,
		Lesson:      "Unknown",
		Teacher:     "Unknown",
	}
	if phone == "" {
		info.PhoneNumber = sender
	} else {
		info.Name = "Unknown"
	}
	return info
}

func containsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
