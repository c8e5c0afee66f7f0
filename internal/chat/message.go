// Package chat implements the conversational assistant session: an
// append-only message log, one outstanding request at a time, and
// best-effort persistence of the log after every successful reply.
package chat

import "time"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Greeting opens every session.
const Greeting = "🌌 Greetings, cosmic explorer! I'm Astrin, your AI companion for all things space and astronomy. " +
	"Ask me anything about planets, stars, galaxies, space missions, or the mysteries of the universe!"

// FallbackNotice replaces the assistant reply when the chat request fails.
const FallbackNotice = "🌌 I'm experiencing some cosmic interference right now. " +
	"My stellar communication systems are temporarily down, but I'll be back online soon! ✨"

// TimestampLayout is the ISO-8601 layout of Message.Timestamp.
const TimestampLayout = time.RFC3339Nano

// Message is one entry of the conversation. Messages are never modified
// after they are appended.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Time parses the timestamp, returning the zero time when it is malformed.
func (m Message) Time() time.Time {
	t, err := time.Parse(TimestampLayout, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// State is a snapshot of a session. Messages is a copy owned by the caller.
type State struct {
	Messages         []Message
	AwaitingResponse bool
}
