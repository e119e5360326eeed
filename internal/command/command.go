// Package command classifies decoded messages and renders the reply
// each classification earns.
package command

import "strings"

const (
	// Keyword ends a session.  Matched case-insensitively after
	// trimming surrounding whitespace.
	Keyword = "quit"

	// Farewell is sent once in reply to Keyword.
	Farewell = "Goodbye!"

	// EchoPrefix precedes the original message in every echo reply.
	EchoPrefix = "Server received: "
)

// Kind identifies what the session should do with a message.
type Kind int

const (
	Echo Kind = iota
	Terminate
)

func (k Kind) String() string {
	switch k {
	case Terminate:
		return "terminate"
	case Echo:
		return "echo"
	default:
		return "unknown"
	}
}

// Command is the result of classifying one message.  For Echo, Text
// holds the original, untrimmed message.
type Command struct {
	Kind Kind
	Text string
}

// Classify maps text to Terminate when it equals Keyword ignoring case
// and surrounding whitespace, and to Echo otherwise (including empty
// text).
func Classify(text string) Command {
	if strings.EqualFold(strings.TrimSpace(text), Keyword) {
		return Command{Kind: Terminate}
	}
	return Command{Kind: Echo, Text: text}
}

// Reply renders the response payload for c.
func (c Command) Reply() string {
	if c.Kind == Terminate {
		return Farewell
	}
	return EchoPrefix + c.Text
}
