// Package commands handles slash command parsing for the astrin chat view.
package commands

import (
	"strings"
)

// Command interface for all command types
type Command interface {
	Type() string
}

// Help returns help text
type Help struct{}

func (Help) Type() string { return "help" }

// Export writes the conversation to a Markdown file. An empty Path means the
// default file name in the working directory.
type Export struct {
	Path string
}

func (Export) Type() string { return "export" }

// Back leaves the chat and returns to the home menu
type Back struct{}

func (Back) Type() string { return "back" }

// Unknown is a slash command nobody handles
type Unknown struct {
	Name string
}

func (Unknown) Type() string { return "unknown" }

// Parse parses user input and returns the appropriate Command. It reports
// false when the input is not a slash command and should be sent as a chat
// message instead.
func Parse(input string) (Command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil, false
	}

	// Split into command and arguments
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/?":
		return Help{}, true
	case "/export":
		return Export{Path: strings.Join(args, " ")}, true
	case "/back", "/home":
		return Back{}, true
	default:
		return Unknown{Name: cmd}, true
	}
}

// HelpText returns the help text for all available commands.
func HelpText() string {
	return `Available commands:
  /help           - Show this help
  /export [path]  - Save the conversation as Markdown
  /back           - Return to the home menu`
}
