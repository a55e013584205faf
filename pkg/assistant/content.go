package assistant

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Remote messages carry a list of typed content parts. Only text parts are
// supported here; anything else (images, files) is an unsupported variant
// and is rejected rather than indexed blindly.

// ContentKind tags a content part variant.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentUnsupported
)

// Content is the decoded form of one remote content part.
type Content struct {
	Kind ContentKind
	Text string
}

func decodeContent(part openai.MessageContent) Content {
	if part.Type == "text" && part.Text != nil {
		return Content{Kind: ContentText, Text: part.Text.Value}
	}
	return Content{Kind: ContentUnsupported}
}

// textContent extracts the first text part of a remote message.
func textContent(msg openai.Message) (string, error) {
	for _, part := range msg.Content {
		if c := decodeContent(part); c.Kind == ContentText {
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("message %s has no supported text content", msg.ID)
}
