package messages

import (
	"TopicBus/internal/core/ports"
	"html"
	"strings"
)

// Builder helps construct SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
	lines  []string
}

// NewBuilder creates a new message builder.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: "HTML",
		},
	}
}

// WithText sets the message text, dropping any lines added so far.
func (b *Builder) WithText(text string) *Builder {
	b.lines = []string{text}
	return b
}

// WithParseMode overrides the default parse mode.
func (b *Builder) WithParseMode(mode string) *Builder {
	b.params.ParseMode = mode
	return b
}

// WithBold appends a bold line. The text is escaped.
func (b *Builder) WithBold(text string) *Builder {
	b.lines = append(b.lines, "<b>"+html.EscapeString(text)+"</b>")
	return b
}

// WithLine appends an escaped plain line.
func (b *Builder) WithLine(text string) *Builder {
	b.lines = append(b.lines, html.EscapeString(text))
	return b
}

// WithField appends a "label: value" line with a bold label.
func (b *Builder) WithField(label, value string) *Builder {
	b.lines = append(b.lines, "<b>"+html.EscapeString(label)+":</b> "+html.EscapeString(value))
	return b
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	params := b.params
	params.Text = strings.Join(b.lines, "\n")
	return params
}
