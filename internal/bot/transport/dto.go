package transport

// MessageRequest is one inbound chat turn from the widget.
type MessageRequest struct {
	UserID string `json:"userId" validate:"required,min=1,max=128"`
	Text   string `json:"text" validate:"required,min=1,max=2000"`
}

// Handoff is present when the turn ended with a human-agent handoff.
type Handoff struct {
	Summary string `json:"summary"`
}

// Reply is the bot's answer to one turn. Messages are shown to the visitor in
// order; a degraded turn may carry more than one.
type Reply struct {
	Messages []string `json:"messages"`
	Handoff  *Handoff `json:"handoff,omitempty"`
}
