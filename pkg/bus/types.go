package bus

type InboundMessage struct {
	Channel    string            `json:"channel"`
	SenderID   string            `json:"sender_id"`
	SenderName string            `json:"sender_name,omitempty"`
	ChatID     string            `json:"chat_id"`
	Content    string            `json:"content"`
	Media      []string          `json:"media,omitempty"`
	Private    bool              `json:"private,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type PartKind int

const (
	PartText PartKind = iota
	PartAudio
	PartFile
)

// Part is one ordered piece of an outbound message. Audio parts are sent as
// voice messages where the platform supports them; Temp paths are deleted by
// the adapter after the send.
type Part struct {
	Kind PartKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	Path string   `json:"path,omitempty"`
	Temp bool     `json:"temp,omitempty"`
}

type OutboundMessage struct {
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id"`
	Parts   []Part `json:"parts"`
}
