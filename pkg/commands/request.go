package commands

import "strings"

// Request is one command invocation, built by a platform adapter. It is
// read-only during handling and discarded afterwards.
type Request struct {
	Platform    string
	SenderID    string
	SenderName  string
	ChatID      string
	Text        string   // the full raw message text
	Args        []string // tokens after the command name
	Attachments []string // downloaded media paths
	Private     bool
	Metadata    map[string]string
}

// Meta reads an adapter-provided metadata value ("guild_id",
// "voice_channel_id", "can_send_voice").
func (r Request) Meta(key string) string {
	return r.Metadata[key]
}

// ArgString returns the arguments re-joined as one string.
func (r Request) ArgString() string {
	return strings.Join(r.Args, " ")
}

// CanPlayAudio reports whether the caller can receive live voice playback:
// only on Discord, and only when they sit in a voice channel.
func (r Request) CanPlayAudio() bool {
	return r.Platform == "discord" && r.Meta("voice_channel_id") != ""
}

// CanSendVoice reports whether the chat accepts voice messages.
func (r Request) CanSendVoice() bool {
	return r.Meta("can_send_voice") == "true"
}
