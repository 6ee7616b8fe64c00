package commands

import (
	"fmt"

	"github.com/glitchlabs/glitchbot/pkg/bus"
)

// Response is what a handler hands back: ordered parts that the adapter
// sends in sequence, plus an optional memory exchange for the GPT context.
type Response struct {
	Parts []bus.Part

	// Record asks the router to remember this exchange. RecordUser holds
	// the caller's line as the memory should phrase it; RecordBot defaults
	// to the first text part when empty.
	Record     bool
	RecordUser string
	RecordBot  string
}

func Text(format string, args ...any) Response {
	r := Response{}
	r.AddText(format, args...)
	return r
}

func Audio(path string, temp bool) Response {
	r := Response{}
	r.AddAudio(path, temp)
	return r
}

func File(path string, temp bool) Response {
	r := Response{}
	r.AddFile(path, temp)
	return r
}

func (r *Response) AddText(format string, args ...any) *Response {
	r.Parts = append(r.Parts, bus.Part{Kind: bus.PartText, Text: fmt.Sprintf(format, args...)})
	return r
}

func (r *Response) AddAudio(path string, temp bool) *Response {
	r.Parts = append(r.Parts, bus.Part{Kind: bus.PartAudio, Path: path, Temp: temp})
	return r
}

func (r *Response) AddFile(path string, temp bool) *Response {
	r.Parts = append(r.Parts, bus.Part{Kind: bus.PartFile, Path: path, Temp: temp})
	return r
}

// Empty reports whether the response carries nothing to send.
func (r Response) Empty() bool {
	return len(r.Parts) == 0
}

// FirstText returns the first text part, or "".
func (r Response) FirstText() string {
	for _, p := range r.Parts {
		if p.Kind == bus.PartText {
			return p.Text
		}
	}
	return ""
}

// truncateText cuts every text part down to the configured maximum. The
// platform limit splitting happens later, in the adapters.
func (r *Response) truncateText(maxLen int) {
	if maxLen <= 0 {
		return
	}
	for i, p := range r.Parts {
		if p.Kind != bus.PartText {
			continue
		}
		runes := []rune(p.Text)
		if len(runes) > maxLen {
			r.Parts[i].Text = string(runes[:maxLen])
		}
	}
}
