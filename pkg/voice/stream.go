package voice

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960 // 20ms at 48kHz
	maxOpusLen = 3840
)

// stream decodes one source through ffmpeg and encodes it to Opus frames.
type stream struct {
	cmd     *exec.Cmd
	pcm     *bufio.Reader
	encoder *gopus.Encoder
	first   []int16
	paused  atomic.Bool
}

// newStream starts ffmpeg and reads the first PCM frame, so a source that
// cannot be decoded fails immediately.
func newStream(ctx context.Context, source string) (*stream, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", source,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"pipe:1")

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	s := &stream{
		cmd:     cmd,
		pcm:     bufio.NewReaderSize(stdout, 16384),
		encoder: encoder,
	}

	first, err := s.readFrame()
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("source produced no audio: %w", err)
	}
	s.first = first
	return s, nil
}

func (s *stream) readFrame() ([]int16, error) {
	frame := make([]int16, frameSize*channels)
	if err := binary.Read(s.pcm, binary.LittleEndian, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *stream) togglePause() bool {
	next := !s.paused.Load()
	s.paused.Store(next)
	return next
}

// run pushes Opus frames onto the voice connection until the source ends or
// the context is cancelled.
func (s *stream) run(ctx context.Context, conn *discordgo.VoiceConnection) error {
	defer func() {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}()

	conn.Speaking(true)
	defer conn.Speaking(false)

	frame := s.first
	s.first = nil
	for {
		if frame == nil {
			var err error
			frame, err = s.readFrame()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("failed to read pcm frame: %w", err)
			}
		}

		for s.paused.Load() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}

		opus, err := s.encoder.Encode(frame, frameSize, maxOpusLen)
		if err != nil {
			return fmt.Errorf("opus encode failed: %w", err)
		}
		frame = nil

		select {
		case conn.OpusSend <- opus:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
