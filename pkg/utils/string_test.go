package utils

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate(short) = %q", got)
	}
	if got := Truncate("a longer sentence", 10); got != "a longe..." {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("héllo wörld", 8); got != "héllo..." {
		t.Fatalf("Truncate unicode = %q", got)
	}
}

func TestSplitMessageShortContent(t *testing.T) {
	chunks := SplitMessage("hello", 100)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	if chunks := SplitMessage("   ", 100); chunks != nil {
		t.Fatalf("expected no chunks for blank content, got %v", chunks)
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	content := strings.Repeat("line one\n", 30)
	chunks := SplitMessage(content, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Fatalf("chunk %d exceeds limit: %d chars", i, len(chunk))
		}
		if strings.HasSuffix(chunk, "lin") || strings.HasSuffix(chunk, "on") {
			t.Fatalf("chunk %d split mid-word: %q", i, chunk)
		}
	}
}

func TestSplitMessageKeepsCodeBlockTogether(t *testing.T) {
	code := "```\n" + strings.Repeat("x := 1\n", 10) + "```"
	content := strings.Repeat("padding text here\n", 5) + code

	chunks := SplitMessage(content, 100)
	for i, chunk := range chunks {
		if strings.Count(chunk, "```")%2 != 0 {
			t.Fatalf("chunk %d has unbalanced code fence: %q", i, chunk)
		}
	}
}

func TestIsAudioFile(t *testing.T) {
	if !IsAudioFile("sound.mp3", "") {
		t.Fatal("mp3 extension should be audio")
	}
	if !IsAudioFile("clip", "audio/ogg") {
		t.Fatal("audio content type should be audio")
	}
	if IsAudioFile("notes.txt", "text/plain") {
		t.Fatal("text file should not be audio")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("../../etc/passwd"); strings.Contains(got, "..") {
		t.Fatalf("traversal not stripped: %q", got)
	}
	if got := SanitizeFilename("normal.mp3"); got != "normal.mp3" {
		t.Fatalf("plain name mangled: %q", got)
	}
}
