package utils

import "strings"

// Truncate returns s cut down to at most maxLen runes, with "..." appended
// when anything was dropped.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SplitMessage breaks content into chunks of at most limit characters,
// preferring newline and space boundaries and keeping ``` code blocks
// intact where it can.
func SplitMessage(content string, limit int) []string {
	var chunks []string

	content = strings.TrimSpace(content)
	for len(content) > 0 {
		if len(content) <= limit {
			chunks = append(chunks, content)
			break
		}

		msgEnd := findLastBoundary(content[:limit])
		if msgEnd <= 0 {
			msgEnd = limit
		}

		// A chunk ending inside a code block renders badly on both
		// platforms. Extend to the closing fence when it is near, else
		// split before the block opens.
		if openIdx := lastUnclosedFence(content[:msgEnd]); openIdx >= 0 {
			extended := limit + 500
			if len(content) <= extended {
				msgEnd = len(content)
			} else if closeIdx := nextClosingFence(content, msgEnd); closeIdx > 0 && closeIdx <= extended {
				msgEnd = closeIdx
			} else {
				if before := findLastBoundary(content[:openIdx]); before > 0 {
					msgEnd = before
				} else {
					msgEnd = openIdx
				}
			}
		}

		if msgEnd <= 0 {
			msgEnd = limit
		}

		if chunk := strings.TrimSpace(content[:msgEnd]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		content = strings.TrimSpace(content[msgEnd:])
	}

	return chunks
}

// findLastBoundary looks for a natural split point near the end of s: a
// newline within the last 200 bytes, then a space within the last 100.
func findLastBoundary(s string) int {
	if i := lastIndexWithin(s, 200, '\n'); i > 0 {
		return i
	}
	return lastIndexWithin(s, 100, ' ', '\t')
}

func lastIndexWithin(s string, window int, targets ...byte) int {
	start := len(s) - window
	if start < 0 {
		start = 0
	}
	for i := len(s) - 1; i >= start; i-- {
		for _, t := range targets {
			if s[i] == t {
				return i
			}
		}
	}
	return -1
}

// lastUnclosedFence returns the position of the last ``` that opens a code
// block with no matching close, or -1 when every block is closed.
func lastUnclosedFence(s string) int {
	count := 0
	lastOpen := -1
	for i := 0; i+2 < len(s); i++ {
		if s[i] == '`' && s[i+1] == '`' && s[i+2] == '`' {
			if count%2 == 0 {
				lastOpen = i
			}
			count++
			i += 2
		}
	}
	if count%2 == 1 {
		return lastOpen
	}
	return -1
}

// nextClosingFence returns the position just past the next ``` at or after
// start, or -1 when there is none.
func nextClosingFence(s string, start int) int {
	for i := start; i+2 < len(s); i++ {
		if s[i] == '`' && s[i+1] == '`' && s[i+2] == '`' {
			return i + 3
		}
	}
	return -1
}
