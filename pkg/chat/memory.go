package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const memoryDoc = "gpt_memory"

// Recall returns the conversation window sent along with GPT requests,
// trimmed to the configured memory size.
func (s *Service) Recall() []Message {
	var memory []Message
	if err := s.store.Load(memoryDoc, &memory); err != nil {
		return nil
	}
	size := s.cfg.Chat.MemorySize
	if size > 0 && len(memory) > size {
		memory = memory[len(memory)-size:]
	}
	return memory
}

// FullMemory returns everything remembered, without the recall window cut.
func (s *Service) FullMemory() []Message {
	var memory []Message
	s.store.Load(memoryDoc, &memory)
	return memory
}

// Remember appends a user/assistant exchange. Either side may be empty,
// which records only the other.
func (s *Service) Remember(userPrompt, botReply string) error {
	var memory []Message
	return s.store.Update(memoryDoc, &memory, func() (bool, error) {
		if userPrompt != "" {
			memory = append(memory, Message{Role: "user", Content: userPrompt})
		}
		if botReply != "" {
			memory = append(memory, Message{Role: "assistant", Content: botReply})
		}

		// Keep a generous on-disk buffer; the recall cut happens on read.
		limit := s.cfg.Chat.MemorySize * 4
		if limit > 0 && len(memory) > limit {
			memory = memory[len(memory)-limit:]
		}
		return true, nil
	})
}

// Forget wipes the conversation memory.
func (s *Service) Forget() error {
	return s.store.Save(memoryDoc, []Message{})
}

// LastBotMessage returns the most recent assistant line from memory.
func (s *Service) LastBotMessage() (string, bool) {
	memory := s.FullMemory()
	for i := len(memory) - 1; i >= 0; i-- {
		if memory[i].Role == "assistant" {
			return memory[i].Content, true
		}
	}
	return "", false
}

// Responses reads the canned reply list, one line per response.
func (s *Service) Responses() []string {
	data, err := os.ReadFile(s.responseListPath())
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// AddResponse appends a line to the canned reply list.
func (s *Service) AddResponse(text string) error {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return fmt.Errorf("response text is empty")
	}
	f, err := os.OpenFile(s.responseListPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(text + "\n")
	return err
}

func (s *Service) responseListPath() string {
	return filepath.Join(s.dataDir, "response_list.txt")
}
