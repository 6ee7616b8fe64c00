package store

import (
	"fmt"
	"slices"
)

const whitelistDoc = "whitelist"

type whitelistFile map[string][]string

var (
	ErrAlreadyWhitelisted = fmt.Errorf("chat is already whitelisted")
	ErrNotWhitelisted     = fmt.Errorf("chat is not whitelisted")
)

func (s *Store) IsWhitelisted(platform, chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := whitelistFile{}
	if err := s.loadLocked(whitelistDoc, &f); err != nil {
		return false
	}
	return slices.Contains(f[platform], chatID)
}

func (s *Store) AddWhitelist(platform, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := whitelistFile{}
	if err := s.loadLocked(whitelistDoc, &f); err != nil {
		return err
	}
	if slices.Contains(f[platform], chatID) {
		return ErrAlreadyWhitelisted
	}
	f[platform] = append(f[platform], chatID)
	return s.saveLocked(whitelistDoc, f)
}

func (s *Store) RemoveWhitelist(platform, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := whitelistFile{}
	if err := s.loadLocked(whitelistDoc, &f); err != nil {
		return err
	}
	if !slices.Contains(f[platform], chatID) {
		return ErrNotWhitelisted
	}
	f[platform] = slices.DeleteFunc(f[platform], func(id string) bool { return id == chatID })
	return s.saveLocked(whitelistDoc, f)
}

func (s *Store) Whitelist(platform string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := whitelistFile{}
	if err := s.loadLocked(whitelistDoc, &f); err != nil {
		return nil
	}
	return slices.Clone(f[platform])
}
