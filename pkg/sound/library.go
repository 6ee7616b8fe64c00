// Package sound manages the on-disk mp3 library: lookup, aliases, fuzzy
// search, uploads and deletions.
package sound

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/glitchlabs/glitchbot/pkg/store"
)

const (
	aliasesDoc    = "sound_aliases"
	maxCandidates = 5
)

var (
	ErrNotFound      = fmt.Errorf("no such sound")
	ErrEmptyLibrary  = fmt.Errorf("sound library is empty")
	ErrInvalidAudio  = fmt.Errorf("file is not valid mp3, ogg or wav audio")
	ErrAlreadyExists = fmt.Errorf("sound already exists")
)

type Library struct {
	dir           string
	store         *store.Store
	minSimilarity float64
	mu            sync.Mutex
}

// Match pairs a resolved sound name with its file path.
type Match struct {
	Name string
	Path string
}

func NewLibrary(dir string, st *store.Store, minSimilarity float64) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sounds directory: %w", err)
	}
	return &Library{dir: dir, store: st, minSimilarity: minSimilarity}, nil
}

// Dict maps every sound name to its file path.
func (l *Library) Dict() map[string]string {
	out := map[string]string{}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mp3") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".mp3")
		out[name] = filepath.Join(l.dir, e.Name())
	}
	return out
}

// List returns every sound name, alphabetically.
func (l *Library) List() []string {
	dict := l.Dict()
	names := make([]string, 0, len(dict))
	for name := range dict {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Library) aliasDict() map[string]string {
	aliases := map[string]string{}
	l.store.Load(aliasesDoc, &aliases)
	return aliases
}

// Resolve maps a sound name or alias to its canonical name and path.
func (l *Library) Resolve(name string) (Match, error) {
	dict := l.Dict()
	if path, ok := dict[name]; ok {
		return Match{Name: name, Path: path}, nil
	}
	if real, ok := l.aliasDict()[name]; ok {
		if path, ok := dict[real]; ok {
			return Match{Name: real, Path: path}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether name is a sound or an alias.
func (l *Library) Exists(name string) bool {
	_, err := l.Resolve(name)
	return err == nil
}

// Random picks a random sound from the library.
func (l *Library) Random(rng *rand.Rand) (Match, error) {
	names := l.List()
	if len(names) == 0 {
		return Match{}, ErrEmptyLibrary
	}
	name := names[rng.Intn(len(names))]
	return l.Resolve(name)
}

// Candidates resolves a search term to matching sounds. An exact name or
// alias match wins outright; otherwise fuzzy matches are returned, unless
// the term is so broad it matches too many sounds.
func (l *Library) Candidates(search string) []Match {
	if m, err := l.Resolve(search); err == nil {
		return []Match{m}
	}

	names := l.Search(search)
	seen := map[string]bool{}
	var out []Match
	for _, name := range names {
		m, err := l.Resolve(name)
		if err != nil || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		out = append(out, m)
	}
	if len(out) > maxCandidates {
		return nil
	}
	return out
}

// Search lists sound names and aliases that contain the search string or
// sit within the configured similarity threshold of it.
func (l *Library) Search(search string) []string {
	aliases := l.aliasDict()
	var results []string

	for _, name := range l.List() {
		for _, candidate := range append([]string{name}, l.aliasesFor(name, aliases)...) {
			if strings.Contains(candidate, search) {
				results = append(results, candidate)
				break
			}
			if l.minSimilarity >= 1.0 || len(search) > len(candidate) {
				continue
			}
			if similarity(search, candidate) >= l.minSimilarity {
				results = append(results, candidate)
				break
			}
		}
	}
	sort.Strings(results)
	return results
}

func similarity(a, b string) float64 {
	longer := max(len(a), len(b))
	if longer == 0 {
		return 1.0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return float64(longer-distance) / float64(longer)
}

func (l *Library) aliasesFor(soundName string, aliases map[string]string) []string {
	var out []string
	for alias, real := range aliases {
		if real == soundName {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// Aliases lists every other name for a sound or alias, canonical name first
// when the input itself is an alias.
func (l *Library) Aliases(name string) []string {
	aliases := l.aliasDict()

	real := name
	var out []string
	if r, ok := aliases[name]; ok {
		real = r
		out = append(out, real)
	}
	for alias, target := range aliases {
		if target == real && alias != name {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// AddAlias points a new alias at an existing sound or alias.
func (l *Library) AddAlias(newAlias, soundName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.Exists(soundName) {
		return fmt.Errorf("%w: %s", ErrNotFound, soundName)
	}
	if _, ok := l.Dict()[newAlias]; ok {
		return fmt.Errorf("%w: there is already a sound called %q", ErrAlreadyExists, newAlias)
	}

	aliases := map[string]string{}
	return l.store.Update(aliasesDoc, &aliases, func() (bool, error) {
		if target, ok := aliases[newAlias]; ok {
			return false, fmt.Errorf("%w: %q is already an alias for %q", ErrAlreadyExists, newAlias, target)
		}
		if target, ok := aliases[soundName]; ok {
			aliases[newAlias] = target
		} else {
			aliases[newAlias] = soundName
		}
		return true, nil
	})
}

// RemoveAlias deletes an alias, returning the sound it pointed at.
func (l *Library) RemoveAlias(alias string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var target string
	aliases := map[string]string{}
	err := l.store.Update(aliasesDoc, &aliases, func() (bool, error) {
		t, ok := aliases[alias]
		if !ok {
			return false, fmt.Errorf("%w: %s is not an alias", ErrNotFound, alias)
		}
		target = t
		delete(aliases, alias)
		return true, nil
	})
	return target, err
}

// Save writes new audio into the library after validating the format.
func (l *Library) Save(name string, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !IsValidAudio(data) {
		return ErrInvalidAudio
	}
	if l.Exists(name) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	return os.WriteFile(filepath.Join(l.dir, name+".mp3"), data, 0644)
}

// AdjustVolume re-encodes a sound with an ffmpeg gain filter applied. The
// adjusted file replaces the original only when ffmpeg succeeds.
func (l *Library) AdjustVolume(ctx context.Context, name string, decibels float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, ok := l.Dict()[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	tmp := path + ".adjusted.mp3"
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", path,
		"-af", fmt.Sprintf("volume=%gdB", decibels), tmp)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ffmpeg volume adjust failed: %w: %s", err, bytes.TrimSpace(out))
	}
	return os.Rename(tmp, path)
}

// Delete removes a sound file by its canonical name.
func (l *Library) Delete(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, ok := l.Dict()[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return os.Remove(path)
}

// IsValidAudio sniffs the payload for an mp3, ogg or wav signature.
func IsValidAudio(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return true
	case data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return true // raw mpeg frame sync
	case bytes.HasPrefix(data, []byte("OggS")):
		return true
	case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return true
	}
	return false
}
