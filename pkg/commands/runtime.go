package commands

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/chat"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/dice"
	"github.com/glitchlabs/glitchbot/pkg/sound"
	"github.com/glitchlabs/glitchbot/pkg/store"
	"github.com/glitchlabs/glitchbot/pkg/store/stats"
	"github.com/glitchlabs/glitchbot/pkg/trivia"
)

// VoicePlayer drives Discord voice playback. Nil on a runtime means voice
// is unavailable (Discord disabled).
type VoicePlayer interface {
	Play(ctx context.Context, guildID, channelID, source string) error
	Stop(guildID string) bool
	Pause(guildID string) (bool, error)
	Join(guildID, channelID string) error
	Leave(guildID string) error
	Connected(guildID string) bool
}

// Runtime bundles the shared services handlers need. It travels on the
// context so handlers stay plain functions.
type Runtime struct {
	Config     *config.Config
	ConfigPath string
	Store      *store.Store
	Stats      *stats.Store
	Sounds     *sound.Library
	Chat       *chat.Service
	TTS        *chat.TTSClient
	Markov     chat.Chain
	Trivia     *trivia.Client
	Effects    *dice.Effects
	Voice      VoicePlayer
	Registry   *Registry
	DataDir    string
	Version    string
	StartedAt  time.Time
	// Restart asks the process supervisor for a clean restart.
	Restart func()

	markovMu sync.RWMutex
}

// MarkovChain returns the current wisdom chain. /buildmarkov swaps the
// chain while other handlers read it, hence the lock.
func (rt *Runtime) MarkovChain() chat.Chain {
	rt.markovMu.RLock()
	defer rt.markovMu.RUnlock()
	return rt.Markov
}

func (rt *Runtime) SetMarkov(c chat.Chain) {
	rt.markovMu.Lock()
	defer rt.markovMu.Unlock()
	rt.Markov = c
}

type runtimeKey struct{}

func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func RuntimeFrom(ctx context.Context) (*Runtime, bool) {
	rt, ok := ctx.Value(runtimeKey{}).(*Runtime)
	return rt, ok
}

// newRNG hands each call site its own generator; rand.Rand is not safe for
// concurrent use across handler goroutines.
func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}
