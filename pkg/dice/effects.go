package dice

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/store"
)

const effectsDoc = "active_effects"

// Effects draws random wild-magic style effects from a plain text list
// (one effect per line) and remembers which effects each user has active.
type Effects struct {
	list  []string
	store *store.Store
}

var ErrNoEffectsList = fmt.Errorf("no effects list installed")

func LoadEffects(listPath string, st *store.Store) (*Effects, error) {
	e := &Effects{store: st}

	data, err := os.ReadFile(listPath)
	if err != nil {
		if os.IsNotExist(err) {
			return e, nil
		}
		return nil, fmt.Errorf("failed to read effects list: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			e.list = append(e.list, line)
		}
	}
	return e, nil
}

// Draw picks a random effect and records it for the user.
func (e *Effects) Draw(rng *rand.Rand, userName string) (string, error) {
	if len(e.list) == 0 {
		return "", ErrNoEffectsList
	}
	effect := e.list[rng.Intn(len(e.list))]

	active := map[string][]string{}
	err := e.store.Update(effectsDoc, &active, func() (bool, error) {
		active[userName] = append(active[userName], effect)
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return effect, nil
}

// Active lists the effects currently recorded for the user.
func (e *Effects) Active(userName string) ([]string, error) {
	active := map[string][]string{}
	if err := e.store.Load(effectsDoc, &active); err != nil {
		return nil, err
	}
	return active[userName], nil
}

// Reset clears the user's active effects.
func (e *Effects) Reset(userName string) error {
	active := map[string][]string{}
	return e.store.Update(effectsDoc, &active, func() (bool, error) {
		if _, ok := active[userName]; !ok {
			return false, nil
		}
		delete(active, userName)
		return true, nil
	})
}
