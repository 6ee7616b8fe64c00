package chat

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// nullToken marks both the start of a message and its end in the chain.
const nullToken = "NULL_TOKEN"

// Chain maps each token to its weighted successors. Weights are
// probabilities that sum to 1 per token.
type Chain map[string]map[string]float64

var ErrEmptyChain = fmt.Errorf("markov chain is empty")

// LoadChain reads a saved chain. A missing file is reported as an error
// (wrapping fs.ErrNotExist) so callers can fall back to rebuilding.
func LoadChain(path string) (Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markov chain: %w", err)
	}
	var c Chain
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse markov chain: %w", err)
	}
	return c, nil
}

func (c Chain) Save(path string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Generate walks the chain from the start token until it terminates,
// rejecting walks shorter than minWords and cutting off at maxWords.
func (c Chain) Generate(rng *rand.Rand, minWords, maxWords int) (string, error) {
	if len(c) == 0 || len(c[nullToken]) == 0 {
		return "", ErrEmptyChain
	}
	if minWords > maxWords {
		return "", fmt.Errorf("markov minimum length %d exceeds maximum %d", minWords, maxWords)
	}

	var tokens []string
	for attempts := 0; attempts < 1000; attempts++ {
		prev := nullToken
		if len(tokens) > 0 {
			prev = tokens[len(tokens)-1]
		}

		next, ok := c.pick(rng, prev)
		if !ok {
			break
		}
		if next == nullToken {
			if len(tokens) < minWords {
				tokens = tokens[:0]
				continue
			}
			break
		}

		tokens = append(tokens, next)
		if len(tokens) >= maxWords {
			break
		}
	}

	if len(tokens) == 0 {
		return "", ErrEmptyChain
	}
	out := strings.Join(tokens, " ")
	return strings.ToUpper(out[:1]) + out[1:], nil
}

func (c Chain) pick(rng *rand.Rand, token string) (string, bool) {
	successors := c[token]
	if len(successors) == 0 {
		return "", false
	}
	target := rng.Float64()
	var cumulative float64
	var last string
	for next, weight := range successors {
		cumulative += weight
		last = next
		if target < cumulative {
			return next, true
		}
	}
	// Float rounding can leave the sum a hair under 1.
	return last, true
}

// BuildChain constructs a weighted chain from raw messages.
func BuildChain(messages []string) Chain {
	counts := map[string]map[string]int{}
	bump := func(from, to string) {
		if counts[from] == nil {
			counts[from] = map[string]int{}
		}
		counts[from][to]++
	}

	for _, message := range messages {
		var tokens []string
		for _, raw := range strings.Fields(message) {
			if t := cleanToken(raw); t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		bump(nullToken, tokens[0])
		for i, token := range tokens {
			if i+1 < len(tokens) {
				bump(token, tokens[i+1])
			} else {
				bump(token, nullToken)
			}
		}
	}

	chain := Chain{}
	for token, successors := range counts {
		total := 0
		for _, n := range successors {
			total += n
		}
		weights := map[string]float64{}
		for next, n := range successors {
			weights[next] = float64(n) / float64(total)
		}
		chain[token] = weights
	}
	return chain
}

// cleanToken strips unbalanced paired characters from the token edges.
func cleanToken(token string) string {
	pairs := [][2]string{{"(", ")"}, {"[", "]"}, {`"`, `"`}, {"{", "}"}}
	if strings.HasPrefix(token, ":") || strings.HasSuffix(token, ":") {
		return token
	}
	for _, pair := range pairs {
		if strings.HasPrefix(token, pair[0]) && !strings.HasSuffix(token, pair[1]) {
			token = token[len(pair[0]):]
		}
		if strings.HasSuffix(token, pair[1]) && !strings.HasPrefix(token, pair[0]) {
			token = token[:len(token)-len(pair[1])]
		}
	}
	return token
}
