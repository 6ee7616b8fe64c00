// Package dice parses and rolls tabletop dice expressions ("2d6+1") and
// generates stat blocks for a few game systems.
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

type Roll struct {
	Count    int
	Faces    int
	Modifier int
}

var (
	ErrBadExpression = fmt.Errorf("invalid dice expression")

	rollPattern = regexp.MustCompile(`^(\d*)[dD](\d+)([+-]\d+)?$`)
)

// Parse accepts expressions like "2d6", "d20", "3d8+2" or "1d10-1".
// Args are joined first so "2d6 + 1" parses the same as "2d6+1".
func Parse(args []string) (Roll, error) {
	expr := strings.ReplaceAll(strings.Join(args, ""), " ", "")
	if expr == "" {
		return Roll{}, ErrBadExpression
	}

	m := rollPattern.FindStringSubmatch(expr)
	if m == nil {
		return Roll{}, ErrBadExpression
	}

	r := Roll{Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Roll{}, ErrBadExpression
		}
		r.Count = n
	}

	faces, err := strconv.Atoi(m[2])
	if err != nil {
		return Roll{}, ErrBadExpression
	}
	r.Faces = faces

	if m[3] != "" {
		mod, err := strconv.Atoi(m[3])
		if err != nil {
			return Roll{}, ErrBadExpression
		}
		r.Modifier = mod
	}

	if r.Count < 1 || r.Faces < 1 {
		return Roll{}, ErrBadExpression
	}
	return r, nil
}

func (r Roll) String() string {
	s := fmt.Sprintf("%dd%d", r.Count, r.Faces)
	if r.Modifier > 0 {
		s += fmt.Sprintf("+%d", r.Modifier)
	} else if r.Modifier < 0 {
		s += strconv.Itoa(r.Modifier)
	}
	return s
}

// Do rolls the dice and returns the individual rolls plus the modified total.
func (r Roll) Do(rng *rand.Rand) ([]int, int) {
	rolls := make([]int, r.Count)
	total := r.Modifier
	for i := range rolls {
		rolls[i] = rng.Intn(r.Faces) + 1
		total += rolls[i]
	}
	return rolls, total
}

// StatRoll produces a rolled stat block for the named game system.
func StatRoll(rng *rand.Rand, game string) (string, error) {
	switch strings.ToLower(game) {
	case "dnd":
		return dndRoll(rng), nil
	case "coc":
		return cocRoll(rng), nil
	case "mythras":
		return mythrasRoll(rng), nil
	default:
		return "", fmt.Errorf("unknown game system %q (want dnd, coc or mythras)", game)
	}
}

// dndRoll uses 4d6 drop lowest per stat.
func dndRoll(rng *rand.Rand) string {
	var b strings.Builder
	for _, stat := range []string{"STR", "DEX", "CON", "INT", "WIS", "CHA"} {
		total, lowest := 0, 7
		for i := 0; i < 4; i++ {
			d := rng.Intn(6) + 1
			total += d
			if d < lowest {
				lowest = d
			}
		}
		fmt.Fprintf(&b, "%s: %d\n", stat, total-lowest)
	}
	return strings.TrimRight(b.String(), "\n")
}

func cocRoll(rng *rand.Rand) string {
	var b strings.Builder
	for _, stat := range []string{"STR", "CON", "DEX", "APP", "POW"} {
		sum := rng.Intn(6) + rng.Intn(6) + rng.Intn(6) + 3
		fmt.Fprintf(&b, "%s: %d\n", stat, 5*sum)
	}
	for _, stat := range []string{"SIZ", "INT", "EDU", "LUC"} {
		sum := rng.Intn(6) + rng.Intn(6) + 2 + 6
		fmt.Fprintf(&b, "%s: %d\n", stat, 5*sum)
	}
	fmt.Fprintf(&b, "Bonus: %d", rng.Intn(10)+1)
	return b.String()
}

func mythrasRoll(rng *rand.Rand) string {
	var b strings.Builder
	for _, stat := range []string{"STR", "CON", "DEX", "POW", "CHA"} {
		fmt.Fprintf(&b, "%s: %d\n", stat, rng.Intn(6)+rng.Intn(6)+rng.Intn(6)+3)
	}
	for _, stat := range []string{"INT", "SIZ"} {
		fmt.Fprintf(&b, "%s: %d\n", stat, rng.Intn(6)+rng.Intn(6)+2+6)
	}
	return strings.TrimRight(b.String(), "\n")
}
