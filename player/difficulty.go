package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty selects how the computer opponent picks its moves.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
	Full
)

var difficultyNames = map[Difficulty]string{
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
	Full:   "full",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty accepts the names printed by String, case-insensitively.
// "stockfish" is kept as an alias of full strength.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "stockfish" {
		return Full, nil
	}
	for d, name := range difficultyNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if _, ok := difficultyNames[d]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Limits are the strength settings handed to the primary engine.
type Limits struct {
	SkillLevel int // 0..20
	MoveTime   time.Duration
}

// Limits returns the engine settings for d. Easy never consults an engine
// and gets the zero value.
func (d Difficulty) Limits() Limits {
	switch d {
	case Medium:
		return Limits{SkillLevel: 5, MoveTime: 100 * time.Millisecond}
	case Hard:
		return Limits{SkillLevel: 15, MoveTime: 500 * time.Millisecond}
	case Full:
		return Limits{SkillLevel: 20, MoveTime: time.Second}
	}
	return Limits{}
}
