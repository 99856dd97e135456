// Package trainer runs the guided lessons: tactical puzzles, opening lines
// and basic endgames. Lessons are described in a YAML catalog; the built-in
// one is embedded in the binary.
package trainer

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

var ErrEmptyCatalog = errors.New("catalog has no lessons")

// Puzzle is a position with a forcing line. Solution alternates between the
// learner's moves and the scripted replies, starting with the learner.
type Puzzle struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	FEN         string   `yaml:"fen"`
	Solution    []string `yaml:"solution"`
	Theme       string   `yaml:"theme"`
	Difficulty  int      `yaml:"difficulty"` // 1..5
	Description string   `yaml:"description"`
}

// Opening is a named line from the initial position.
type Opening struct {
	Name        string   `yaml:"name"`
	ECO         string   `yaml:"eco"`
	Moves       []string `yaml:"moves"`
	Description string   `yaml:"description"`
	KeyIdeas    []string `yaml:"key_ideas"`
}

// Endgame is a practice position played against the fallback engine.
type Endgame struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	FEN         string   `yaml:"fen"`
	Goal        string   `yaml:"goal"`
	Hints       []string `yaml:"hints"`
	KeySquares  []string `yaml:"key_squares"`
}

type Catalog struct {
	Puzzles  []Puzzle  `yaml:"puzzles"`
	Openings []Opening `yaml:"openings"`
	Endgames []Endgame `yaml:"endgames"`
}

// LoadCatalog decodes a catalog. Unknown keys are rejected so typos in
// hand-written lessons do not go unnoticed.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(c.Puzzles)+len(c.Openings)+len(c.Endgames) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &c, nil
}

// Builtin returns a fresh copy of the embedded catalog.
func Builtin() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(builtinCatalog))
	if err != nil {
		panic(fmt.Sprintf("trainer: embedded catalog: %v", err))
	}
	return c
}

func (c *Catalog) PuzzlesByTheme(theme string) []Puzzle {
	var out []Puzzle
	for _, p := range c.Puzzles {
		if p.Theme == theme {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) PuzzlesByDifficulty(difficulty int) []Puzzle {
	var out []Puzzle
	for _, p := range c.Puzzles {
		if p.Difficulty == difficulty {
			out = append(out, p)
		}
	}
	return out
}

// Unsolved filters out the puzzles whose IDs are in solved.
func (c *Catalog) Unsolved(solved map[string]bool) []Puzzle {
	var out []Puzzle
	for _, p := range c.Puzzles {
		if !solved[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Themes lists the distinct puzzle themes in sorted order.
func (c *Catalog) Themes() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.Puzzles {
		if !seen[p.Theme] {
			seen[p.Theme] = true
			out = append(out, p.Theme)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Puzzle(id string) (Puzzle, bool) {
	for _, p := range c.Puzzles {
		if p.ID == id {
			return p, true
		}
	}
	return Puzzle{}, false
}

func (c *Catalog) Opening(name string) (Opening, bool) {
	for _, o := range c.Openings {
		if o.Name == name {
			return o, true
		}
	}
	return Opening{}, false
}

func (c *Catalog) Endgame(name string) (Endgame, bool) {
	for _, e := range c.Endgames {
		if e.Name == name {
			return e, true
		}
	}
	return Endgame{}, false
}
