package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	gardenSize     = 8
	gardenCells    = gardenSize * gardenSize
	growthInterval = 24 * time.Hour
)

var ErrGardenFull = errors.New("garden is full")

type Stage string

const (
	StageSeed    Stage = "seed"
	StageSapling Stage = "sapling"
	StageMature  Stage = "mature"
)

func (s Stage) next() Stage {
	switch s {
	case StageSeed:
		return StageSapling
	case StageSapling:
		return StageMature
	default:
		return s
	}
}

type Species struct {
	Emoji  string
	Name   string
	Rarity float64
}

// treeSpecies weights add up to 1.
var treeSpecies = []Species{
	{Emoji: "🌴", Name: "Date Palm", Rarity: 0.4},
	{Emoji: "🌿", Name: "Acacia", Rarity: 0.3},
	{Emoji: "🌳", Name: "Ghaf Tree", Rarity: 0.2},
	{Emoji: "🌲", Name: "Juniper", Rarity: 0.1},
}

type PlantedTree struct {
	ID         string    `json:"id"`
	Emoji      string    `json:"emoji"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	Stage      Stage     `json:"stage"`
	PlantedAt  time.Time `json:"plantedAt"`
	LastGrowth time.Time `json:"lastGrowth"`
}

// Garden is the decorative grid view of the user's trees. It lives only in
// local storage and has no server-side counterpart.
type Garden struct {
	Trees []PlantedTree

	rng   *rand.Rand
	newID func() string
}

func newGarden(rng *rand.Rand) *Garden {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &Garden{rng: rng, newID: uuid.NewString}
}

// loadGarden reads the stored garden. Unreadable data yields an empty garden.
func loadGarden(store LocalStore, rng *rand.Rand) *Garden {
	garden := newGarden(rng)
	raw, ok, err := store.Get(keyGarden)
	if err != nil || !ok {
		return garden
	}
	var trees []PlantedTree
	if err := json.Unmarshal([]byte(raw), &trees); err != nil {
		return garden
	}
	garden.Trees = trees
	return garden
}

func (g *Garden) save(store LocalStore) error {
	data, err := json.Marshal(g.Trees)
	if err != nil {
		return fmt.Errorf("encode garden: %w", err)
	}
	return store.Put(keyGarden, string(data))
}

func (g *Garden) occupied() map[int]bool {
	used := make(map[int]bool, len(g.Trees))
	for _, tree := range g.Trees {
		used[tree.Position] = true
	}
	return used
}

// AddTree plants a random species on a random empty cell.
func (g *Garden) AddTree(now time.Time) (PlantedTree, error) {
	used := g.occupied()
	empty := make([]int, 0, gardenCells-len(used))
	for i := 0; i < gardenCells; i++ {
		if !used[i] {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		return PlantedTree{}, ErrGardenFull
	}

	species := pickSpecies(g.rng.Float64())
	tree := PlantedTree{
		ID:         g.newID(),
		Emoji:      species.Emoji,
		Name:       species.Name,
		Position:   empty[g.rng.IntN(len(empty))],
		Stage:      StageSeed,
		PlantedAt:  now,
		LastGrowth: now,
	}
	g.Trees = append(g.Trees, tree)
	return tree, nil
}

func pickSpecies(roll float64) Species {
	cumulative := 0.0
	for _, species := range treeSpecies {
		cumulative += species.Rarity
		if roll <= cumulative {
			return species
		}
	}
	return treeSpecies[len(treeSpecies)-1]
}

// Grow advances every tree whose last growth is more than growthInterval old
// by one stage and returns how many changed.
func (g *Garden) Grow(now time.Time) int {
	grown := 0
	for i := range g.Trees {
		tree := &g.Trees[i]
		if now.Sub(tree.LastGrowth) <= growthInterval {
			continue
		}
		if next := tree.Stage.next(); next != tree.Stage {
			tree.Stage = next
			grown++
		}
		tree.LastGrowth = now
	}
	return grown
}

// Sync plants trees until the garden matches the user's tree count or the
// grid is full.
func (g *Garden) Sync(userTrees int64, now time.Time) int {
	target := userTrees
	if target > gardenCells {
		target = gardenCells
	}
	added := 0
	for int64(len(g.Trees)) < target {
		if _, err := g.AddTree(now); err != nil {
			break
		}
		added++
	}
	return added
}

// Grid lays the trees out row by row; empty cells are nil.
func (g *Garden) Grid() [gardenSize][gardenSize]*PlantedTree {
	var grid [gardenSize][gardenSize]*PlantedTree
	for i := range g.Trees {
		tree := &g.Trees[i]
		if tree.Position < 0 || tree.Position >= gardenCells {
			continue
		}
		grid[tree.Position/gardenSize][tree.Position%gardenSize] = tree
	}
	return grid
}
