// Package catalog holds the read-only exercise and meal reference data the plan generator draws from.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed data/*.json
var embeddedData embed.FS

const (
	exercisesFile = "exercises.json"
	mealsFile     = "meals.json"
)

type ExerciseEntry struct {
	Name            string   `json:"name"`
	Tags            []string `json:"tags"`
	Sets            int      `json:"sets,omitempty"`
	Reps            int      `json:"reps,omitempty"`
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	Image           string   `json:"image,omitempty"`
}

type MealEntry struct {
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
	Calories int      `json:"calories,omitempty"`
	Protein  int      `json:"protein,omitempty"`
	Carbs    int      `json:"carbs,omitempty"`
	Fats     int      `json:"fats,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// Catalog is immutable once loaded, and thus safe for concurrent reads.
type Catalog struct {
	exercises []ExerciseEntry
	meals     []MealEntry
}

func New(exercises []ExerciseEntry, meals []MealEntry) *Catalog {
	return &Catalog{
		exercises: exercises,
		meals:     meals,
	}
}

// Load reads exercises.json and meals.json from dir.
// An empty dir loads the catalog embedded in the binary.
func Load(dir string) (*Catalog, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embeddedData, "data")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(filepath.Clean(dir))
	}

	var exercises []ExerciseEntry
	if err := readJSON(fsys, exercisesFile, &exercises); err != nil {
		return nil, err
	}
	for i, e := range exercises {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%s: entry %d has empty name", exercisesFile, i)
		}
	}

	var meals []MealEntry
	if err := readJSON(fsys, mealsFile, &meals); err != nil {
		return nil, err
	}
	for i, m := range meals {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("%s: entry %d has empty name", mealsFile, i)
		}
	}

	log.Debugf("catalog loaded: %d exercises, %d meals", len(exercises), len(meals))
	return New(exercises, meals), nil
}

func readJSON(fsys fs.FS, name string, v any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Exercises returns the exercises carrying at least one of tags, or all of them when no tags are given.
// The result is a fresh slice, callers may reorder it.
func (c *Catalog) Exercises(tags ...string) []ExerciseEntry {
	filtered := make([]ExerciseEntry, 0, len(c.exercises))
	for _, e := range c.exercises {
		if len(tags) == 0 || hasAnyTag(e.Tags, tags) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Meals works like Exercises, for meals.
func (c *Catalog) Meals(tags ...string) []MealEntry {
	filtered := make([]MealEntry, 0, len(c.meals))
	for _, m := range c.meals {
		if len(tags) == 0 || hasAnyTag(m.Tags, tags) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func hasAnyTag(entryTags, wanted []string) bool {
	for _, t := range entryTags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}
