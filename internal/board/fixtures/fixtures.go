// Package fixtures loads seed data for the board data sources. Seeds may be
// written as JSON, YAML or TOML; every format is normalised to JSON and
// validated against an embedded JSON schema before use.
package fixtures

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/apper-canvas/holodevboard/internal/board/models"
	"github.com/apper-canvas/holodevboard/internal/board/store"
)

//go:embed schema.json
var schemaJSON string

//go:embed default.json
var defaultJSON []byte

var seedSchema = jsonschema.MustCompileString("devboard-seed.json", schemaJSON)

// Default returns the embedded seed.
func Default() (*store.Seed, error) {
	return Parse(defaultJSON, ".json")
}

// Load reads a seed file; the format follows the file extension.
func Load(path string) (*store.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	seed, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return seed, nil
}

// LoadOrDefault loads path, or the embedded seed when path is empty.
func LoadOrDefault(path string) (*store.Seed, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes, validates and normalises a seed document.
func Parse(data []byte, ext string) (*store.Seed, error) {
	var doc interface{}
	switch strings.ToLower(ext) {
	case ".json", "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		var m map[string]interface{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", ext)
	}

	// Round-trip through JSON so every format validates the same way.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalise fixtures: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(normalized, &generic); err != nil {
		return nil, fmt.Errorf("normalise fixtures: %w", err)
	}
	if err := seedSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}

	var seed store.Seed
	dec := json.NewDecoder(bytes.NewReader(normalized))
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	applyDefaults(&seed, time.Now().UTC())
	if err := checkReferences(&seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func applyDefaults(seed *store.Seed, now time.Time) {
	stamp := func(created, updated *time.Time) {
		if created.IsZero() {
			*created = now
		}
		if updated.IsZero() {
			*updated = *created
		}
	}
	for _, b := range seed.Boards {
		if b.Color == "" {
			b.Color = models.DefaultBoardColor
		}
		stamp(&b.CreatedAt, &b.UpdatedAt)
	}
	for _, c := range seed.Columns {
		stamp(&c.CreatedAt, &c.UpdatedAt)
	}
	for _, l := range seed.Labels {
		if l.Color == "" {
			l.Color = models.DefaultLabelColor
		}
		stamp(&l.CreatedAt, &l.UpdatedAt)
	}
	for _, t := range seed.Tasks {
		if t.Priority == "" {
			t.Priority = models.DefaultPriority
		}
		if t.Assignee == "" {
			t.Assignee = models.DefaultAssignee
		}
		if t.LabelIDs == nil {
			t.LabelIDs = []int64{}
		}
		stamp(&t.CreatedAt, &t.UpdatedAt)
	}
}

// checkReferences enforces what the schema cannot: unique ids, foreign keys
// and dense column positions per board.
func checkReferences(seed *store.Seed) error {
	boards := make(map[int64]bool)
	for _, b := range seed.Boards {
		if boards[b.ID] {
			return fmt.Errorf("duplicate board id %d", b.ID)
		}
		boards[b.ID] = true
	}

	columns := make(map[int64]*models.Column)
	positions := make(map[int64][]int)
	for _, c := range seed.Columns {
		if columns[c.ID] != nil {
			return fmt.Errorf("duplicate column id %d", c.ID)
		}
		if !boards[c.BoardID] {
			return fmt.Errorf("column %d references unknown board %d", c.ID, c.BoardID)
		}
		columns[c.ID] = c
		positions[c.BoardID] = append(positions[c.BoardID], c.Position)
	}
	for boardID, ps := range positions {
		seen := make(map[int]bool, len(ps))
		for _, p := range ps {
			if p < 1 || p > len(ps) || seen[p] {
				return fmt.Errorf("board %d column positions must be exactly 1..%d", boardID, len(ps))
			}
			seen[p] = true
		}
	}

	labels := make(map[int64]bool)
	for _, l := range seed.Labels {
		if labels[l.ID] {
			return fmt.Errorf("duplicate label id %d", l.ID)
		}
		labels[l.ID] = true
	}

	tasks := make(map[int64]bool)
	for _, t := range seed.Tasks {
		if tasks[t.ID] {
			return fmt.Errorf("duplicate task id %d", t.ID)
		}
		tasks[t.ID] = true
		col := columns[t.ColumnID]
		if col == nil {
			return fmt.Errorf("task %d references unknown column %d", t.ID, t.ColumnID)
		}
		if col.BoardID != t.BoardID {
			return fmt.Errorf("task %d board %d does not match column board %d", t.ID, t.BoardID, col.BoardID)
		}
		for _, id := range t.LabelIDs {
			if !labels[id] {
				return fmt.Errorf("task %d references unknown label %d", t.ID, id)
			}
		}
	}
	return nil
}

// SeedIfEmpty imports seed into repo when the repository holds no boards.
// It returns true when the seed was imported.
func SeedIfEmpty(ctx context.Context, repo store.Seeder, seed *store.Seed) (bool, error) {
	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("check repository: %w", err)
	}
	if !empty {
		return false, nil
	}
	if err := repo.Import(ctx, seed); err != nil {
		return false, fmt.Errorf("import fixtures: %w", err)
	}
	return true, nil
}
