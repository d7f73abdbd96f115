package data

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grid cells.
const (
	CellEmpty  = ' '
	CellWall   = '1'
	CellPizza  = '2'
	CellPlayer = '9'
)

//go:embed levels/default.yaml
var defaultLevel []byte

// Level is one map loaded from a yaml level file.
type Level struct {
	Name         string `yaml:"name"`
	CellSize     int    `yaml:"cell_size"`
	PizzaPadding int    `yaml:"pizza_padding"`
	Grid         string `yaml:"grid"`

	rows []string
}

// Cell is one non-empty grid cell.
type Cell struct {
	Col, Row int
	Kind     byte
}

// LoadLevel reads and parses a level file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return lvl, nil
}

// DefaultLevel returns the built-in level.
func DefaultLevel() *Level {
	lvl, err := ParseLevel(defaultLevel)
	if err != nil {
		panic(fmt.Sprintf("data: built-in level: %v", err))
	}
	return lvl
}

// ParseLevel decodes yaml level data and checks the grid.
func ParseLevel(raw []byte) (*Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	lvl := &Level{CellSize: 50, PizzaPadding: 15}
	if err := dec.Decode(lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if lvl.CellSize <= 0 {
		return nil, fmt.Errorf("cell_size must be positive, got %d", lvl.CellSize)
	}
	if lvl.PizzaPadding < 0 || 2*lvl.PizzaPadding > lvl.CellSize {
		return nil, fmt.Errorf("pizza_padding %d does not fit cell_size %d", lvl.PizzaPadding, lvl.CellSize)
	}

	lvl.rows = strings.Split(strings.Trim(lvl.Grid, "\n"), "\n")
	players := 0
	for y, row := range lvl.rows {
		for x := 0; x < len(row); x++ {
			switch c := row[x]; c {
			case CellEmpty, CellWall, CellPizza:
			case CellPlayer:
				players++
			default:
				return nil, fmt.Errorf("grid row %d col %d: unknown cell %q", y+1, x+1, c)
			}
		}
	}
	if players != 1 {
		return nil, fmt.Errorf("grid must contain exactly one player cell, found %d", players)
	}
	return lvl, nil
}

// Cells returns every non-empty cell in row-major order.
func (l *Level) Cells() []Cell {
	var out []Cell
	for y, row := range l.rows {
		for x := 0; x < len(row); x++ {
			if row[x] != CellEmpty {
				out = append(out, Cell{Col: x, Row: y, Kind: row[x]})
			}
		}
	}
	return out
}

// Size is the grid extent in cells.
func (l *Level) Size() (cols, rows int) {
	for _, row := range l.rows {
		cols = max(cols, len(row))
	}
	return cols, len(l.rows)
}
