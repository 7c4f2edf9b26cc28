package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ErrMazeSyntax is returned for maze text that cannot be parsed
var ErrMazeSyntax = errors.New("invalid maze")

// Cell is a maze grid position, X grows right and Y grows down
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Maze is a walkable grid with per-cell terrain height.
//
// Text format, one row per line:
//
//	#      wall
//	. ' '  floor at height 0
//	0-9    floor at that height
//	S G    start and goal, floor at height 0
//
// Short rows are padded with walls.
type Maze struct {
	Width, Height int
	Start, Goal   Cell
	HasStart      bool
	HasGoal       bool
	// Diagonal enables 8-way movement; corners may not be cut
	Diagonal bool

	walls   []bool
	heights []float64
}

// ParseMaze reads a maze in the text format described on Maze
func ParseMaze(r io.Reader) (*Maze, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read maze: %w", err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMazeSyntax)
	}

	m := &Maze{Height: len(rows)}
	for _, row := range rows {
		m.Width = max(m.Width, len(row))
	}
	m.walls = make([]bool, m.Width*m.Height)
	m.heights = make([]float64, m.Width*m.Height)

	for y, row := range rows {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if x >= len(row) {
				m.walls[i] = true
				continue
			}
			switch ch := row[x]; {
			case ch == '#':
				m.walls[i] = true
			case ch == '.' || ch == ' ':
			case ch >= '0' && ch <= '9':
				m.heights[i] = float64(ch - '0')
			case ch == 'S' || ch == 'G':
				c := Cell{X: x, Y: y}
				if (ch == 'S' && m.HasStart) || (ch == 'G' && m.HasGoal) {
					return nil, fmt.Errorf("%w: duplicate %c at %v", ErrMazeSyntax, ch, c)
				}
				if ch == 'S' {
					m.Start, m.HasStart = c, true
				} else {
					m.Goal, m.HasGoal = c, true
				}
			default:
				return nil, fmt.Errorf("%w: unexpected %q at row %d col %d", ErrMazeSyntax, ch, y, x)
			}
		}
	}
	return m, nil
}

func (m *Maze) in(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < m.Width && c.Y < m.Height
}

// Open reports whether c is inside the maze and not a wall
func (m *Maze) Open(c Cell) bool {
	return m.in(c) && !m.walls[c.Y*m.Width+c.X]
}

// HeightAt is the terrain height of c, 0 outside the maze
func (m *Maze) HeightAt(c Cell) float64 {
	if !m.in(c) {
		return 0
	}
	return m.heights[c.Y*m.Width+c.X]
}

var (
	orthogonalMoves = []Cell{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	diagonalMoves   = []Cell{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
)

// Neighbors implements pathfind.Graph
func (m *Maze) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 8)
	for _, d := range orthogonalMoves {
		if n := (Cell{c.X + d.X, c.Y + d.Y}); m.Open(n) {
			out = append(out, n)
		}
	}
	if !m.Diagonal {
		return out
	}
	for _, d := range diagonalMoves {
		n := Cell{c.X + d.X, c.Y + d.Y}
		if m.Open(n) && m.Open(Cell{c.X + d.X, c.Y}) && m.Open(Cell{c.X, c.Y + d.Y}) {
			out = append(out, n)
		}
	}
	return out
}

// HasNode implements pathfind.NodeChecker
func (m *Maze) HasNode(c Cell) bool { return m.Open(c) }

// Render draws the maze with path cells marked '*'
func (m *Maze) Render(path []Cell) string {
	onPath := make(map[Cell]bool, len(path))
	for _, c := range path {
		onPath[c] = true
	}

	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := Cell{X: x, Y: y}
			switch {
			case m.HasStart && c == m.Start:
				b.WriteByte('S')
			case m.HasGoal && c == m.Goal:
				b.WriteByte('G')
			case onPath[c]:
				b.WriteByte('*')
			case !m.Open(c):
				b.WriteByte('#')
			case m.HeightAt(c) > 0:
				b.WriteByte('0' + byte(m.HeightAt(c)))
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TerrainScorer is the step cost between adjacent cells: 1 orthogonally,
// sqrt(2) diagonally, plus ClimbPenalty per unit of height gained
type TerrainScorer struct {
	Maze         *Maze
	ClimbPenalty float64
}

// Cost implements pathfind.Scorer
func (s TerrainScorer) Cost(from, to Cell) float64 {
	base := 1.0
	if from.X != to.X && from.Y != to.Y {
		base = math.Sqrt2
	}
	climb := s.Maze.HeightAt(to) - s.Maze.HeightAt(from)
	if climb > 0 && s.ClimbPenalty > 0 {
		base += s.ClimbPenalty * climb
	}
	return base
}

// ManhattanScorer estimates remaining 4-way moves; admissible for TerrainScorer
type ManhattanScorer struct{}

// Cost implements pathfind.Scorer
func (ManhattanScorer) Cost(from, to Cell) float64 {
	return math.Abs(float64(from.X-to.X)) + math.Abs(float64(from.Y-to.Y))
}

// OctileScorer estimates remaining 8-way moves; admissible for TerrainScorer
type OctileScorer struct{}

// Cost implements pathfind.Scorer
func (OctileScorer) Cost(from, to Cell) float64 {
	dx := math.Abs(float64(from.X - to.X))
	dy := math.Abs(float64(from.Y - to.Y))
	return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
}
