package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// Canvas is a grid of braille cells addressed in sub-pixels: each cell holds
// 2x4 dots, so the drawable area is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h}
	c.Grid = make([][]rune, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Pixels returns the sub-pixel resolution.
func (c *Canvas) Pixels() (int, int) { return c.Width * 2, c.Height * 4 }

// CellToPixel maps a terminal cell to the sub-pixel at its centre.
func (c *Canvas) CellToPixel(col, row int) (int, int) {
	return col*2 + 1, row*4 + 2
}

func (c *Canvas) cell(x, y int) (row, col, subX, subY int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, 0, false
	}
	return row, col, x % 2, y % 4, true
}

func (c *Canvas) Set(x, y int) {
	if row, col, sx, sy, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= rune(pixelMap[sy][sx])
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, sx, sy, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= rune(pixelMap[sy][sx])
		c.Grid[row][col] |= brailleBase
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, sx, sy, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&rune(pixelMap[sy][sx]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Segment draws a line between float sub-pixel coordinates, skipping
// segments that are entirely off canvas.
func (c *Canvas) Segment(x0, y0, x1, y1 float64) {
	w, h := c.Pixels()
	fw, fh := float64(w), float64(h)
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= fw && x1 >= fw) || (y0 >= fh && y1 >= fh) {
		return
	}
	c.DrawLine(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Floor(x1)), int(math.Floor(y1)))
}

// Mark draws a small plus centred on (x, y).
func (c *Canvas) Mark(x, y int) {
	c.Set(x, y)
	c.Set(x-1, y)
	c.Set(x+1, y)
	c.Set(x, y-1)
	c.Set(x, y+1)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
