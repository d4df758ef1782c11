// Package render draws crossover world snapshots: an RGBA frame for
// rgb_array mode and an ASCII board for human mode. It is the optional
// collaborator behind env.Renderer; the simulation runs fine without it.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"

	"crossover/env"
)

// CellSize is the pixel width and height of one grid cell.
const CellSize = 40

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	wallColor  = color.RGBA{A: 255}

	agentColors = []color.RGBA{
		{R: 220, G: 50, B: 47, A: 255},  // red
		{R: 38, G: 139, B: 210, A: 255}, // blue
		{R: 133, G: 153, B: 0, A: 255},  // green
		{R: 203, G: 75, B: 22, A: 255},  // orange
	}
)

// Renderer implements env.Renderer. Human-mode frames go to Out.
type Renderer struct {
	Out io.Writer
}

// New returns a renderer that writes human-mode frames to stdout.
func New() *Renderer {
	return &Renderer{Out: os.Stdout}
}

// NewWithWriter returns a renderer with a custom human-mode sink.
func NewWithWriter(w io.Writer) *Renderer {
	return &Renderer{Out: w}
}

func (r *Renderer) Render(mode env.RenderMode, v env.View) (image.Image, error) {
	switch mode {
	case env.ModeRGBArray:
		return Frame(v), nil
	case env.ModeHuman:
		return nil, r.drawText(v)
	}
	return nil, fmt.Errorf("unknown render mode %q", mode)
}

func (r *Renderer) Close() error {
	return nil
}

// Frame renders a snapshot as an RGBA image: white background, black wall
// cells, each goal cell outlined and each agent drawn as a filled disc in
// the owner's color.
func Frame(v env.View) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.Cols*CellSize, v.Rows*CellSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	for row := 0; row < v.Rows; row++ {
		for col := 0; col < v.Cols; col++ {
			if v.Walls[row][col] {
				fillCell(img, row, col, wallColor)
			}
		}
	}
	for i, g := range v.Goals {
		outlineCell(img, g.Row, g.Col, agentColor(i))
	}
	for i, p := range v.Agents {
		drawDisc(img, p.Row, p.Col, agentColor(i))
	}
	return img
}

func agentColor(agent int) color.RGBA {
	return agentColors[agent%len(agentColors)]
}

func cellRect(row, col int) image.Rectangle {
	return image.Rect(col*CellSize, row*CellSize, (col+1)*CellSize, (row+1)*CellSize)
}

func fillCell(img *image.RGBA, row, col int, c color.RGBA) {
	draw.Draw(img, cellRect(row, col), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// outlineCell draws a 2px border inside the cell.
func outlineCell(img *image.RGBA, row, col int, c color.RGBA) {
	r := cellRect(row, col)
	const thickness = 2
	for x := r.Min.X; x < r.Max.X; x++ {
		for t := 0; t < thickness; t++ {
			img.SetRGBA(x, r.Min.Y+t, c)
			img.SetRGBA(x, r.Max.Y-1-t, c)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for t := 0; t < thickness; t++ {
			img.SetRGBA(r.Min.X+t, y, c)
			img.SetRGBA(r.Max.X-1-t, y, c)
		}
	}
}

func drawDisc(img *image.RGBA, row, col int, c color.RGBA) {
	r := cellRect(row, col)
	cx := (r.Min.X + r.Max.X) / 2
	cy := (r.Min.Y + r.Max.Y) / 2
	radius := CellSize/2 - 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawText writes the board as ASCII: '#' wall, '.' free, 'G' goal cell,
// and the agent id digit for occupied cells.
func (r *Renderer) drawText(v env.View) error {
	board := make([][]byte, v.Rows)
	for row := range board {
		board[row] = make([]byte, v.Cols)
		for col := range board[row] {
			if v.Walls[row][col] {
				board[row][col] = '#'
			} else {
				board[row][col] = '.'
			}
		}
	}
	for _, g := range v.Goals {
		board[g.Row][g.Col] = 'G'
	}
	for i, p := range v.Agents {
		board[p.Row][p.Col] = byte('0' + i)
	}

	if _, err := fmt.Fprintf(r.Out, "step %d\n", v.Step); err != nil {
		return err
	}
	for _, row := range board {
		if _, err := fmt.Fprintf(r.Out, "%s\n", row); err != nil {
			return err
		}
	}
	return nil
}
