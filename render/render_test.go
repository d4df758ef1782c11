package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"crossover/env"
)

func TestFrameGeometry(t *testing.T) {
	v := env.New().View()
	img := Frame(v)

	require.Equal(t, v.Cols*CellSize, img.Bounds().Dx())
	require.Equal(t, v.Rows*CellSize, img.Bounds().Dy())

	center := func(row, col int) (int, int) {
		return col*CellSize + CellSize/2, row*CellSize + CellSize/2
	}

	// wall cell is black
	x, y := center(0, 3)
	require.Equal(t, wallColor, img.RGBAAt(x, y))
	// empty road cell stays background
	x, y = center(1, 4)
	require.Equal(t, background, img.RGBAAt(x, y))
	// agent 0 disc at its start cell
	x, y = center(0, 1)
	require.Equal(t, agentColor(0), img.RGBAAt(x, y))
	// goal outline touches the cell edge but not its center
	g := v.Goals[0]
	require.Equal(t, agentColor(0), img.RGBAAt(g.Col*CellSize, g.Row*CellSize))
	x, y = center(g.Row, g.Col)
	require.Equal(t, background, img.RGBAAt(x, y))
}

func TestHumanBoard(t *testing.T) {
	var buf bytes.Buffer
	r := NewWithWriter(&buf)

	img, err := r.Render(env.ModeHuman, env.New().View())
	require.NoError(t, err)
	require.Nil(t, img)

	out := buf.String()
	require.Contains(t, out, "step 0")
	require.Contains(t, out, "G0####2G")
	require.Contains(t, out, "........")
	require.Contains(t, out, "G1####3G")
}

func TestRGBArrayMode(t *testing.T) {
	img, err := New().Render(env.ModeRGBArray, env.New().View())
	require.NoError(t, err)
	require.NotNil(t, img)
}

func TestUnknownMode(t *testing.T) {
	_, err := New().Render(env.RenderMode("ascii-art"), env.New().View())
	require.Error(t, err)
}

func TestAgentColorWraps(t *testing.T) {
	require.Equal(t, agentColors[0], agentColor(0))
	require.Equal(t, agentColors[0], agentColor(len(agentColors)))
}
