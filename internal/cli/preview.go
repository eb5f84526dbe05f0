package cli

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stainedglass/pkg/core/geom"
	"github.com/matzehuels/stainedglass/pkg/mosaic"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		gen generateFlags
		cf  cacheFlags
		dir string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview mosaics in the terminal",
		Long: `Preview mosaics in the terminal and save the ones you like.

Keys:
  n      next mosaic (reseed from the current one)
  s      save stained-glass-<seed>.svg and .json
  p      cycle palettes
  + / -  more or fewer cells
  q      quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.buildOptions(cmd, &gen, nil)
			if err != nil {
				return err
			}
			opts.Formats = []string{pipeline.FormatSVG, pipeline.FormatJSON}

			runner, err := c.newRunner(cmd.Context(), cf.noCache, cf.redisURL)
			if err != nil {
				return err
			}
			defer runner.Close()

			m := newPreviewModel(cmd.Context(), pipeline.NewSession(runner, opts), opts.Palettes.Names(), dir)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if pm, ok := final.(previewModel); ok {
				for _, p := range pm.saved {
					printFile(p)
				}
			}
			return nil
		},
	}

	gen.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory saved mosaics are written to")

	return cmd
}

// =============================================================================
// previewModel - Interactive mosaic preview
// =============================================================================

// mosaicMsg carries the outcome of a session step.
type mosaicMsg struct {
	result *pipeline.Result
	err    error
}

// previewModel is the bubbletea model for the preview. At most one session
// step runs at a time.
type previewModel struct {
	ctx      context.Context
	session  *pipeline.Session
	palettes []string
	dir      string

	result *pipeline.Result
	status string
	err    error
	busy   bool
	saved  []string

	width, height int
}

func newPreviewModel(ctx context.Context, s *pipeline.Session, palettes []string, dir string) previewModel {
	return previewModel{
		ctx:      ctx,
		session:  s,
		palettes: palettes,
		dir:      dir,
		busy:     true,
		width:    80,
		height:   24,
	}
}

func (m previewModel) Init() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		res, err := s.Current(ctx)
		return mosaicMsg{res, err}
	}
}

// step runs fn against the session off the update loop.
func (m previewModel) step(fn func(context.Context, *pipeline.Session) (*pipeline.Result, error)) (previewModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = "generating…"
	s, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		res, err := fn(ctx, s)
		return mosaicMsg{res, err}
	}
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mosaicMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			m.status = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "n":
			return m.step(func(ctx context.Context, s *pipeline.Session) (*pipeline.Result, error) {
				return s.Advance(ctx)
			})
		case "p":
			if m.busy {
				return m, nil
			}
			next := nextPalette(m.palettes, m.currentPalette())
			return m.step(func(ctx context.Context, s *pipeline.Session) (*pipeline.Result, error) {
				return s.Update(ctx, func(o *pipeline.Options) { o.Palette = next })
			})
		case "+", "=":
			return m.step(func(ctx context.Context, s *pipeline.Session) (*pipeline.Result, error) {
				return s.Update(ctx, func(o *pipeline.Options) { o.Cells = stepCells(o.Cells, 1) })
			})
		case "-", "_":
			return m.step(func(ctx context.Context, s *pipeline.Session) (*pipeline.Result, error) {
				return s.Update(ctx, func(o *pipeline.Options) { o.Cells = stepCells(o.Cells, -1) })
			})
		case "s":
			return m.save(), nil
		}
	}
	return m, nil
}

func (m previewModel) currentPalette() string {
	if m.result != nil {
		return m.result.Mosaic.Palette.Name
	}
	return m.session.Options().Palette
}

// save writes the current mosaic as SVG and JSON.
func (m previewModel) save() previewModel {
	if m.result == nil {
		return m
	}
	seed := m.result.Mosaic.Seed
	formats := []string{pipeline.FormatSVG, pipeline.FormatJSON}
	base := filepath.Join(m.dir, defaultBase(seed))
	paths, err := writeAll(m.result.Artifacts, formats, basedPaths(base, formats))
	if err != nil {
		m.err = err
		return m
	}
	m.saved = append(m.saved, paths...)
	m.status = "saved " + strings.Join(paths, ", ")
	return m
}

// nextPalette returns the name after current, wrapping around.
func nextPalette(names []string, current string) string {
	if len(names) == 0 {
		return current
	}
	i := slices.Index(names, current)
	return names[(i+1)%len(names)]
}

// stepCells grows or shrinks a cell count by a tenth, at least 10, within
// [1, MaxCells].
func stepCells(n, dir int) int {
	step := max(10, n/10)
	return min(pipeline.MaxCells, max(1, n+dir*step))
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stained glass"))
	if m.result != nil {
		mo := m.result.Mosaic
		fmt.Fprintf(&b, "  %s %s  %s %s  %s %s",
			StyleDim.Render("seed"), StyleNumber.Render(fmt.Sprint(mo.Seed)),
			StyleDim.Render("palette"), StyleValue.Render(mo.Palette.Name),
			StyleDim.Render("cells"), StyleNumber.Render(fmt.Sprint(len(mo.Cells))))
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(statusFail.String() + " " + m.err.Error() + "\n")
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}

	if m.result != nil {
		cols, rows := fitFrame(m.result.Mosaic.Width, m.result.Mosaic.Height, m.width, max(1, m.height-4))
		b.WriteString(renderBlocks(rasterize(m.result.Mosaic, cols, rows*2)))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("n next  s save  p palette  +/- cells  q quit"))
	return b.String()
}

// =============================================================================
// Terminal rasterizer
// =============================================================================

// fitFrame returns the largest character grid that shows a w×h frame
// undistorted in cols×rows characters, each character holding two square
// pixels stacked vertically.
func fitFrame(w, h float64, cols, rows int) (int, int) {
	if w <= 0 || h <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	scale := math.Min(float64(cols)/w, float64(2*rows)/h)
	return max(1, int(w*scale)), max(1, int(h*scale/2))
}

// rasterize samples the mosaic on a w×h pixel grid and returns the hex
// color of each pixel. Pixels between a cell's inset and its boundary take
// the lead color.
func rasterize(m mosaic.Mosaic, w, h int) [][]string {
	px := make([][]string, h)
	if w <= 0 || h <= 0 || len(m.Cells) == 0 {
		return px
	}
	inks := make([]string, len(m.Cells))
	for i, c := range m.Cells {
		inks[i] = c.Color
		if shade, err := m.Palette.ShadeOf(c.ColorIndex, c.Bright); err == nil {
			inks[i] = shade.Base.Hex()
		}
	}
	lead := m.Palette.Line
	if lead == "" {
		lead = "#141e23"
	}

	for y := range h {
		px[y] = make([]string, w)
		for x := range w {
			p := geom.Pt((float64(x)+0.5)*m.Width/float64(w), (float64(y)+0.5)*m.Height/float64(h))
			i := nearestCell(m.Cells, p)
			if inset := m.Cells[i].Inset; len(inset) >= 3 && !inset.Contains(p) {
				px[y][x] = lead
				continue
			}
			px[y][x] = inks[i]
		}
	}
	return px
}

// nearestCell returns the cell whose site is closest to p, which is the
// Voronoi cell containing p.
func nearestCell(cells []mosaic.Cell, p geom.Point) int {
	best, bestD := 0, math.Inf(1)
	for i, c := range cells {
		dx, dy := c.Point.X-p.X, c.Point.Y-p.Y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// renderBlocks draws pixel rows in pairs using upper half blocks.
func renderBlocks(px [][]string) string {
	var b strings.Builder
	for y := 0; y+1 < len(px); y += 2 {
		for x := range px[y] {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(px[y][x])).
				Background(lipgloss.Color(px[y+1][x]))
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
