package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/pizzakick/pizzakick/internal/config"
	"github.com/pizzakick/pizzakick/internal/game"
	"github.com/pizzakick/pizzakick/internal/scene"
)

var outline = color.RGBA{A: 160}

// Game adapts a game.Game to ebiten: key events feed the keyboard, each
// update runs one tick and Draw paints the scene.
type Game struct {
	game       *game.Game
	log        *zap.Logger
	width      int
	height     int
	background color.Color
	delta      time.Duration
	face       ebtext.Face

	keys []ebiten.Key
}

func NewGame(g *game.Game, cfg *config.Config, log *zap.Logger) (*Game, error) {
	bg, err := parseHexColor(cfg.Window.Background)
	if err != nil {
		return nil, fmt.Errorf("window.background: %w", err)
	}
	return &Game{
		game:       g,
		log:        log,
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
		background: bg,
		delta:      time.Second / time.Duration(cfg.Game.TPS),
		face:       ebtext.NewGoXFace(basicfont.Face7x13),
	}, nil
}

func (r *Game) Update() error {
	r.keys = inpututil.AppendJustPressedKeys(r.keys[:0])
	for _, k := range r.keys {
		if a, ok := r.game.Bindings.Lookup(k.String()); ok {
			r.game.Keyboard.Press(a)
		}
	}
	r.keys = inpututil.AppendJustReleasedKeys(r.keys[:0])
	for _, k := range r.keys {
		if a, ok := r.game.Bindings.Lookup(k.String()); ok {
			r.game.Keyboard.Release(a)
		}
	}
	if err := r.game.Step(r.delta); err != nil {
		r.log.Error("tick failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *Game) Draw(screen *ebiten.Image) {
	screen.Fill(r.background)

	s := r.game.Scene
	ox, oy := s.Offset()
	for _, n := range s.World.Nodes() {
		drawNode(screen, n, ox, oy)
	}
	for _, n := range s.HUD.Nodes() {
		drawNode(screen, n, 0, 0)
	}

	held, capacity := r.game.Carried()
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(16, 16)
	op.ColorScale.ScaleWithColor(color.White)
	ebtext.Draw(screen, fmt.Sprintf("pizzas %d/%d   tick %d", held, capacity, r.game.World().Tick()), r.face, op)
}

func (r *Game) Layout(_, _ int) (int, int) { return r.width, r.height }

func drawNode(screen *ebiten.Image, n *scene.Node, ox, oy float64) {
	b := n.Graphics.Bounds(n.X+ox, n.Y+oy)
	x, y, w, h := float32(b.X), float32(b.Y), float32(b.W), float32(b.H)
	vector.FillRect(screen, x, y, w, h, rgb(n.Graphics.Color), false)
	if n.Graphics.Sprite == "wall" {
		return
	}
	vector.StrokeRect(screen, x, y, w, h, 1, outline, false)
	if n.Graphics.Clip != "" {
		drawFacing(screen, n, x, y, w, h)
	}
}

// drawFacing marks the edge the clip faces; the marker blinks with the
// animation frame while moving.
func drawFacing(screen *ebiten.Image, n *scene.Node, x, y, w, h float32) {
	const t = 4
	if n.Graphics.Clip != "stopped" && int(n.Frame)%2 == 1 {
		return
	}
	switch n.Graphics.Clip {
	case "up":
		vector.FillRect(screen, x, y, w, t, color.White, false)
	case "down", "stopped":
		vector.FillRect(screen, x, y+h-t, w, t, color.White, false)
	case "left":
		vector.FillRect(screen, x, y, t, h, color.White, false)
	case "right":
		vector.FillRect(screen, x+w-t, y, t, h, color.White, false)
	}
}

func rgb(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xff}
}

func parseHexColor(s string) (color.RGBA, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return color.RGBA{}, fmt.Errorf("want #rrggbb, got %q", s)
	}
	return rgb(uint32(v)), nil
}
