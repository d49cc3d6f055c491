package display

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/swarm"
)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func row(screen tcell.Screen, y int) string {
	cols, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestDraw(t *testing.T) {
	screen := newScreen(t, 40, 21)
	v := View{Width: 100, Height: 100, BoxW: 20, BoxH: 20}
	snap := swarm.Snapshot{
		Positions: [][]float64{{0, 0}, {50, 50}},
		Values:    []float64{3, 1},
		Epoch:     7,
	}
	Draw(screen, v, snap)

	if got := row(screen, 0); !strings.HasPrefix(got, "Epochs: 7  Best: 1") {
		t.Errorf("label row = %q", got)
	}

	// 40 cols over 100 px and 20 rows over 100 px: (0,0) maps to cell (0,1)
	// and a 20x20 box spans 8 cols and 4 rows.
	cases := []struct {
		x, y int
		want rune
		fg   tcell.Color
	}{
		{0, 1, tcell.RuneULCorner, tcell.ColorWhite},
		{8, 1, tcell.RuneURCorner, tcell.ColorWhite},
		{0, 5, tcell.RuneLLCorner, tcell.ColorWhite},
		{8, 5, tcell.RuneLRCorner, tcell.ColorWhite},
		{4, 1, tcell.RuneHLine, tcell.ColorWhite},
		{0, 3, tcell.RuneVLine, tcell.ColorWhite},
		{20, 11, tcell.RuneULCorner, tcell.ColorRed},
		{28, 15, tcell.RuneLRCorner, tcell.ColorRed},
	}
	for _, c := range cases {
		r, _, style, _ := screen.GetContent(c.x, c.y)
		fg, _, _ := style.Decompose()
		if r != c.want || fg != c.fg {
			t.Errorf("cell (%v,%v) = %q in %v, want %q in %v", c.x, c.y, r, fg, c.want, c.fg)
		}
	}
}

func TestDrawClips(t *testing.T) {
	screen := newScreen(t, 10, 6)
	v := View{Width: 10, Height: 5, BoxW: 4, BoxH: 4}
	Draw(screen, v, swarm.Snapshot{Positions: [][]float64{{8, 3}}, Values: []float64{0}})

	if r, _, _, _ := screen.GetContent(8, 4); r != tcell.RuneULCorner {
		t.Errorf("got %q at box corner, want %q", r, tcell.RuneULCorner)
	}
}

func newSwarm(t *testing.T, opts ...swarm.Option) *swarm.Swarm {
	t.Helper()
	b := swarmloc.NewBounds([]float64{0, 0}, []float64{100, 50})
	obj := swarmloc.Func(func(v []float64) float64 {
		dx, dy := v[0]-60, v[1]-20
		return dx*dx + dy*dy
	})
	s, err := swarm.New(b, obj, 0, append([]swarm.Option{swarm.Particles(10)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRun(t *testing.T) {
	screen := newScreen(t, 80, 24)
	s := newSwarm(t, swarm.MaxEpochs(3))

	a := NewAnimator(screen)
	defer a.Close()
	quit, err := a.Run(s.Iter(), View{Width: 100, Height: 50, BoxW: 10, BoxH: 10}, 1000)
	if err != nil {
		t.Fatal(err)
	} else if quit {
		t.Error("animation reported a user quit")
	}

	if s.Epoch() != 3 {
		t.Errorf("ran %v epochs, want 3", s.Epoch())
	}
	if got := row(screen, 0); !strings.HasPrefix(got, "Epochs: 3") {
		t.Errorf("label row = %q", got)
	}
}

func TestRunQuit(t *testing.T) {
	screen := newScreen(t, 80, 24)
	s := newSwarm(t)

	a := NewAnimator(screen)
	defer a.Close()
	if err := screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)); err != nil {
		t.Fatal(err)
	}
	quit, err := a.Run(s.Iter(), View{Width: 100, Height: 50, BoxW: 10, BoxH: 10}, 1)
	if err != nil {
		t.Fatal(err)
	} else if !quit {
		t.Error("escape did not stop the animation")
	}
	if s.Epoch() != 0 {
		t.Errorf("ran %v epochs before quitting, want 0", s.Epoch())
	}
}

func TestQuits(t *testing.T) {
	cases := []struct {
		ev   tcell.Event
		want bool
	}{
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), true},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true},
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), false},
		{tcell.NewEventResize(80, 24), false},
	}
	for _, c := range cases {
		if got := quits(c.ev); got != c.want {
			t.Errorf("quits(%T) = %v, want %v", c.ev, got, c.want)
		}
	}
}
