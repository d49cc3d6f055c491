// Package display animates a two dimensional swarm in a terminal.  Each
// particle is drawn as a box the size of the localization model, scaled from
// target pixels to terminal cells, with the epoch count in the top row.
package display

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/rwcarlsen/swarmloc/swarm"
)

const DefaultFPS = 50

var (
	boxStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	bestStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	labelStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// View maps the search plane onto the screen.  Width and Height are the
// extent of the plane (the target image size) and BoxW and BoxH the size of
// the box drawn at every particle position (the model image size).
type View struct {
	Width, Height float64
	BoxW, BoxH    float64
}

// Draw clears screen and renders snap.  The top row holds the label; the rest
// of the screen shows the plane.
func Draw(screen tcell.Screen, v View, snap swarm.Snapshot) {
	screen.Clear()
	cols, rows := screen.Size()

	sx := float64(cols) / v.Width
	sy := float64(rows-1) / v.Height
	best := -1
	for i, val := range snap.Values {
		if best < 0 || val < snap.Values[best] {
			best = i
		}
	}

	for i, p := range snap.Positions {
		if len(p) < 2 || i == best {
			continue
		}
		drawBox(screen, p[0]*sx, p[1]*sy+1, v.BoxW*sx, v.BoxH*sy, boxStyle)
	}
	// best particle on top
	if best >= 0 && len(snap.Positions[best]) >= 2 {
		p := snap.Positions[best]
		drawBox(screen, p[0]*sx, p[1]*sy+1, v.BoxW*sx, v.BoxH*sy, bestStyle)
	}

	label := fmt.Sprintf("Epochs: %v", snap.Epoch)
	if best >= 0 {
		label += fmt.Sprintf("  Best: %.4g", snap.Values[best])
	}
	drawText(screen, 0, 0, label, labelStyle)
	screen.Show()
}

func drawBox(screen tcell.Screen, x, y, w, h float64, style tcell.Style) {
	x0, y0 := int(x), int(y)
	x1, y1 := int(x+w), int(y+h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	for c := x0 + 1; c < x1; c++ {
		setCell(screen, c, y0, tcell.RuneHLine, style)
		setCell(screen, c, y1, tcell.RuneHLine, style)
	}
	for r := y0 + 1; r < y1; r++ {
		setCell(screen, x0, r, tcell.RuneVLine, style)
		setCell(screen, x1, r, tcell.RuneVLine, style)
	}
	setCell(screen, x0, y0, tcell.RuneULCorner, style)
	setCell(screen, x1, y0, tcell.RuneURCorner, style)
	setCell(screen, x0, y1, tcell.RuneLLCorner, style)
	setCell(screen, x1, y1, tcell.RuneLRCorner, style)
}

// setCell draws r unless (x, y) is off screen or in the label row.
func setCell(screen tcell.Screen, x, y int, r rune, style tcell.Style) {
	cols, rows := screen.Size()
	if x < 0 || y < 1 || x >= cols || y >= rows {
		return
	}
	screen.SetContent(x, y, r, nil, style)
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	cols, _ := screen.Size()
	for _, r := range text {
		if x >= cols {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// quits reports whether ev is a request to stop the animation.
func quits(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	return key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC ||
		(key.Key() == tcell.KeyRune && key.Rune() == 'q')
}

// Animator owns the event loop of a screen.  The caller owns the screen
// itself and must Init it before NewAnimator and Fini it after Close.
type Animator struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
}

func NewAnimator(screen tcell.Screen) *Animator {
	a := &Animator{
		screen: screen,
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
	}
	go a.poll()
	return a
}

func (a *Animator) poll() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case a.events <- ev:
		case <-a.quit:
			return
		}
	}
}

// Close stops event delivery.  The polling goroutine exits once the screen
// is finalized.
func (a *Animator) Close() { close(a.quit) }

// Run advances it one epoch per frame at fps frames per second and draws
// every snapshot until the iterator stops or the user presses Esc, Ctrl-C or
// q.  It reports whether the user quit along with the iterator's error, if
// any.
func (a *Animator) Run(it *swarm.Iterator, v View, fps int) (quit bool, err error) {
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var last swarm.Snapshot
	for {
		select {
		case ev := <-a.events:
			if quits(ev) {
				return true, it.Err()
			} else if _, ok := ev.(*tcell.EventResize); ok {
				a.screen.Sync()
				Draw(a.screen, v, last)
			}
		case <-ticker.C:
			if !it.Next() {
				return false, it.Err()
			}
			last = it.Snapshot()
			Draw(a.screen, v, last)
		}
	}
}

// Wait blocks until the user presses Esc, Ctrl-C or q or the animator is
// closed.
func (a *Animator) Wait() {
	for {
		select {
		case ev := <-a.events:
			if quits(ev) {
				return
			}
		case <-a.quit:
			return
		}
	}
}
