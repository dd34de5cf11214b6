package shell

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/getlantern/systray"
)

// Tray is the background-runtime affordance: a status icon whose menu can
// re-show the shell window, toggle or cancel dictation, and quit the
// process. Run blocks for the life of the tray loop, so the daemon runs its
// real work from the OnReady callback.
type Tray struct {
	OnReady  func()
	OnShow   func()
	OnToggle func()
	OnCancel func()
	OnQuit   func()
}

// Run enters the systray loop. It returns when Quit is selected or
// systray.Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop ends the tray loop from outside the menu.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(trayIcon())
	systray.SetTitle("Dicktaint")
	systray.SetTooltip("Dicktaint push-to-talk dictation")

	showItem := systray.AddMenuItem("Show", "Show the Dicktaint window")
	toggleItem := systray.AddMenuItem("Toggle Dictation", "Start or stop dictation")
	cancelItem := systray.AddMenuItem("Cancel Dictation", "Discard the in-flight recording")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit Dicktaint")

	go func() {
		for {
			select {
			case <-showItem.ClickedCh:
				t.call(t.OnShow)
			case <-toggleItem.ClickedCh:
				t.call(t.OnToggle)
			case <-cancelItem.ClickedCh:
				t.call(t.OnCancel)
			case <-quitItem.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	if t.OnReady != nil {
		t.OnReady()
	}
}

func (t *Tray) onExit() {
	t.call(t.OnQuit)
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// trayIcon renders a small round microphone-dot glyph as a PNG. Generating
// it here keeps the binary free of asset files.
func trayIcon() []byte {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size-1) / 2
	radius := float64(size) * 0.36
	fill := color.RGBA{R: 0xE8, G: 0x4D, B: 0x4D, A: 0xFF}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
