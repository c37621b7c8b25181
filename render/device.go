// Package render draws a running engine.Game with Ebiten.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Device is an engine.Device backed by an Ebiten image. The target is
// replaced every Draw call.
type Device struct {
	target *ebiten.Image
}

func NewDevice(target *ebiten.Image) *Device {
	return &Device{target: target}
}

func (d *Device) SetTarget(target *ebiten.Image) { d.target = target }

func (d *Device) Target() *ebiten.Image { return d.target }

func (d *Device) Size() (int, int) {
	if d.target == nil {
		return 0, 0
	}
	b := d.target.Bounds()
	return b.Dx(), b.Dy()
}

func (d *Device) FillRect(x, y, width, height float32, clr color.Color) {
	if d.target == nil || width <= 0 || height <= 0 {
		return
	}
	vector.DrawFilledRect(d.target, x, y, width, height, clr, false)
}

func (d *Device) DebugText(text string, x, y int) {
	if d.target == nil {
		return
	}
	ebitenutil.DebugPrintAt(d.target, text, x, y)
}

// Clear fills the whole target.
func (d *Device) Clear(clr color.Color) {
	if d.target != nil {
		d.target.Fill(clr)
	}
}
