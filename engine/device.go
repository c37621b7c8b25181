package engine

import "image/color"

// Device is the drawing surface handed to Draw and Draw2D hooks for the
// current frame.
type Device interface {
	Size() (width, height int)
	FillRect(x, y, width, height float32, clr color.Color)
	DebugText(text string, x, y int)
}

type nopDevice struct{}

func (nopDevice) Size() (int, int)                           { return 0, 0 }
func (nopDevice) FillRect(_, _, _, _ float32, _ color.Color) {}
func (nopDevice) DebugText(_ string, _, _ int)               {}
