package engine

// Frame is passed to every component hook. It is reused across frames; hooks
// must not keep it.
type Frame struct {
	DeltaTime float64
	Tick      uint64
	Game      *Game
	Device    Device
	Commands  *Commands
}
