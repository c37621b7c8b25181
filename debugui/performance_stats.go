package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

// PerformanceStats plots recent frame times and shows game and dispatch
// queue counters.
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	samples       int
}

func NewPerformanceStats(historyFrames int) *PerformanceStats {
	if historyFrames < 1 {
		historyFrames = 1
	}
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Record stores a frame time in seconds.
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
	if ps.samples < ps.historyFrames {
		ps.samples++
	}
}

// AverageFrameTime returns the mean of the recorded frame times in
// milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	if ps.samples == 0 {
		return 0
	}
	var sum float32
	for _, ft := range ps.frameHistory {
		sum += ft
	}
	return sum / float32(ps.samples)
}

func (ps *PerformanceStats) Render(g *engine.Game, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Record(deltaTime)
	stats := g.Stats()

	imgui.Text(fmt.Sprintf("Tick: %d", stats.Ticks))
	imgui.Text(fmt.Sprintf("Actors: %d", stats.Actors))
	imgui.Text(fmt.Sprintf("Components: %d", stats.Components))
	imgui.Text(fmt.Sprintf("Bodies: %d", stats.Bodies))

	avg := ps.AverageFrameTime()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Phase Details") {
		for _, p := range stats.Phases {
			imgui.BulletText(fmt.Sprintf("%s: %d actors, last %s", p.Name, p.Actors, p.LastDuration))
		}
		imgui.BulletText(fmt.Sprintf("%s: last %s", stats.Physics.Name, stats.Physics.LastDuration))
		imgui.TreePop()
	}

	if q := stats.Queue; q != nil && imgui.TreeNodeStr("Dispatch Queue") {
		imgui.BulletText(fmt.Sprintf("Workers: %d", q.Workers))
		imgui.BulletText(fmt.Sprintf("Pending: %d", q.Pending))
		imgui.BulletText(fmt.Sprintf("Submitted: %d", q.Submitted))
		imgui.BulletText(fmt.Sprintf("Executed: %d", q.Executed))
		imgui.BulletText(fmt.Sprintf("Dropped: %d", q.Dropped))
		imgui.BulletText(fmt.Sprintf("Faults: %d", q.Faults))
		imgui.TreePop()
	}

	imgui.BulletText(fmt.Sprintf("Posted results waiting: %d", stats.Posted))

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
