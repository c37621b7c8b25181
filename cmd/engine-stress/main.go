// Command engine-stress runs a headless game under load and prints a report
// of frame, phase and background queue timings.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"github.com/plus3/blockworks/components"
	"github.com/plus3/blockworks/dispatch"
	"github.com/plus3/blockworks/engine"
	"github.com/plus3/blockworks/physics"
	"github.com/plus3/blockworks/voxel"
	"go.uber.org/zap"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	actorCount := flag.Int("actors", 2000, "The initial number of actors to create.")
	workers := flag.Int("workers", runtime.NumCPU(), "Background queue workers.")
	radius := flag.Int("radius", 3, "Voxel world radius in chunks.")
	edits := flag.Int("edits", 8, "Block edits per frame.")
	profileMode := flag.String("profile", "", "Profile to record: cpu, mem or empty for none.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("unknown profile %q", *profileMode)
	}

	log.Println("Starting engine stress test...")

	queue := dispatch.New(dispatch.Options{Name: "stress", Workers: *workers, Capacity: -1, Logger: zap.NewNop()})
	game := engine.New(engine.Options{
		Scene:         physics.NewSpace(physics.DefaultOptions()),
		Queue:         queue,
		ActorCapacity: *actorCount + 64,
	})

	log.Printf("Populating game with %d actors...\n", *actorCount)
	world, err := populate(game, *actorCount, *radius, *edits)
	if err != nil {
		log.Fatalf("Failed to populate game: %v", err)
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       *duration,
		Actors:         *actorCount,
		Workers:        *workers,
		Radius:         *radius,
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := game.Tick(deltaTime.Seconds()); err != nil {
				report.Errors++
				log.Printf("tick %d: %v", game.TickCount(), err)
			}
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Game = game.Stats()
	report.Chunks = world.Loaded()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := game.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	report.Queue = queue.Stats()

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}

// populate spawns a voxel world, an editor that keeps its chunks rebuilding,
// and count actors carrying one to three random components.
func populate(g *engine.Game, count, radius, edits int) (*voxel.WorldComponent, error) {
	origin, err := g.CreateActor(engine.ActorOptions{Name: "world"})
	if err != nil {
		return nil, err
	}
	world := voxel.NewWorldComponent(voxel.WorldOptions{Radius: radius})
	if _, err := origin.AddComponent(world); err != nil {
		return nil, err
	}
	if _, err := origin.AddComponent(&editor{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		world:         world,
		edits:         edits,
		span:          (2*radius + 1) * voxel.Size,
	}); err != nil {
		return nil, err
	}

	for i := range count {
		a, err := g.CreateActor(engine.ActorOptions{
			Name:     fmt.Sprintf("actor-%d", i),
			Position: mgl32.Vec3{rand.Float32()*64 - 32, rand.Float32() * 16, rand.Float32()*64 - 32},
			Dynamic:  rand.IntN(4) == 0,
			Mass:     1,
		})
		if err != nil {
			return nil, err
		}
		for range rand.IntN(3) + 1 {
			if _, err := a.AddComponent(randomComponent()); err != nil {
				return nil, err
			}
		}
	}
	return world, nil
}

func randomComponent() engine.Component {
	switch rand.IntN(3) {
	case 0:
		return components.NewSpinner(mgl32.Vec3{0, 1, 0}, 30+rand.Float32()*90)
	case 1:
		return components.NewRenderer(0.5, color.RGBA{0xc0, 0x40, 0x40, 0xff})
	default:
		return components.NewImpulse(mgl32.Vec3{0, 4, 0}, 0.5+rand.Float64())
	}
}

// editor flips random blocks in the world so chunks are rebuilt on the
// background queue every frame.
type editor struct {
	engine.ComponentBase
	world *voxel.WorldComponent
	edits int
	span  int
}

func (e *editor) Update(*engine.Frame) {
	half := e.span / 2
	for range e.edits {
		x := rand.IntN(e.span) - half
		z := rand.IntN(e.span) - half
		y := rand.IntN(voxel.Size)
		b := voxel.Air
		if e.world.Block(x, y, z) == voxel.Air {
			b = voxel.Stone
		}
		e.world.SetBlock(x, y, z, b)
	}
}
