package cmd

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/go-drift/spatial/pkg/errors"
	"github.com/go-drift/spatial/pkg/geometry"
	"github.com/go-drift/spatial/pkg/hittest"
	"github.com/go-drift/spatial/pkg/scene"
)

func init() {
	RegisterCommand(&Command{
		Name:  "bench",
		Short: "Benchmark the index against a scene",
		Long: `Load a scene, build the index, and time randomized point and
rect queries against it. Every run finishes with an integrity check; a
broken invariant fails the run.

With --serve the debug HTTP server stays up after the run for inspection
(Ctrl-C to exit).`,
		Usage: "hitbench bench <scene.yaml> [--queries N] [--seed N] [--serve PORT]",
		Run:   runBench,
	})
}

func runBench(args []string) error {
	defer errors.Recover("hitbench.runBench")

	if len(args) < 1 {
		return fmt.Errorf("bench requires a scene file argument")
	}
	scenePath := args[0]

	queries := 10000
	seed := int64(1)
	servePort := -1
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--queries":
			if i+1 >= len(args) {
				return fmt.Errorf("--queries requires a number")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid query count %q", args[i+1])
			}
			queries = n
			i++
		case "--seed":
			if i+1 >= len(args) {
				return fmt.Errorf("--seed requires a number")
			}
			n, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q", args[i+1])
			}
			seed = n
			i++
		case "--serve":
			if i+1 >= len(args) {
				return fmt.Errorf("--serve requires a port")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid port %q", args[i+1])
			}
			servePort = n
			i++
		default:
			return fmt.Errorf("unknown flag %q", args[i])
		}
	}

	s, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	system := hittest.NewSystem()

	buildStart := time.Now()
	if err := system.Rebuild(s.Handles()); err != nil {
		return err
	}
	buildTime := time.Since(buildStart)

	bounds := s.Bounds()
	rng := rand.New(rand.NewSource(seed))

	var totalHits int
	pointStart := time.Now()
	for i := 0; i < queries; i++ {
		x := bounds.Left + rng.Float64()*bounds.Width()
		y := bounds.Top + rng.Float64()*bounds.Height()
		totalHits += len(system.WidgetsAt(x, y))
	}
	pointTime := time.Since(pointStart)

	var totalRectHits int
	rectStart := time.Now()
	for i := 0; i < queries; i++ {
		x := bounds.Left + rng.Float64()*bounds.Width()
		y := bounds.Top + rng.Float64()*bounds.Height()
		w := rng.Float64() * bounds.Width() * 0.1
		h := rng.Float64() * bounds.Height() * 0.1
		totalRectHits += len(system.WidgetsInRect(geometry.RectFromLTWH(x, y, w, h)))
	}
	rectTime := time.Since(rectStart)

	fmt.Printf("Scene:   %s (%d widgets)\n", scenePath, system.Len())
	fmt.Printf("Build:   %v\n", buildTime)
	fmt.Printf("Point:   %d queries in %v (%.0f ns/op, %.2f hits avg)\n",
		queries, pointTime,
		float64(pointTime.Nanoseconds())/float64(queries),
		float64(totalHits)/float64(queries))
	fmt.Printf("Rect:    %d queries in %v (%.0f ns/op, %.2f hits avg)\n",
		queries, rectTime,
		float64(rectTime.Nanoseconds())/float64(queries),
		float64(totalRectHits)/float64(queries))
	fmt.Println(system.Stats())

	if !system.VerifyIntegrity() {
		return fmt.Errorf("integrity check failed after benchmark run")
	}

	if servePort >= 0 {
		return serveDebug(system, servePort)
	}
	return nil
}

// serveDebug blocks forever serving the debug endpoints. hitbench is
// single-user tooling: the frame locker exists only to satisfy the debug
// server's contract, since nothing mutates the system after the run.
func serveDebug(system *hittest.System, port int) error {
	var frames sync.Mutex
	server := hittest.NewDebugServer(system, &frames)
	actual, err := server.Start(port)
	if err != nil {
		return err
	}
	fmt.Printf("Debug server on http://localhost:%d (stats, widgets, query, health)\n", actual)
	select {}
}
