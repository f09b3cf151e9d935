package cmd

import (
	"fmt"
	"strconv"

	"github.com/go-drift/spatial/pkg/hittest"
	"github.com/go-drift/spatial/pkg/scene"
)

func init() {
	RegisterCommand(&Command{
		Name:  "query",
		Short: "Run a one-shot point query",
		Long: `Load a scene, build the index, and report which widgets occupy
the given point, topmost first.`,
		Usage: "hitbench query <scene.yaml> <x> <y>",
		Run:   runQuery,
	})
}

func runQuery(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("query requires a scene file and x y coordinates")
	}

	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x coordinate %q", args[1])
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y coordinate %q", args[2])
	}

	s, err := scene.Load(args[0])
	if err != nil {
		return err
	}

	system := hittest.NewSystem()
	if err := system.Rebuild(s.Handles()); err != nil {
		return err
	}

	hits := system.WidgetsAt(x, y)
	if len(hits) == 0 {
		fmt.Printf("No widgets at (%g, %g)\n", x, y)
		return nil
	}

	fmt.Printf("%d widget(s) at (%g, %g), topmost first:\n", len(hits), x, y)
	for _, hit := range hits {
		w := hit.(*scene.Widget)
		r := w.HitRect()
		fmt.Printf("  %-16s z=%-4d (%g, %g) %gx%g\n",
			w.ID, w.Z, r.Left, r.Top, r.Width(), r.Height())
	}
	return nil
}
