// Command pong runs the Pong demo offscreen for a fixed number of frames
// and writes the final frame to a PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/mkualquiera/webengine"
	"github.com/mkualquiera/webengine/app"
	"github.com/mkualquiera/webengine/game"
	"github.com/mkualquiera/webengine/render"
)

func main() {
	var (
		frames  = flag.Int("frames", 300, "number of frames to simulate")
		width   = flag.Int("width", 800, "surface width in pixels")
		height  = flag.Int("height", 600, "surface height in pixels")
		output  = flag.String("o", "pong.png", "output file")
		verbose = flag.Bool("v", false, "log engine internals to stderr")
	)
	flag.Parse()

	if *verbose {
		webengine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	dev, err := render.RequestDevice()
	if err != nil {
		log.Fatalf("Failed to open GPU device: %v", err)
	}
	defer dev.Close()

	surface := render.NewTextureSurface(dev)
	defer surface.Destroy()
	rs, err := render.NewRenderingSystem(dev, surface, uint32(*width), uint32(*height))
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer rs.Destroy()

	g := game.New()
	in := app.NewInput()

	// Fixed timestep: the offscreen demo has no real clock to follow.
	const dt = 1.0 / 60
	for i := 0; i < *frames; i++ {
		g.Update(in, dt)
		if err := rs.Render(g.Render); err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
	}

	img, err := surface.ReadPixels()
	if err != nil {
		log.Fatalf("Failed to read frame: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	left, right := g.Scores()
	log.Printf("Simulated %d frames, score %d-%d, wrote %s (%dx%d)\n",
		*frames, left, right, *output, *width, *height)
}
