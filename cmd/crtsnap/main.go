// Command crtsnap renders the CRT composite headlessly on the software
// backend and writes the final framebuffer as a PNG.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/schollz/progressbar/v3"

	"crt-demo/config"
	"crt-demo/core"
	"crt-demo/geometry"
	"crt-demo/gfx"
	"crt-demo/gui"
	"crt-demo/internal/software"
	"crt-demo/renderer"
)

type snapshot struct {
	stdout io.Writer
	stderr io.Writer
}

func (s *snapshot) run(args []string) error {
	fs := flag.NewFlagSet("crtsnap", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	width := fs.Int("width", 0, "framebuffer width (overrides config)")
	height := fs.Int("height", 0, "framebuffer height (overrides config)")
	out := fs.String("out", "crt.png", "PNG file to write the final frame to")
	configPath := fs.String("config", "", "TOML or YAML settings file")
	glbPath := fs.String("glb", "", "also write the full-screen quad as binary glTF")
	soak := fs.Int("soak", 0, "resize the framebuffer this many times before the snapshot")
	frames := fs.Int("frames", 1, "frames to render before the snapshot")
	content := fs.String("content", "", "GUI content: solid or demo (overrides config)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gfx.SetLogger(slog.New(slog.NewTextHandler(s.stderr, &slog.HandlerOptions{Level: level})))
	defer gfx.SetLogger(nil)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *content != "" {
		cfg.Content = *content
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *frames < 1 {
		return errors.New("-frames must be at least 1")
	}

	if *glbPath != "" {
		if err := writeGLB(*glbPath); err != nil {
			return err
		}
	}

	dev := software.New(cfg.Size())
	var adapter gui.Adapter
	switch cfg.Content {
	case "solid":
		adapter = gui.NewSolid(cfg.FillColor())
	default:
		demo := gui.NewDemoWindows(nil)
		defer demo.Close()
		adapter = demo
	}

	engine := renderer.NewEngine(dev, adapter, cfg.Renderer())
	if err := engine.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer engine.Destroy()

	if *soak > 0 {
		if err := s.soak(engine, dev, cfg.Size(), *soak); err != nil {
			return err
		}
	}

	for range *frames {
		if err := engine.Frame(); err != nil {
			return err
		}
	}
	if errs := dev.Errors(); len(errs) > 0 {
		return fmt.Errorf("device reported %d errors, first: %w", len(errs), errs[0])
	}

	if err := writePNG(*out, dev); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "wrote %s (%s)\n", *out, cfg.Size())
	return nil
}

// soak resizes the framebuffer n times, rendering a frame after each, and
// checks that exactly one offscreen target of the requested size is alive.
// The original size is restored afterwards.
func (s *snapshot) soak(engine *renderer.Engine, dev *software.Device, size core.Size, n int) error {
	bar := progressbar.NewOptions(n,
		progressbar.OptionSetWriter(s.stderr),
		progressbar.OptionSetDescription("resize soak"))
	defer bar.Close()

	for i := range n {
		next := core.Size{
			Width:  max(1, size.Width/2+(i*37)%size.Width),
			Height: max(1, size.Height/2+(i*23)%size.Height),
		}
		if err := resize(engine, dev, next); err != nil {
			return fmt.Errorf("soak step %d: %w", i, err)
		}
		if err := engine.Frame(); err != nil {
			return fmt.Errorf("soak step %d: %w", i, err)
		}
		if live := dev.LiveTextures(); live != 1 {
			return fmt.Errorf("soak step %d: %d live render targets, want 1", i, live)
		}
		if got := engine.Offscreen().Size(); got != next {
			return fmt.Errorf("soak step %d: target is %s, want %s", i, got, next)
		}
		_ = bar.Add(1)
	}
	return resize(engine, dev, size)
}

func resize(engine *renderer.Engine, dev *software.Device, size core.Size) error {
	dev.SetScreenSize(size)
	return engine.Resize(size.Width, size.Height)
}

func writeGLB(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create glb: %w", err)
	}
	if err := geometry.WriteGLB(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return verifyGLB(path)
}

// verifyGLB reads an exported quad back and compares it with the geometry
// the renderer draws.
func verifyGLB(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open glb: %w", err)
	}
	defer f.Close()

	verts, indices, err := geometry.ReadGLB(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !slices.Equal(verts, geometry.QuadVertices[:]) || !slices.Equal(indices, geometry.QuadIndices[:]) {
		return fmt.Errorf("%s: quad does not survive the glb round trip", path)
	}
	return nil
}

func writePNG(path string, dev *software.Device) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png: %w", err)
	}
	if err := png.Encode(f, dev.Screen()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}

func main() {
	s := snapshot{stdout: os.Stdout, stderr: os.Stderr}

	if err := s.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "crtsnap: %v\n", err)
		os.Exit(1)
	}
}
