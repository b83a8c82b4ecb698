package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lunarc/script-bridge/ecs"
	"github.com/lunarc/script-bridge/script"
)

type config struct {
	Scripts string  `env:"SCENERUN_SCRIPTS" envDefault:"scripts"`
	Frames  int     `env:"SCENERUN_FRAMES" envDefault:"60"`
	Delta   float64 `env:"SCENERUN_DT" envDefault:"0.016"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parse environment: %v\n", err)
		os.Exit(1)
	}

	var (
		scripts     = flag.String("scripts", cfg.Scripts, "Script directories (comma-separated)")
		scene       = flag.String("scene", "", "Entities to spawn (module.Class,module.Class,...)")
		frames      = flag.Int("frames", cfg.Frames, "Number of frames to run")
		dt          = flag.Float64("dt", cfg.Delta, "Simulated seconds per frame")
		verbose     = flag.Bool("v", false, "Verbose bridge logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *scene == "" {
		fmt.Fprintln(os.Stderr, "Usage: scenerun -scene module.Class[,module.Class...] [-scripts dirs] [-frames n] [-dt s]")
		fmt.Fprintln(os.Stderr, "       scenerun -scene module.Class -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: build logger: %v\n", err)
			os.Exit(1)
		}
		script.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*scripts, *scene, *dt); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*scripts, *scene, *frames, *dt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scriptDirs, sceneStr string, frames int, dt float64) error {
	bus := ecs.NewEventBus()
	store := ecs.NewStore(bus)

	mgr := script.NewManager(store)
	mgr.AddSearchPaths(strings.Split(scriptDirs, ","))
	mgr.LogTo(
		func(line string) { fmt.Println(line) },
		func(line string) { fmt.Fprintln(os.Stderr, line) },
	)
	if err := mgr.Configure(bus); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	defer mgr.Close()

	for _, spec := range strings.Split(sceneStr, ",") {
		module, class, err := splitSpec(spec)
		if err != nil {
			return err
		}
		e := store.Create()
		if _, err := mgr.AttachScript(e, module, class); err != nil {
			return fmt.Errorf("attach %s: %w", spec, err)
		}
		fmt.Printf("Spawned %s as entity %s\n", spec, e)
	}

	for i := 0; i < frames; i++ {
		if err := mgr.Update(dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	fmt.Printf("Ran %d frames, %d entities alive\n", frames, store.Len())
	return nil
}

// splitSpec parses "module.Class". The last dot separates the two, so
// nested module paths stay intact.
func splitSpec(spec string) (module, class string, err error) {
	i := strings.LastIndexByte(spec, '.')
	if i <= 0 || i == len(spec)-1 {
		return "", "", fmt.Errorf("invalid scene entry %q, want module.Class", spec)
	}
	return spec[:i], spec[i+1:], nil
}
