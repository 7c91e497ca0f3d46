package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"

	"go-industrial/config"
	"go-industrial/library"
	"go-industrial/logger"
	"go-industrial/midi"
	"go-industrial/pattern"
	"go-industrial/project"
	"go-industrial/sequencer"
	"go-industrial/server"
	"go-industrial/shell"
	"go-industrial/song"
	"go-industrial/theme"
	"go-industrial/tui"
)

// wallSeed is the seed used when neither flags nor config pin one
func wallSeed() uint32 {
	return uint32(time.Now().UnixNano())
}

// arrangement resolves the sections to use: the newest save of projectName
// when given, otherwise the named preset
func arrangement(presetName, projectName string) ([]song.Section, *project.Document, error) {
	if projectName != "" {
		store, err := project.DefaultStore()
		if err != nil {
			return nil, nil, err
		}
		doc, err := store.Load(projectName, "")
		if err != nil {
			return nil, nil, err
		}
		return doc.Sections, &doc, nil
	}
	if presetName == "" {
		presetName = song.DefaultPreset
	}
	sections, ok := song.Preset(presetName)
	if !ok {
		return nil, nil, fmt.Errorf("unknown preset %q: %w", presetName, song.ErrInvalidParameter)
	}
	return sections, nil, nil
}

// openHistory opens the export history, logging instead of failing
func openHistory(cfg *config.Config) *library.Library {
	lib, err := library.Open(cfg.DatabasePath())
	if err != nil {
		logger.Warn("Export history unavailable", logger.Fields{"path": cfg.DatabasePath(), "error": err.Error()})
		return nil
	}
	return lib
}

func runExport(cfg *config.Config, args []string) error {
	p, err := cfg.Params(wallSeed())
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	preset := fs.String("preset", cfg.Generation.Preset, "arrangement preset")
	proj := fs.String("project", "", "render the newest save of a project")
	tempo := fs.Int("tempo", p.Tempo, "tempo in BPM")
	intensity := fs.Int("intensity", p.Intensity, "intensity 1-10")
	distortion := fs.Int("distortion", p.Distortion, "distortion 0-100")
	seed := fs.Uint("seed", uint(p.Seed), "random seed")
	out := fs.String("out", "", "output file (default <export dir>/industrial-<seed>.mid)")
	fs.Parse(args)

	sections, doc, err := arrangement(*preset, *proj)
	if err != nil {
		return err
	}
	if doc != nil {
		p = doc.Params
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if doc == nil || set["tempo"] {
		p.Tempo = *tempo
	}
	if doc == nil || set["intensity"] {
		p.Intensity = *intensity
	}
	if doc == nil || set["distortion"] {
		p.Distortion = *distortion
	}
	if doc == nil || set["seed"] {
		p.Seed = uint32(*seed)
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.ExportDir(), fmt.Sprintf("industrial-%d.mid", p.Seed))
	}

	n, err := midi.Export(path, sections, p)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes): %s\n", path, n, midi.Describe(sections, p))

	if lib := openHistory(cfg); lib != nil {
		defer lib.Close()
		name := *preset
		if *proj != "" {
			name = *proj
		}
		if _, err := lib.Record(library.Export{
			Path:       path,
			Preset:     name,
			Sections:   len(sections),
			Tempo:      p.Tempo,
			Intensity:  p.Intensity,
			Distortion: p.Distortion,
			Seed:       p.Seed,
			Bytes:      n,
		}); err != nil {
			logger.Warn("Failed to record export", logger.Fields{"path": path, "error": err.Error()})
		}
	}
	return nil
}

func runInspect(_ *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: inspect <file.mid>: %w", song.ErrInvalidParameter)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	sum, err := midi.Inspect(data)
	if err != nil {
		return err
	}
	fmt.Println(sum.String())
	for i, n := range sum.Notes {
		fmt.Printf("  track %d: %d notes\n", i, n)
	}
	return nil
}

// newEngine builds a started engine over the given arrangement
func newEngine(cfg *config.Config, sections []song.Section, doc *project.Document, sink sequencer.NoteSink) (*sequencer.Engine, error) {
	p, err := cfg.Params(wallSeed())
	if err != nil {
		return nil, err
	}
	looping := cfg.Generation.Looping
	if doc != nil {
		p = doc.Params
		looping = doc.Looping
	}

	opts := []sequencer.Option{sequencer.WithParams(p)}
	if sink != nil {
		opts = append(opts, sequencer.WithSink(sink))
	}
	engine := sequencer.NewEngine(song.NewTimeline(sections...), opts...)
	engine.SetLooping(looping)
	engine.Start()
	return engine, nil
}

// openOutput opens the live port and selects the bass and lead programs
func openOutput(portName, kitName string) (*midi.Output, error) {
	out, err := midi.OpenOutput(portName, pattern.GetKit(kitName))
	if err != nil {
		return nil, err
	}
	if err := out.Program(pattern.BassChannel, pattern.BassProgram); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Program(pattern.LeadChannel, pattern.LeadProgram); err != nil {
		out.Close()
		return nil, err
	}
	logger.Info("MIDI output opened", logger.Fields{"port": out.Name(), "kit": kitName})
	return out, nil
}

func runPlay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	preset := fs.String("preset", cfg.Generation.Preset, "arrangement preset")
	proj := fs.String("project", "", "play the newest save of a project")
	loop := fs.Bool("loop", cfg.Generation.Looping, "loop at the end of the song")
	port := fs.String("port", cfg.Output.PortName, "MIDI output port (empty: monitor only)")
	kit := fs.String("kit", cfg.Output.Kit, "drum kit mapping")
	fs.Parse(args)

	sections, doc, err := arrangement(*preset, *proj)
	if err != nil {
		return err
	}

	var out *midi.Output
	var sink sequencer.NoteSink
	if *port != "" {
		if out, err = openOutput(*port, *kit); err != nil {
			return err
		}
		defer out.Close()
		sink = out
	}

	engine, err := newEngine(cfg, sections, doc, sink)
	if err != nil {
		return err
	}
	defer engine.Close()
	engine.SetLooping(*loop)

	palette, err := theme.LoadOrDefault(cfg.UI.PalettePath)
	if err != nil {
		logger.Warn("Palette not loaded, using built-in", logger.Fields{"path": cfg.UI.PalettePath, "error": err.Error()})
		palette = theme.Industrial()
	}

	m := tui.NewModel(engine, theme.New(palette))
	m.Export = func() (string, error) {
		p := engine.Params()
		path := filepath.Join(cfg.ExportDir(), fmt.Sprintf("industrial-%d.mid", p.Seed))
		n, err := midi.Export(path, engine.Timeline().Sections(), p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("wrote %s (%d bytes)", path, n), nil
	}

	if *port != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w := midi.NewWatcher(*port)
		go w.Run(ctx)
		m.Ports = w.Events()
	}

	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err = prog.Run()
	return err
}

func runShell(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	preset := fs.String("preset", cfg.Generation.Preset, "starting preset")
	proj := fs.String("project", "", "start from the newest save of a project")
	port := fs.String("port", cfg.Output.PortName, "MIDI output port (empty: silent)")
	kit := fs.String("kit", cfg.Output.Kit, "drum kit mapping")
	fs.Parse(args)

	sections, doc, err := arrangement(*preset, *proj)
	if err != nil {
		return err
	}

	var sink sequencer.NoteSink
	if *port != "" {
		out, err := openOutput(*port, *kit)
		if err != nil {
			return err
		}
		defer out.Close()
		sink = out
	}

	engine, err := newEngine(cfg, sections, doc, sink)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []shell.Option{shell.WithExportDir(cfg.ExportDir())}
	if store, err := project.DefaultStore(); err == nil {
		opts = append(opts, shell.WithProjects(store))
	}
	if lib := openHistory(cfg); lib != nil {
		defer lib.Close()
		opts = append(opts, shell.WithHistory(lib))
	}

	historyFile := ".industrial_history"
	if dir, err := config.ConfigDir(); err == nil {
		if err := os.MkdirAll(dir, 0755); err == nil {
			historyFile = filepath.Join(dir, "shell_history")
		}
	}
	return shell.New(engine, opts...).Run(historyFile)
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	preset := fs.String("preset", cfg.Generation.Preset, "arrangement for the playback endpoints")
	fs.Parse(args)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sections, _, err := arrangement(*preset, "")
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, sections, nil, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := []server.Option{server.WithExportDir(cfg.ExportDir())}
	if lib := openHistory(cfg); lib != nil {
		defer lib.Close()
		opts = append(opts, server.WithHistory(lib))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(engine, version, opts...).ListenAndServe(ctx, *addr)
}

func runPresets(_ *config.Config, _ []string) error {
	for _, name := range song.Presets() {
		sections, _ := song.Preset(name)
		marker := " "
		if name == song.DefaultPreset {
			marker = "*"
		}
		fmt.Printf("%s %-10s %2d sections, %3d beats\n", marker, name, len(sections), song.TotalBeats(sections))
		for _, s := range sections {
			fmt.Printf("      %-14s %d bars\n", s.Label(), s.Bars)
		}
	}
	return nil
}

func runPorts(_ *config.Config, _ []string) error {
	names, err := midi.OutPorts()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no MIDI output ports (build with -tags midi_native for the rtmidi driver)")
		return nil
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
	return nil
}

func runHistory(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of exports to show")
	fs.Parse(args)

	lib, err := library.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer lib.Close()

	exports, err := lib.List(*limit)
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Println("no exports yet")
		return nil
	}
	for _, e := range exports {
		fmt.Printf("%s  %-10s %3d bpm  int %2d  seed %-10d %6d B  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Preset, e.Tempo, e.Intensity, e.Seed, e.Bytes, e.Path)
	}
	return nil
}

func runConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	write := fs.Bool("write", false, "save the effective config to the config file")
	fs.Parse(args)

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if *write {
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info("Config saved", logger.Fields{"path": path})
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s\n", path, data)
	return nil
}
