package shell

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go-industrial/library"
	"go-industrial/logger"
	"go-industrial/midi"
	"go-industrial/project"
	"go-industrial/sequencer"
	"go-industrial/song"
)

// Execute runs one command line
func (s *Shell) Execute(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		s.help()
	case "exit", "quit":
		return errQuit

	case "list", "ls":
		s.list()
	case "add":
		return s.add(args)
	case "insert":
		return s.insert(args)
	case "remove", "rm":
		return s.remove(args)
	case "move", "mv":
		return s.move(args)
	case "clear":
		s.timeline.Clear()
		s.preset = ""
	case "preset":
		return s.loadPreset(args)

	case "play":
		s.engine.Play()
		s.status()
	case "pause":
		s.engine.Pause()
		s.status()
	case "stop":
		s.engine.Stop()
		s.status()
	case "status":
		s.status()

	case "tempo":
		v, err := intArg(args, "tempo <bpm>")
		if err != nil {
			return err
		}
		s.engine.SetTempo(v)
		fmt.Fprintf(s.out, "tempo %d bpm\n", s.engine.Params().Tempo)
	case "intensity":
		v, err := intArg(args, "intensity <1-10>")
		if err != nil {
			return err
		}
		s.engine.SetIntensity(v)
		fmt.Fprintf(s.out, "intensity %d\n", s.engine.Params().Intensity)
	case "distortion":
		v, err := intArg(args, "distortion <0-100>")
		if err != nil {
			return err
		}
		s.engine.SetDistortion(v)
		fmt.Fprintf(s.out, "distortion %d\n", s.engine.Params().Distortion)
	case "seed":
		if len(args) != 1 {
			return usage("seed <n>")
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", args[0], song.ErrInvalidParameter)
		}
		s.engine.SetSeed(uint32(v))
		fmt.Fprintf(s.out, "seed %d\n", v)
	case "loop":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return usage("loop on|off")
		}
		s.engine.SetLooping(args[0] == "on")
		fmt.Fprintf(s.out, "looping %s\n", args[0])

	case "export":
		return s.export(args)
	case "history":
		return s.showHistory()
	case "save":
		return s.save(args)
	case "load":
		return s.load(args)
	case "saves":
		return s.listSaves(args)

	default:
		return fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return nil
}

func usage(u string) error {
	return fmt.Errorf("usage: %s: %w", u, song.ErrInvalidParameter)
}

func intArg(args []string, u string) (int, error) {
	if len(args) != 1 {
		return 0, usage(u)
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[0], song.ErrInvalidParameter)
	}
	return v, nil
}

// parseSection reads "<kind> [bars] [beatsPerBar]"
func parseSection(args []string) (song.Section, error) {
	if len(args) == 0 || len(args) > 3 {
		return song.Section{}, usage("<kind> [bars] [beats-per-bar]")
	}
	kind, ok := song.LookupKind(args[0])
	if !ok {
		return song.Section{}, fmt.Errorf("unknown section kind %q: %w", args[0], song.ErrInvalidParameter)
	}
	sec := song.NewSection(kind, 4)
	if len(args) > 1 {
		bars, err := strconv.Atoi(args[1])
		if err != nil {
			return song.Section{}, fmt.Errorf("invalid bars %q: %w", args[1], song.ErrInvalidParameter)
		}
		sec.Bars = bars
	}
	if len(args) > 2 {
		bpb, err := strconv.Atoi(args[2])
		if err != nil {
			return song.Section{}, fmt.Errorf("invalid beats per bar %q: %w", args[2], song.ErrInvalidParameter)
		}
		sec.BeatsPerBar = bpb
	}
	return sec, sec.Validate()
}

func (s *Shell) add(args []string) error {
	sec, err := parseSection(args)
	if err != nil {
		return err
	}
	s.timeline.Add(sec)
	s.preset = ""
	return nil
}

func (s *Shell) insert(args []string) error {
	if len(args) < 2 {
		return usage("insert <index> <kind> [bars] [beats-per-bar]")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[0], song.ErrInvalidParameter)
	}
	sec, err := parseSection(args[1:])
	if err != nil {
		return err
	}
	if !s.timeline.Insert(i, sec) {
		return fmt.Errorf("index %d out of range 0-%d: %w", i, s.timeline.Len(), song.ErrInvalidParameter)
	}
	s.preset = ""
	return nil
}

func (s *Shell) remove(args []string) error {
	i, err := intArg(args, "remove <index>")
	if err != nil {
		return err
	}
	if !s.timeline.Remove(i) {
		return fmt.Errorf("no section at %d: %w", i, song.ErrInvalidParameter)
	}
	s.preset = ""
	return nil
}

func (s *Shell) move(args []string) error {
	if len(args) != 2 {
		return usage("move <from> <to>")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage("move <from> <to>")
	}
	if !s.timeline.Move(from, to) {
		return fmt.Errorf("cannot move %d to %d: %w", from, to, song.ErrInvalidParameter)
	}
	s.preset = ""
	return nil
}

func (s *Shell) loadPreset(args []string) error {
	if len(args) == 0 {
		for _, name := range song.Presets() {
			sections, _ := song.Preset(name)
			fmt.Fprintf(s.out, "  %-10s %2d sections, %3d beats\n", name, len(sections), song.TotalBeats(sections))
		}
		return nil
	}
	if err := s.timeline.LoadPreset(args[0]); err != nil {
		return err
	}
	s.preset = args[0]
	s.list()
	return nil
}

func (s *Shell) list() {
	sections := s.timeline.Sections()
	if len(sections) == 0 {
		fmt.Fprintln(s.out, "  (empty timeline)")
		return
	}
	offset := 0
	for i, sec := range sections {
		fmt.Fprintf(s.out, "  %2d  %-14s %3d bars x %d  @ beat %d\n", i, sec.Label(), sec.Bars, sec.BeatsPerBar, offset)
		offset += sec.TotalBeats()
	}
	fmt.Fprintf(s.out, "  total %d beats\n", offset)
}

func (s *Shell) status() {
	snap := s.engine.Snapshot()
	p := s.engine.Params()
	state := "stopped"
	switch {
	case snap.Paused:
		state = "paused"
	case snap.Playing:
		state = "playing"
	}
	fmt.Fprintf(s.out, "[%s] beat %.2f  %s (%.0f%%)  tempo %d  intensity %d  distortion %d  seed %d  loop %v\n",
		state, snap.Beat, snap.SectionName, snap.SectionProgress*100,
		p.Tempo, p.Intensity, p.Distortion, p.Seed, s.engine.Looping())
}

func (s *Shell) export(args []string) error {
	var path string
	switch len(args) {
	case 0:
		path = filepath.Join(s.exportDir, "industrial-"+s.now().Format("2006-01-02_15-04-05")+".mid")
	case 1:
		path = args[0]
	default:
		return usage("export [path]")
	}

	sections := s.timeline.Sections()
	p := s.engine.Params()
	n, err := midi.Export(path, sections, p)
	if err != nil {
		logger.Error("Export failed", err, logger.Fields{"path": path, "preset": s.preset})
		return err
	}
	fmt.Fprintf(s.out, "wrote %s (%d bytes): %s\n", path, n, midi.Describe(sections, p))

	if s.history != nil {
		if _, err := s.history.Record(library.Export{
			Path:       path,
			Preset:     s.preset,
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

func (s *Shell) showHistory() error {
	if s.history == nil {
		return fmt.Errorf("export history is not available")
	}
	exports, err := s.history.List(20)
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Fprintln(s.out, "  (no exports)")
	}
	for _, e := range exports {
		fmt.Fprintf(s.out, "  %s  %-10s %3d bpm  seed %-10d %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Preset, e.Tempo, e.Seed, e.Path)
	}
	return nil
}

func (s *Shell) save(args []string) error {
	if s.projects == nil {
		return fmt.Errorf("projects are not available")
	}
	if len(args) == 0 || len(args) > 2 {
		return usage("save <project> [name]")
	}
	name := ""
	if len(args) == 2 {
		name = args[1]
	}
	doc := project.Capture(s.timeline, s.engine.Params(), s.engine.Looping())
	info, err := s.projects.Save(args[0], name, doc, s.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %s/%s\n", args[0], info.Filename)
	return nil
}

func (s *Shell) load(args []string) error {
	if s.projects == nil {
		return fmt.Errorf("projects are not available")
	}
	if len(args) == 0 || len(args) > 2 {
		return usage("load <project> [file]")
	}
	file := ""
	if len(args) == 2 {
		file = args[1]
	}
	doc, err := s.projects.Load(args[0], file)
	if err != nil {
		return err
	}
	if err := doc.Apply(s.timeline); err != nil {
		return err
	}
	s.engine.SetTempo(doc.Params.Tempo)
	s.engine.SetIntensity(doc.Params.Intensity)
	s.engine.SetDistortion(doc.Params.Distortion)
	s.engine.SetSeed(doc.Params.Seed)
	s.engine.SetLooping(doc.Looping)
	s.preset = ""
	fmt.Fprintf(s.out, "loaded %s: %d sections\n", args[0], len(doc.Sections))
	return nil
}

func (s *Shell) listSaves(args []string) error {
	if s.projects == nil {
		return fmt.Errorf("projects are not available")
	}
	if len(args) == 0 {
		names, err := s.projects.Projects()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(s.out, "  %s\n", n)
		}
		return nil
	}
	saves, err := s.projects.Saves(args[0])
	if err != nil {
		return err
	}
	for _, info := range saves {
		fmt.Fprintf(s.out, "  %s  %s\n", info.Timestamp.Format("2006-01-02 15:04:05"), info.Filename)
	}
	return nil
}

func (s *Shell) help() {
	fmt.Fprintf(s.out, `Timeline:
  list                        Show sections
  add <kind> [bars] [bpb]     Append a section
  insert <i> <kind> [bars]    Insert before index i
  remove <i>                  Remove section i
  move <from> <to>            Move a section before index to
  clear                       Remove every section
  preset [name]               Load a preset (no name lists them)
Playback:
  play | pause | stop | status
  tempo <%d-%d>  intensity <1-10>  distortion <0-100>  seed <n>  loop on|off
Files:
  export [path]               Write a MIDI file
  history                     Recent exports
  save <project> [name]       Save timeline and parameters
  load <project> [file]       Load the newest (or given) save
  saves [project]             List projects or saves
  exit
`, sequencer.MinTempo, sequencer.MaxTempo)
}
