package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"go-industrial/library"
	"go-industrial/project"
	"go-industrial/sequencer"
	"go-industrial/song"
)

// errQuit ends the read loop
var errQuit = errors.New("quit")

// Shell is an interactive timeline editor driving a playback engine
type Shell struct {
	engine    *sequencer.Engine
	timeline  *song.Timeline
	projects  *project.Store   // optional
	history   *library.Library // optional
	exportDir string
	preset    string
	out       io.Writer
	now       func() time.Time
}

// Option configures a Shell
type Option func(*Shell)

// WithProjects enables save/load/saves
func WithProjects(store *project.Store) Option {
	return func(s *Shell) { s.projects = store }
}

// WithHistory records exports in lib
func WithHistory(lib *library.Library) Option {
	return func(s *Shell) { s.history = lib }
}

// WithExportDir sets the directory for exports given without a path
func WithExportDir(dir string) Option {
	return func(s *Shell) { s.exportDir = dir }
}

// WithOutput redirects command output (default stdout)
func WithOutput(w io.Writer) Option {
	return func(s *Shell) { s.out = w }
}

// New creates a shell editing the engine's timeline
func New(engine *sequencer.Engine, opts ...Option) *Shell {
	s := &Shell{
		engine:   engine,
		timeline: engine.Timeline(),
		out:      os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands until exit or Ctrl-C
func (s *Shell) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "industrial> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	s.timeline.OnChange(func(i int, sec song.Section) {
		rl.Clean()
		fmt.Fprintf(s.out, "  timeline changed at %d (%d sections, %d beats)\n", i, s.timeline.Len(), s.timeline.TotalBeats())
		rl.Refresh()
	})
	defer s.timeline.OnChange(nil)

	fmt.Fprintln(s.out, "go-industrial shell. Type 'help' for commands.")
	s.status()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(s.out, "Exiting shell...")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := s.Execute(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func completer() readline.AutoCompleter {
	kinds := make([]readline.PrefixCompleterInterface, 0, len(song.Kinds()))
	for _, k := range song.Kinds() {
		kinds = append(kinds, readline.PcItem(strings.ToLower(k.String())))
	}
	presets := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range song.Presets() {
		presets = append(presets, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("add", kinds...),
		readline.PcItem("insert"),
		readline.PcItem("remove"),
		readline.PcItem("move"),
		readline.PcItem("clear"),
		readline.PcItem("preset", presets...),
		readline.PcItem("play"),
		readline.PcItem("pause"),
		readline.PcItem("stop"),
		readline.PcItem("status"),
		readline.PcItem("tempo"),
		readline.PcItem("intensity"),
		readline.PcItem("distortion"),
		readline.PcItem("seed"),
		readline.PcItem("loop",
			readline.PcItem("on"),
			readline.PcItem("off"),
		),
		readline.PcItem("export"),
		readline.PcItem("history"),
		readline.PcItem("save"),
		readline.PcItem("load"),
		readline.PcItem("saves"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}
