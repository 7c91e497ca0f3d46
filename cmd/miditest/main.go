package main

import (
	"fmt"
	"os"
	"time"

	"go-industrial/midi"
	"go-industrial/pattern"
	"go-industrial/song"
)

const testTempo = 120

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "pattern":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		kit := pattern.DefaultKit
		if len(os.Args) > 3 {
			kit = os.Args[3]
		}
		err = playPattern(port, kit)
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                  - List MIDI output ports")
	fmt.Println("  pattern [port] [kit]  - Send one chorus bar to a port")
	fmt.Println("")
	fmt.Println("Kits:", pattern.KitNames())
}

func listPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, err := midi.OutPorts()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("  none (build with -tags midi_native)")
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
	return nil
}

// playPattern sends one bar of chorus at full intensity
func playPattern(port, kitName string) error {
	out, err := midi.OpenOutput(port, pattern.GetKit(kitName))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Program(pattern.BassChannel, pattern.BassProgram); err != nil {
		return err
	}
	if err := out.Program(pattern.LeadChannel, pattern.LeadProgram); err != nil {
		return err
	}

	sections := []song.Section{song.NewSection(song.Chorus, 1)}
	seed := uint32(time.Now().UnixNano())
	var events []pattern.Event
	for _, part := range []pattern.Part{pattern.PartDrums, pattern.PartBass, pattern.PartLead} {
		events = append(events, pattern.Track(part, sections, song.MaxIntensity, seed)...)
	}

	fmt.Printf("Sending %d notes to %s (kit %s, seed %d)\n", len(events), out.Name(), kitName, seed)
	out.Play(events, testTempo)

	bar := time.Duration(sections[0].TotalBeats()) * time.Minute / testTempo
	time.Sleep(bar + 200*time.Millisecond)
	out.Panic()
	fmt.Println("Done")
	return nil
}
