package midi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-industrial/debug"
	"go-industrial/pattern"
	"go-industrial/song"
)

// portTimeout bounds port enumeration (CoreMIDI can hang)
const portTimeout = 3 * time.Second

// Sender sends one message to a port
type Sender func(gomidi.Message) error

// scheduleFunc runs fn after d. Returns a cancel func.
type scheduleFunc func(d time.Duration, fn func()) (cancel func() bool)

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Output plays generated notes on a live MIDI port
type Output struct {
	send     Sender
	port     drivers.Out
	kit      pattern.Kit
	schedule scheduleFunc

	mu       sync.Mutex
	sounding map[[2]uint8]int // channel, note -> open note-ons
	pending  map[int]func() bool
	nextID   int
}

// NewOutput wraps send. Drum notes are remapped through kit.
func NewOutput(send Sender, kit pattern.Kit) *Output {
	return &Output{
		send:     send,
		kit:      kit,
		schedule: afterFunc,
		sounding: make(map[[2]uint8]int),
		pending:  make(map[int]func() bool),
	}
}

// OpenOutput opens the named out port; an empty name picks the first port
func OpenOutput(portName string, kit pattern.Kit) (*Output, error) {
	ports, err := outPorts()
	if err != nil {
		return nil, err
	}

	var port drivers.Out
	for _, p := range ports {
		if portName == "" || p.String() == portName || strings.Contains(strings.ToLower(p.String()), strings.ToLower(portName)) {
			port = p
			break
		}
	}
	if port == nil {
		if portName == "" {
			return nil, fmt.Errorf("no midi output ports: %w", song.ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("midi port %q: %w", portName, song.ErrDeviceNotFound)
	}

	sender, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", port.String(), err, song.ErrAudioInitFailed)
	}

	o := NewOutput(sender, kit)
	o.port = port
	debug.Log("output", "opened %s kit=%s", port.String(), kit.Name)
	return o, nil
}

// OutPorts lists output port names
func OutPorts() ([]string, error) {
	ports, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names, nil
}

func outPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case ports := <-ch:
		return ports, nil
	case <-time.After(portTimeout):
		return nil, fmt.Errorf("midi port scan timed out: %w", song.ErrAudioInitFailed)
	}
}

// Name returns the port name, or "" for a wrapped sender
func (o *Output) Name() string {
	if o.port == nil {
		return ""
	}
	return o.port.String()
}

// Program sends a program change
func (o *Output) Program(channel, program uint8) error {
	return o.send(gomidi.ProgramChange(channel, program))
}

// Play schedules notes whose ticks are relative to now, at tempo bpm
func (o *Output) Play(notes []pattern.Event, tempo int) {
	if len(notes) == 0 || tempo <= 0 {
		return
	}
	remapped := make([]pattern.Event, len(notes))
	for i, n := range notes {
		if n.Channel == pattern.DrumChannel {
			n.Pitch = o.kit.Remap(n.Pitch)
		}
		remapped[i] = n
	}

	tickDur := time.Minute / time.Duration(tempo*pattern.PPQ)
	for _, ev := range Expand(remapped) {
		delay := time.Duration(ev.Tick) * tickDur
		if delay <= 0 {
			o.dispatch(ev)
			continue
		}

		o.mu.Lock()
		id := o.nextID
		o.nextID++
		o.pending[id] = o.schedule(delay, func() {
			o.mu.Lock()
			_, live := o.pending[id]
			delete(o.pending, id)
			o.mu.Unlock()
			if live {
				o.dispatch(ev)
			}
		})
		o.mu.Unlock()
	}
}

func (o *Output) dispatch(ev Event) {
	var ch, key, vel uint8
	o.mu.Lock()
	switch {
	case ev.Msg.GetNoteStart(&ch, &key, &vel):
		o.sounding[[2]uint8{ch, key}]++
	case ev.Msg.GetNoteEnd(&ch, &key):
		k := [2]uint8{ch, key}
		if o.sounding[k] <= 1 {
			delete(o.sounding, k)
		} else {
			o.sounding[k]--
		}
	}
	o.mu.Unlock()

	if err := o.send(ev.Msg); err != nil {
		debug.Log("output", "send failed: %v", err)
	}
}

// Sounding returns the number of notes currently held
func (o *Output) Sounding() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.sounding {
		n += c
	}
	return n
}

// Panic cancels scheduled messages and releases every held note
func (o *Output) Panic() {
	o.mu.Lock()
	for id, cancel := range o.pending {
		cancel()
		delete(o.pending, id)
	}
	held := make([][2]uint8, 0, len(o.sounding))
	for k := range o.sounding {
		held = append(held, k)
	}
	o.sounding = make(map[[2]uint8]int)
	o.mu.Unlock()

	for _, k := range held {
		o.send(gomidi.NoteOff(k[0], k[1]))
	}
}

// Close silences the output and closes the port
func (o *Output) Close() error {
	o.Panic()
	if o.port != nil {
		return o.port.Close()
	}
	return nil
}
