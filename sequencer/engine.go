package sequencer

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go-industrial/debug"
	"go-industrial/pattern"
	"go-industrial/song"
)

// Tempo limits for live playback, the same range the file encoder accepts
const (
	MinTempo = song.MinTempo
	MaxTempo = song.MaxTempo
)

// DefaultFrameInterval is roughly 60 updates per second
const DefaultFrameInterval = 16 * time.Millisecond

// maxCatchUp bounds how many missed beats are dispatched after a stall
const maxCatchUp = 8

// Clock returns the current wall-clock time
type Clock func() time.Time

// NoteSink receives generated notes as the playhead crosses beats. Ticks
// are relative to the moment Play is called.
type NoteSink interface {
	Play(events []pattern.Event, tempo int)
	Panic()
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(c Clock) Option {
	return func(e *Engine) { e.now = c }
}

// WithSink sends live notes to s
func WithSink(s NoteSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithFrameInterval sets the loop period
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.frame = d
		}
	}
}

// WithParams sets the starting parameters
func WithParams(p song.Params) Option {
	return func(e *Engine) {
		e.SetTempo(p.Tempo)
		e.SetIntensity(p.Intensity)
		e.SetDistortion(p.Distortion)
		e.SetSeed(p.Seed)
	}
}

// Engine is the playback clock. A background loop advances the beat from
// elapsed wall-clock time and publishes immutable snapshots.
type Engine struct {
	timeline *song.Timeline
	now      Clock
	sink     NoteSink
	frame    time.Duration

	// parameters, effective on the next tick
	tempo      atomic.Int32
	intensity  atomic.Int32
	distortion atomic.Int32
	seed       atomic.Uint32
	looping    atomic.Bool

	// transport
	mu       sync.Mutex
	playing  bool
	paused   bool
	start    time.Time // wall-clock reference for baseBeat
	baseBeat float64
	lastBeat int // last integer beat dispatched to the sink

	snap   atomic.Pointer[Snapshot]
	tickMu sync.Mutex // serializes Tick between the loop and transport calls

	stopChan  chan struct{}
	wakeChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	running   atomic.Bool

	// UpdateChan receives a value (non-blocking) after every published snapshot
	UpdateChan chan struct{}
}

// NewEngine creates a stopped engine reading tl
func NewEngine(tl *song.Timeline, opts ...Option) *Engine {
	e := &Engine{
		timeline:   tl,
		now:        time.Now,
		frame:      DefaultFrameInterval,
		lastBeat:   -1,
		stopChan:   make(chan struct{}),
		wakeChan:   make(chan struct{}, 1),
		done:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
	defaults := song.DefaultParams()
	e.tempo.Store(int32(defaults.Tempo))
	e.intensity.Store(int32(defaults.Intensity))
	e.distortion.Store(int32(defaults.Distortion))

	for _, opt := range opts {
		opt(e)
	}
	e.publish(e.idleSnapshot())
	return e
}

// Start launches the background loop
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.running.Store(true)
		go e.run()
	})
}

// Close stops the loop, waits for it to exit and silences the sink
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.stopChan)
		if e.running.Load() {
			<-e.done
		}
		if e.sink != nil {
			e.sink.Panic()
		}
	})
}

func (e *Engine) run() {
	defer close(e.done)
	ticker := time.NewTicker(e.frame)
	defer ticker.Stop()

	for {
		if !e.active() {
			// idle until Play
			select {
			case <-e.stopChan:
				return
			case <-e.wakeChan:
			}
			continue
		}

		select {
		case <-e.stopChan:
			return
		case <-e.wakeChan:
		case <-ticker.C:
			e.Tick()
		}
	}
}

func (e *Engine) active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing && !e.paused
}

func (e *Engine) wake() {
	select {
	case e.wakeChan <- struct{}{}:
	default:
	}
}

// Play starts playback, or resumes from the paused position
func (e *Engine) Play() {
	now := e.now()
	e.mu.Lock()
	switch {
	case e.playing && !e.paused:
		e.mu.Unlock()
		return
	case e.paused:
		e.paused = false
		e.start = now
	default:
		e.playing = true
		e.baseBeat = 0
		e.lastBeat = -1
		e.start = now
	}
	e.mu.Unlock()

	debug.Log("engine", "play tempo=%d", e.tempo.Load())
	e.wake()
	e.Tick()
}

// Pause freezes the beat at its current value
func (e *Engine) Pause() {
	now := e.now()
	e.mu.Lock()
	if !e.playing || e.paused {
		e.mu.Unlock()
		return
	}
	beat := e.beatLocked(now)
	e.baseBeat = beat
	e.paused = true
	e.mu.Unlock()

	debug.Log("engine", "pause beat=%.3f", beat)
	if e.sink != nil {
		e.sink.Panic()
	}
	e.Tick()
}

// Stop resets the position to the top of the song
func (e *Engine) Stop() {
	e.mu.Lock()
	e.playing = false
	e.paused = false
	e.baseBeat = 0
	e.lastBeat = -1
	e.mu.Unlock()

	debug.Log("engine", "stop")
	if e.sink != nil {
		e.sink.Panic()
	}
	e.Tick()
}

// TogglePlay plays when stopped or paused and pauses when playing
func (e *Engine) TogglePlay() {
	if e.active() {
		e.Pause()
	} else {
		e.Play()
	}
}

// SetTempo sets the BPM, clamped to MinTempo..MaxTempo. The position
// reached so far is kept.
func (e *Engine) SetTempo(bpm int) {
	bpm = min(max(bpm, MinTempo), MaxTempo)
	now := e.now()
	e.mu.Lock()
	if e.playing && !e.paused {
		e.baseBeat = e.beatLocked(now)
		e.start = now
	}
	e.tempo.Store(int32(bpm))
	e.mu.Unlock()
}

// SetIntensity sets 1..10
func (e *Engine) SetIntensity(v int) {
	e.intensity.Store(int32(min(max(v, song.MinIntensity), song.MaxIntensity)))
}

// SetDistortion sets 0..100
func (e *Engine) SetDistortion(v int) {
	e.distortion.Store(int32(min(max(v, song.MinDistortion), song.MaxDistortion)))
}

// SetSeed sets the seed used for live notes
func (e *Engine) SetSeed(seed uint32) {
	e.seed.Store(seed)
}

// SetLooping toggles wrapping at the end of the song
func (e *Engine) SetLooping(on bool) {
	e.looping.Store(on)
}

// Looping reports whether playback wraps at the end
func (e *Engine) Looping() bool {
	return e.looping.Load()
}

// Params returns the current generation parameters
func (e *Engine) Params() song.Params {
	p := song.DefaultParams()
	p.Tempo = int(e.tempo.Load())
	p.Intensity = int(e.intensity.Load())
	p.Distortion = int(e.distortion.Load())
	p.Seed = e.seed.Load()
	return p
}

// Timeline returns the timeline the engine reads
func (e *Engine) Timeline() *song.Timeline {
	return e.timeline
}

// Snapshot returns the latest published state. Never nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// beatLocked computes the beat at now; e.mu must be held
func (e *Engine) beatLocked(now time.Time) float64 {
	if !e.playing || e.paused {
		return e.baseBeat
	}
	elapsed := now.Sub(e.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return e.baseBeat + elapsed*float64(e.tempo.Load())/60
}

// Tick advances one frame: position, looping, live notes and snapshot.
// The loop calls it every frame interval.
func (e *Engine) Tick() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	now := e.now()
	sections := e.timeline.Sections()
	total := song.TotalBeats(sections)

	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		e.publish(e.idleSnapshot())
		return
	}
	if total == 0 {
		// nothing to play; keep the flags, hold at zero
		e.baseBeat = 0
		e.start = now
		paused := e.paused
		e.mu.Unlock()
		s := e.idleSnapshot()
		s.Playing = true
		s.Paused = paused
		e.publish(s)
		return
	}

	beat := e.beatLocked(now)
	paused := e.paused

	var crossed []int
	if !paused {
		cur := int(math.Floor(beat))
		if e.looping.Load() && beat >= float64(total) {
			// finish the beats before the wrap, then start over
			crossed = appendCrossed(crossed, e.lastBeat, total-1)
			beat = math.Mod(beat, float64(total))
			e.baseBeat = beat
			e.start = now
			e.lastBeat = -1
			cur = int(math.Floor(beat))
			debug.Log("engine", "loop wrap beat=%.3f", beat)
		}
		crossed = appendCrossed(crossed, e.lastBeat, min(cur, total-1))
		if cur > e.lastBeat {
			e.lastBeat = cur
		}
	}
	e.mu.Unlock()

	if e.sink != nil && len(crossed) > 0 {
		e.dispatch(sections, crossed, beat)
	}

	s := e.snapshotAt(sections, total, beat)
	s.Playing = true
	s.Paused = paused
	e.publish(s)
	debug.LogEvery(60, "engine", "beat=%.3f section=%d", s.Beat, s.Section)
}

// appendCrossed adds the beats in (last, upTo], keeping at most maxCatchUp
func appendCrossed(dst []int, last, upTo int) []int {
	from := last + 1
	if upTo-from+1 > maxCatchUp {
		from = upTo - maxCatchUp + 1
	}
	for b := from; b <= upTo; b++ {
		dst = append(dst, b)
	}
	return dst
}

// dispatch sends the notes of each crossed beat. Notes are pulled earlier
// by however far the playhead already is past the last crossed beat.
func (e *Engine) dispatch(sections []song.Section, beats []int, pos float64) {
	tempo := int(e.tempo.Load())
	intensity := int(e.intensity.Load())
	seed := e.seed.Load()

	last := beats[len(beats)-1]
	late := uint32(0)
	if frac := pos - float64(last); frac > 0 && frac < 1 {
		late = uint32(frac * pattern.PPQ)
	}

	for _, b := range beats {
		events := BeatNotes(sections, b, intensity, seed)
		if len(events) == 0 {
			continue
		}
		if b == last {
			events = pullEarlier(events, late)
		}
		e.sink.Play(events, tempo)
	}
}

// BeatNotes returns every note that starts within global beat b: the drums
// for that beat plus bass and lead when b opens a bar. Ticks are relative
// to the start of b.
func BeatNotes(sections []song.Section, b, intensity int, seed uint32) []pattern.Event {
	events := pattern.BeatEvents(sections, b, intensity, seed)
	if bar, ok := pattern.BarAt(sections, b); ok {
		events = append(events, pattern.BarEvents(pattern.PartBass, sections, bar, intensity, seed)...)
		events = append(events, pattern.BarEvents(pattern.PartLead, sections, bar, intensity, seed)...)
	}
	return events
}

func pullEarlier(events []pattern.Event, ticks uint32) []pattern.Event {
	if ticks == 0 {
		return events
	}
	out := make([]pattern.Event, 0, len(events))
	for _, ev := range events {
		switch {
		case ev.StartTick >= ticks:
			ev.StartTick -= ticks
		case ev.EndTick() > ticks:
			ev.DurationTicks = ev.EndTick() - ticks
			ev.StartTick = 0
		default:
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (e *Engine) publish(s *Snapshot) {
	e.snap.Store(s)
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}
