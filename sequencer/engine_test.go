package sequencer

import (
	"cmp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-industrial/pattern"
	"go-industrial/song"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingSink struct {
	mu     sync.Mutex
	calls  [][]pattern.Event
	tempos []int
	panics int
}

func (s *recordingSink) Play(events []pattern.Event, tempo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, events)
	s.tempos = append(s.tempos, tempo)
}

func (s *recordingSink) Panic() {
	s.mu.Lock()
	s.panics++
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestEngine(t *testing.T, sections []song.Section, tempo int, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	p := song.DefaultParams()
	p.Tempo = tempo
	opts = append([]Option{WithClock(clock.Now), WithParams(p)}, opts...)
	e := NewEngine(song.NewTimeline(sections...), opts...)
	t.Cleanup(e.Close)
	return e, clock
}

func fourBarVerse() []song.Section {
	return []song.Section{song.NewSection(song.Verse, 4)}
}

func TestEngineStartsStopped(t *testing.T) {
	e, _ := newTestEngine(t, fourBarVerse(), 60)
	s := e.Snapshot()
	require.NotNil(t, s)
	assert.False(t, s.Playing)
	assert.Equal(t, 0.0, s.Beat)
	assert.Len(t, s.Frequencies, SpectrumBins)
	assert.Equal(t, "VERSE", s.SectionName)
}

func TestEngineMonotonic(t *testing.T) {
	e, clock := newTestEngine(t, fourBarVerse(), 90)
	e.Play()

	prev := e.Snapshot().Beat
	for i := 0; i < 50; i++ {
		clock.Advance(100 * time.Millisecond)
		e.Tick()
		cur := e.Snapshot().Beat
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	// 5 seconds at 90 bpm
	assert.InDelta(t, 7.5, prev, 1e-9)
}

func TestEnginePauseFreezesAndResumes(t *testing.T) {
	e, clock := newTestEngine(t, fourBarVerse(), 60)
	e.Play()
	clock.Advance(2500 * time.Millisecond)
	e.Tick()
	e.Pause()

	s := e.Snapshot()
	assert.True(t, s.Paused)
	assert.InDelta(t, 2.5, s.Beat, 1e-9)

	clock.Advance(10 * time.Second)
	e.Tick()
	assert.InDelta(t, 2.5, e.Snapshot().Beat, 1e-9)

	e.Play()
	clock.Advance(time.Second)
	e.Tick()
	s = e.Snapshot()
	assert.False(t, s.Paused)
	assert.InDelta(t, 3.5, s.Beat, 1e-9)
}

func TestEngineStopResets(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, []song.Section{song.NewSection(song.Intro, 1), song.NewSection(song.Chorus, 2)}, 60, WithSink(sink))
	e.Play()
	clock.Advance(6 * time.Second)
	e.Tick()
	require.Equal(t, 1, e.Snapshot().Section)

	e.Stop()
	s := e.Snapshot()
	assert.False(t, s.Playing)
	assert.False(t, s.Paused)
	assert.Equal(t, 0.0, s.Beat)
	assert.Equal(t, 0, s.Section)
	assert.Equal(t, 1, sink.panics)

	clock.Advance(time.Second)
	e.Tick()
	assert.Equal(t, 0.0, e.Snapshot().Beat)

	e.Play()
	assert.Equal(t, 0.0, e.Snapshot().Beat, "play after stop starts from the top")
}

func TestEngineLoopWrap(t *testing.T) {
	e, clock := newTestEngine(t, []song.Section{song.NewSection(song.Verse, 1)}, 60)
	e.SetLooping(true)
	e.Play()

	clock.Advance(5500 * time.Millisecond)
	e.Tick()
	s := e.Snapshot()
	assert.InDelta(t, 1.5, s.Beat, 1e-9)
	assert.True(t, s.Looping)

	for i := 0; i < 40; i++ {
		clock.Advance(700 * time.Millisecond)
		e.Tick()
		b := e.Snapshot().Beat
		assert.GreaterOrEqual(t, b, 0.0)
		assert.Less(t, b, 4.0)
	}
	// 5.5 + 28 = 33.5 seconds, no drift across wraps
	assert.InDelta(t, 1.5, e.Snapshot().Beat, 1e-6)
}

func TestEnginePastEndWithoutLoop(t *testing.T) {
	e, clock := newTestEngine(t, []song.Section{song.NewSection(song.Intro, 1), song.NewSection(song.Outro, 1)}, 60)
	e.Play()
	clock.Advance(20 * time.Second)
	e.Tick()

	s := e.Snapshot()
	assert.True(t, s.Playing)
	assert.InDelta(t, 20.0, s.Beat, 1e-9)
	assert.Equal(t, 1, s.Section)
	assert.Equal(t, song.Outro, s.Kind)
	assert.Equal(t, 1.0, s.SectionProgress)
	assert.Equal(t, 1.0, s.TotalProgress)
}

func TestEngineProgress(t *testing.T) {
	e, clock := newTestEngine(t, []song.Section{song.NewSection(song.Intro, 1), song.NewSection(song.Verse, 1)}, 60)
	e.Play()
	clock.Advance(6 * time.Second)
	e.Tick()

	s := e.Snapshot()
	assert.Equal(t, 1, s.Section)
	assert.InDelta(t, 0.5, s.SectionProgress, 1e-9)
	assert.InDelta(t, 0.75, s.TotalProgress, 1e-9)
}

func TestEngineTempoChangeKeepsPosition(t *testing.T) {
	e, clock := newTestEngine(t, fourBarVerse(), 60)
	e.Play()
	clock.Advance(2 * time.Second)
	e.Tick()
	require.InDelta(t, 2.0, e.Snapshot().Beat, 1e-9)

	e.SetTempo(120)
	e.Tick()
	assert.InDelta(t, 2.0, e.Snapshot().Beat, 1e-9)

	clock.Advance(time.Second)
	e.Tick()
	s := e.Snapshot()
	assert.InDelta(t, 4.0, s.Beat, 1e-9)
	assert.Equal(t, 120, s.Tempo)
}

func TestEngineParameterClamping(t *testing.T) {
	e, _ := newTestEngine(t, fourBarVerse(), 60)
	e.SetTempo(1)
	e.SetIntensity(42)
	e.SetDistortion(-3)
	p := e.Params()
	assert.Equal(t, MinTempo, p.Tempo)
	assert.Equal(t, 10, p.Intensity)
	assert.Equal(t, 0, p.Distortion)
}

func TestEngineKeepsEncodableTempo(t *testing.T) {
	for _, tempo := range []int{song.MinTempo, 16, 70, 240, song.MaxTempo} {
		p := song.DefaultParams()
		p.Tempo = tempo
		require.NoError(t, p.Validate())

		e := NewEngine(song.NewTimeline(fourBarVerse()...), WithParams(p))
		assert.Equal(t, tempo, e.Params().Tempo)
		e.Tick()
		assert.Equal(t, tempo, e.Snapshot().Tempo)
		e.Close()
	}
}

func TestEngineEmptyTimeline(t *testing.T) {
	e, clock := newTestEngine(t, nil, 60)
	e.Play()
	clock.Advance(3 * time.Second)
	e.Tick()

	s := e.Snapshot()
	assert.True(t, s.Playing)
	assert.Equal(t, 0.0, s.Beat)
	assert.Equal(t, 0, s.Section)
}

func TestEngineTimelineEditDuringPlayback(t *testing.T) {
	e, clock := newTestEngine(t, fourBarVerse(), 60)
	e.Play()
	clock.Advance(3 * time.Second)
	e.Tick()

	e.Timeline().Insert(0, song.NewSection(song.Intro, 1))
	e.Tick()
	s := e.Snapshot()
	assert.Equal(t, 0, s.Section)
	assert.Equal(t, song.Intro, s.Kind)
}

func sortEvents(events []pattern.Event) {
	slices.SortFunc(events, func(a, b pattern.Event) int {
		return cmp.Or(
			cmp.Compare(a.StartTick, b.StartTick),
			cmp.Compare(a.Channel, b.Channel),
			cmp.Compare(a.Pitch, b.Pitch),
		)
	})
}

func TestEngineDispatchMatchesFile(t *testing.T) {
	sections, ok := song.Preset(song.PresetIndustrial)
	require.True(t, ok)

	sink := &recordingSink{}
	clock := newFakeClock()
	p := song.Params{Tempo: 120, Intensity: 8, Distortion: 10, Seed: 42}
	e := NewEngine(song.NewTimeline(sections...), WithClock(clock.Now), WithSink(sink), WithParams(p))
	t.Cleanup(e.Close)

	var live []pattern.Event
	collect := func(beat int, from int) {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		for _, call := range sink.calls[from:] {
			live = append(live, pattern.Shift(call, uint32(beat*pattern.PPQ))...)
		}
	}

	e.Play()
	collect(0, 0)
	total := song.TotalBeats(sections)
	for beat := 1; beat < total; beat++ {
		before := sink.count()
		clock.Advance(500 * time.Millisecond)
		e.Tick()
		collect(beat, before)
	}

	var file []pattern.Event
	file = append(file, pattern.DrumTrack(sections, p.Intensity, p.Seed)...)
	file = append(file, pattern.BassTrack(sections, p.Intensity, p.Seed)...)
	file = append(file, pattern.LeadTrack(sections, p.Intensity, p.Seed)...)

	sortEvents(live)
	sortEvents(file)
	assert.Equal(t, file, live)
	for _, tempo := range sink.tempos {
		assert.Equal(t, 120, tempo)
	}
}

func TestEngineCatchUpIsBounded(t *testing.T) {
	sink := &recordingSink{}
	e, clock := newTestEngine(t, []song.Section{song.NewSection(song.Verse, 16)}, 60, WithSink(sink))
	e.Play()
	require.Equal(t, 1, sink.count())

	clock.Advance(30 * time.Second)
	e.Tick()
	assert.Equal(t, 1+maxCatchUp, sink.count())
}

func TestEngineLoop(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(song.NewTimeline(fourBarVerse()...), WithClock(clock.Now), WithFrameInterval(time.Millisecond))
	e.Start()
	e.Play()

	clock.Advance(2 * time.Second)
	assert.Eventually(t, func() bool {
		return e.Snapshot().Beat > 0
	}, time.Second, time.Millisecond)

	e.Pause()
	e.Stop()
	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}

func TestSpectrum(t *testing.T) {
	bins, avg := Spectrum(0, 10)
	require.Len(t, bins, SpectrumBins)
	assert.InDelta(t, 0.5, bins[0], 1e-6)
	assert.Greater(t, avg, float32(0))
	assert.Less(t, avg, float32(1))

	quiet, quietAvg := Spectrum(3.3, 1)
	loud, loudAvg := Spectrum(3.3, 10)
	assert.InDelta(t, float64(loud[100])/10, float64(quiet[100]), 1e-6)
	assert.Less(t, quietAvg, loudAvg)
}

func TestPullEarlier(t *testing.T) {
	events := []pattern.Event{
		{Pitch: 1, StartTick: 0, DurationTicks: 60},
		{Pitch: 2, StartTick: 0, DurationTicks: 960},
		{Pitch: 3, StartTick: 240, DurationTicks: 60},
	}
	out := pullEarlier(events, 100)
	require.Len(t, out, 2)
	assert.Equal(t, pattern.Event{Pitch: 2, StartTick: 0, DurationTicks: 860}, out[0])
	assert.Equal(t, pattern.Event{Pitch: 3, StartTick: 140, DurationTicks: 60}, out[1])
}
