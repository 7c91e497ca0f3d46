package song

import (
	"fmt"
	"sync"
)

// ChangeFunc is called after every timeline mutation with the affected index
// and the section now at that index (zero Section if none).
type ChangeFunc func(index int, s Section)

// Timeline is the ordered sequence of sections that make up an arrangement.
// It is safe for concurrent use; readers always see a whole edit or none of it.
type Timeline struct {
	mu       sync.RWMutex
	sections []Section
	onChange ChangeFunc
}

// NewTimeline creates a timeline holding a copy of sections
func NewTimeline(sections ...Section) *Timeline {
	t := &Timeline{}
	t.sections = append(t.sections, sections...)
	return t
}

// OnChange sets the change notification callback (nil to disable)
func (t *Timeline) OnChange(fn ChangeFunc) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Sections returns a snapshot copy of the sequence
func (t *Timeline) Sections() []Section {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Section, len(t.sections))
	copy(out, t.sections)
	return out
}

// Len returns the number of sections
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sections)
}

// Section returns the section at index i
func (t *Timeline) Section(i int) (Section, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.sections) {
		return Section{}, false
	}
	return t.sections[i], true
}

// Add appends a section
func (t *Timeline) Add(s Section) {
	t.mu.Lock()
	t.sections = append(t.sections, s)
	idx := len(t.sections) - 1
	t.mu.Unlock()
	t.notify(idx)
}

// Insert places s at index i, shifting later sections right.
// i == Len() appends.
func (t *Timeline) Insert(i int, s Section) bool {
	t.mu.Lock()
	if i < 0 || i > len(t.sections) {
		t.mu.Unlock()
		return false
	}
	t.sections = append(t.sections, Section{})
	copy(t.sections[i+1:], t.sections[i:])
	t.sections[i] = s
	t.mu.Unlock()
	t.notify(i)
	return true
}

// Remove deletes the section at index i
func (t *Timeline) Remove(i int) bool {
	t.mu.Lock()
	if i < 0 || i >= len(t.sections) {
		t.mu.Unlock()
		return false
	}
	t.sections = append(t.sections[:i], t.sections[i+1:]...)
	t.mu.Unlock()
	t.notify(i)
	return true
}

// Move lifts the section at from and drops it before the section that was at
// to. to == Len() drops it at the end.
func (t *Timeline) Move(from, to int) bool {
	t.mu.Lock()
	n := len(t.sections)
	if from < 0 || from >= n || to < 0 || to > n {
		t.mu.Unlock()
		return false
	}
	if from == to {
		t.mu.Unlock()
		return false
	}
	s := t.sections[from]
	t.sections = append(t.sections[:from], t.sections[from+1:]...)
	dst := to
	if to > from {
		dst = to - 1
	}
	t.sections = append(t.sections, Section{})
	copy(t.sections[dst+1:], t.sections[dst:])
	t.sections[dst] = s
	t.mu.Unlock()
	t.notify(min(from, to))
	return true
}

// Clear removes every section
func (t *Timeline) Clear() {
	t.mu.Lock()
	t.sections = nil
	t.mu.Unlock()
	t.notify(0)
}

// Replace swaps in a new sequence in one edit
func (t *Timeline) Replace(sections []Section) {
	t.mu.Lock()
	t.sections = append([]Section(nil), sections...)
	t.mu.Unlock()
	t.notify(0)
}

// LoadPreset replaces the sequence with a named preset
func (t *Timeline) LoadPreset(name string) error {
	sections, ok := Preset(name)
	if !ok {
		return fmt.Errorf("preset %q: %w", name, ErrInvalidParameter)
	}
	t.Replace(sections)
	return nil
}

// TotalBeats sums TotalBeats over every section
func (t *Timeline) TotalBeats() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TotalBeats(t.sections)
}

// BeatOffset returns the beats preceding section i
func (t *Timeline) BeatOffset(i int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return BeatOffset(t.sections, i)
}

// TotalDuration returns the arrangement length in seconds at bpm
func (t *Timeline) TotalDuration(bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return float64(t.TotalBeats()) * 60 / float64(bpm)
}

// Validate reports whether the timeline can be generated or played
func (t *Timeline) Validate() error {
	return Validate(t.Sections())
}

func (t *Timeline) notify(idx int) {
	t.mu.RLock()
	fn := t.onChange
	var s Section
	if idx >= 0 && idx < len(t.sections) {
		s = t.sections[idx]
	}
	t.mu.RUnlock()
	if fn != nil {
		fn(idx, s)
	}
}

// Helpers over plain snapshots, shared by the encoder and the clock.

// TotalBeats sums the beats of sections
func TotalBeats(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += s.TotalBeats()
	}
	return total
}

// BeatOffset returns the beats of sections[0:i]; i past the end yields the total
func BeatOffset(sections []Section, i int) int {
	if i > len(sections) {
		i = len(sections)
	}
	beats := 0
	for j := 0; j < i; j++ {
		beats += sections[j].TotalBeats()
	}
	return beats
}

// SectionAt returns the index of the first section whose range contains beat
// and that section's starting beat. ok is false when beat is past the end.
func SectionAt(sections []Section, beat float64) (index, start int, ok bool) {
	offset := 0
	for i, s := range sections {
		n := s.TotalBeats()
		if beat < float64(offset+n) {
			return i, offset, true
		}
		offset += n
	}
	return len(sections) - 1, offset, false
}

// Validate rejects an empty sequence or a malformed section
func Validate(sections []Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("song structure is empty: %w", ErrInvalidParameter)
	}
	total := 0
	for i, s := range sections {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if s.TotalBeats() > MaxBeats-total {
			return fmt.Errorf("song longer than %d beats: %w", MaxBeats, ErrInvalidParameter)
		}
		total += s.TotalBeats()
	}
	return nil
}
