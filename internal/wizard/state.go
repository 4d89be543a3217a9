package wizard

import (
	"sync"
	"time"

	"prolink-server/internal/domain"
	"prolink-server/internal/version"
)

// Step enumerates the wizard screens in order.
type Step int

const (
	StepUpload Step = iota
	StepFeatures
	StepGeneration
	StepEditor
	StepProjects
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepFeatures:
		return "features"
	case StepGeneration:
		return "generation"
	case StepEditor:
		return "editor"
	case StepProjects:
		return "projects"
	}
	return "unknown"
}

// GalleryState tracks the generation screen's state machine.
type GalleryState string

const (
	GalleryIdle         GalleryState = "idle"
	GalleryGenerating   GalleryState = "generating"
	GalleryPopulated    GalleryState = "populated"
	GalleryEmptyFailure GalleryState = "empty_failure"
)

// State is the mutable per-tab wizard state: the uploaded selfie, the current
// selection, the variant gallery and the editor history. It is owned by one
// browser session and discarded on reset; saved projects outlive it.
type State struct {
	mu sync.Mutex

	ID        string
	Step      Step
	Source    domain.SourceImage
	Selection Selection

	Gallery GalleryState
	// BatchID identifies the generation batch whose results may still be
	// merged into Variants. Regenerating bumps it, so stragglers from an
	// abandoned batch are dropped.
	BatchID  string
	Variants []domain.Variant
	// PendingGenerate marks a generation requested before sign-in; the
	// sign-in handler re-triggers it with the freshly-resolved session.
	PendingGenerate bool

	History *version.History

	LastActivity time.Time
}

// Do runs fn with the state locked and stamps activity.
func (s *State) Do(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
	s.LastActivity = time.Now()
}

// View copies the fields relevant for rendering while holding the lock.
func (s *State) View() (Step, GalleryState, []domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	variants := make([]domain.Variant, len(s.Variants))
	copy(variants, s.Variants)
	return s.Step, s.Gallery, variants
}

// Store keeps wizard states keyed by session id.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
	ttl    time.Duration
}

// Options controls the store.
type Options struct {
	TTL time.Duration
}

// NewStore builds an empty store. Stale states are evicted lazily on access
// once they exceed the TTL.
func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{states: make(map[string]*State), ttl: ttl}
}

// GetOrCreate returns the state for a session id, creating a fresh one at the
// upload step when absent or expired.
func (s *Store) GetOrCreate(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[id]; ok && time.Since(st.LastActivity) < s.ttl {
		return st
	}
	st := &State{
		ID:           id,
		Step:         StepUpload,
		Selection:    NewSelection(),
		Gallery:      GalleryIdle,
		LastActivity: time.Now(),
	}
	s.states[id] = st
	return st
}

// Reset discards the session-owned state, returning the wizard to the upload
// step. Saved projects are untouched.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}
