// Package version maintains the linear, append-only version history for one
// generation session and applies instruction-driven edits to the currently
// selected version.
package version

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"prolink-server/internal/domain"
)

// Editor produces an edited variant from an existing image and a free-text
// instruction. Implemented by the Gemini provider; stubbed in tests.
type Editor interface {
	Edit(ctx context.Context, image domain.Variant, instruction string) (domain.Variant, error)
}

// History is the ordered sequence of variants for one session. Index 0 is
// always the pseudo-original upload, index 1 the first accepted generation.
// Entries are only ever appended; the current pointer may move to any entry.
type History struct {
	mu       sync.Mutex
	entries  []domain.Variant
	current  int
	inFlight bool
}

// Init seeds a history with the pseudo-original and the user's selected
// generated variant. The current pointer starts at the generated variant.
func Init(originalUpload domain.SourceImage, firstAccepted domain.Variant) *History {
	return &History{
		entries: []domain.Variant{domain.PseudoOriginal(originalUpload), firstAccepted},
		current: 1,
	}
}

// Entries returns a copy of the version sequence in creation order.
func (h *History) Entries() []domain.Variant {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Variant, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of versions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Current returns the currently selected variant.
func (h *History) Current() domain.Variant {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.current]
}

// Select moves the current pointer to the entry with the given id. Selecting
// an unknown id fails with domain.ErrNotFound and changes nothing.
func (h *History) Select(variantID string) (domain.Variant, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, v := range h.entries {
		if v.ID == variantID {
			h.current = i
			return v, nil
		}
	}
	return domain.Variant{}, fmt.Errorf("version %s: %w", variantID, domain.ErrNotFound)
}

// ApplyEdit sends the currently selected variant plus the instruction to the
// editor and, on success, appends the result and selects it. Edits from an
// older selected version still append to the end of the single linear
// sequence; the history never forks. At most one edit may be in flight; a
// second concurrent call fails with domain.ErrEditInFlight. On editor failure
// the history and current pointer are unchanged.
func (h *History) ApplyEdit(ctx context.Context, editor Editor, instruction string) (domain.Variant, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return domain.Variant{}, domain.ErrEmptyInstruction
	}

	h.mu.Lock()
	if h.inFlight {
		h.mu.Unlock()
		return domain.Variant{}, domain.ErrEditInFlight
	}
	h.inFlight = true
	base := h.entries[h.current]
	h.mu.Unlock()

	edited, err := editor.Edit(ctx, base, instruction)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.inFlight = false
	if err != nil {
		return domain.Variant{}, fmt.Errorf("apply edit: %w", err)
	}
	h.entries = append(h.entries, edited)
	h.current = len(h.entries) - 1
	return edited, nil
}
