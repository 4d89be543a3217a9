package domain

import "github.com/google/uuid"

// Reserved id and label for the synthetic first entry in a version history.
// It represents the user's unedited uploaded photo, not a model output.
const (
	OriginalUploadID    = "original-upload"
	OriginalUploadLabel = "Original Selfie"
)

// SourceImage is the user's uploaded selfie. Immutable once uploaded; owned by
// the active wizard session.
type SourceImage struct {
	Data []byte
	MIME string
}

// IsZero reports whether no image has been uploaded.
func (s SourceImage) IsZero() bool {
	return len(s.Data) == 0
}

// Variant is one independently generated headshot image. Created only by a
// successful model response and never mutated afterwards.
type Variant struct {
	ID         string
	Data       []byte
	MIME       string
	PromptUsed string
}

// NewVariantID returns a fresh unique variant identifier.
func NewVariantID() string {
	return uuid.NewString()
}

// PseudoOriginal wraps the uploaded selfie as the sentinel first history entry.
func PseudoOriginal(src SourceImage) Variant {
	return Variant{
		ID:         OriginalUploadID,
		Data:       src.Data,
		MIME:       src.MIME,
		PromptUsed: OriginalUploadLabel,
	}
}
