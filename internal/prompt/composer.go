// Package prompt turns a completed feature selection into the natural-language
// instruction handed to the image model. Composition is pure: no I/O, and equal
// selections always produce identical strings.
package prompt

import (
	"fmt"
	"strings"

	"prolink-server/internal/catalog"
	"prolink-server/internal/wizard"
)

// customBackgroundDirective replaces the background label when the user
// supplied their own background image.
const customBackgroundDirective = "Use provided background image"

// Compose renders the five selected features as the model-facing detail block.
// Every label is embedded verbatim so the model sees exactly what the user
// picked.
func Compose(sel wizard.Selection) string {
	// Keyed off the label, not the attachment: a custom-upload selection
	// whose bytes went missing still composes the directive branch.
	background := sel.Background.Label()
	if background == catalog.CustomUploadBackground {
		background = customBackgroundDirective
	}

	lines := []string{
		"Professional Vibe: " + sel.Vibe,
		"Attire: " + sel.Attire,
		"Background: " + background,
		"Lighting: " + sel.Lighting,
		"Camera Angle: " + sel.Angle,
	}
	return strings.Join(lines, "\n")
}

const standardTemplate = `Task: Retouch this photo to create a professional studio photo.
CRITICAL INSTRUCTION: You MUST strictly preserve the person's face, facial structure, identity, and expression from the source image. The face in the output must be recognizable as the exact same person. Do not generate a new face.
Changes allowed: Replace the outfit, background, and improve the lighting/quality.
Target Details: %s
Quality: Photorealistic, 8k resolution, highly detailed skin texture, professional studio photography.`

const compositeTemplate = `Task: Composite the person from the FIRST image into the background provided in the SECOND image.
CRITICAL INSTRUCTION: You MUST strictly preserve the person's face, facial structure, identity, and expression from the FIRST image. The face in the output must be recognizable as the exact same person.
Changes allowed: Replace the outfit to match the target description, merge naturally with the SECOND image as background, and apply the requested lighting/angle.
Target Details: %s
Quality: Photorealistic, 8k resolution, highly detailed skin texture, professional studio photography.`

const editTemplate = `Edit this image: %s.
IMPORTANT: Keep the person's face, identity, and facial features EXACTLY the same. Do not alter the facial structure.`

// GenerationInstruction wraps the composed detail block in the outer template.
// The composite form is used when a custom background image travels alongside
// the source photo as the second inline image.
func GenerationInstruction(detail string, composite bool) string {
	if composite {
		return fmt.Sprintf(compositeTemplate, detail)
	}
	return fmt.Sprintf(standardTemplate, detail)
}

// EditInstruction wraps a free-text edit request with the same hard
// identity-preservation constraint as generation.
func EditInstruction(instruction string) string {
	return fmt.Sprintf(editTemplate, strings.TrimSpace(instruction))
}
