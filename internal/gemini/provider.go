package gemini

import (
	"context"

	"prolink-server/internal/domain"
	"prolink-server/internal/prompt"
)

// GenerateRequest carries everything one generation call needs: the source
// selfie, the optional custom background travelling as the second inline
// image, the full instruction text, and the shorter detail prompt recorded on
// the resulting variant.
type GenerateRequest struct {
	Source           domain.SourceImage
	CustomBackground *domain.SourceImage
	Instruction      string
	RecordedPrompt   string
}

// Provider adapts the wire client to the domain: every successful call yields
// exactly one immutable Variant with a fresh id.
type Provider struct {
	client *Client
}

// NewProvider wraps a configured client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Generate performs one independent generation call.
func (p *Provider) Generate(ctx context.Context, req GenerateRequest) (domain.Variant, error) {
	images := []Image{{Data: req.Source.Data, MIME: req.Source.MIME}}
	if req.CustomBackground != nil {
		images = append(images, Image{Data: req.CustomBackground.Data, MIME: req.CustomBackground.MIME})
	}

	out, err := p.client.GenerateImage(ctx, images, req.Instruction)
	if err != nil {
		return domain.Variant{}, err
	}
	return domain.Variant{
		ID:         domain.NewVariantID(),
		Data:       out.Data,
		MIME:       out.MIME,
		PromptUsed: req.RecordedPrompt,
	}, nil
}

// Edit applies a free-text instruction to an existing variant, wrapped with
// the identity-preservation constraint. Satisfies version.Editor.
func (p *Provider) Edit(ctx context.Context, image domain.Variant, instruction string) (domain.Variant, error) {
	out, err := p.client.GenerateImage(ctx,
		[]Image{{Data: image.Data, MIME: image.MIME}},
		prompt.EditInstruction(instruction))
	if err != nil {
		return domain.Variant{}, err
	}
	return domain.Variant{
		ID:         domain.NewVariantID(),
		Data:       out.Data,
		MIME:       out.MIME,
		PromptUsed: instruction,
	}, nil
}
