package payload

import "strings"

// ContentBlock is either a TextBlock or an ImageBlock.
type ContentBlock interface {
	contentBlock()
}

// TextBlock carries the prompt. It is always the first block.
type TextBlock struct {
	Text string
}

// ImageBlock references an image through a data URL.
type ImageBlock struct {
	MIME    string
	DataURL string
}

func (TextBlock) contentBlock()  {}
func (ImageBlock) contentBlock() {}

// InferenceRequest is the normalized input of one /infer call.
type InferenceRequest struct {
	Prompt string
	Images []ImageAttachment
}

// Prepared holds everything the gateway and the diagnostics need for one request.
type Prepared struct {
	Blocks     []ContentBlock
	Images     []*DecodedImage
	TotalBytes int
}

// DataURL builds data:<mime>;base64,<encoded> from the caller's original text.
func DataURL(mime, encoded string) string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mime) + len(encoded))
	sb.WriteString("data:")
	sb.WriteString(mime)
	sb.WriteString(";base64,")
	sb.WriteString(encoded)
	return sb.String()
}

// Build returns the prompt as the first block followed by one block per image, in order.
func Build(prompt string, images []*DecodedImage) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(images)+1)
	blocks = append(blocks, TextBlock{Text: prompt})
	for _, img := range images {
		blocks = append(blocks, ImageBlock{
			MIME:    img.ResolvedMIME,
			DataURL: DataURL(img.ResolvedMIME, img.Encoded),
		})
	}
	return blocks
}

// Prepare decodes every attachment under a shared budget and builds the block sequence.
// Nothing is built if any attachment fails.
func Prepare(req InferenceRequest, limit int) (*Prepared, error) {
	images, budget, err := DecodeAll(req.Images, limit)
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Blocks:     Build(req.Prompt, images),
		Images:     images,
		TotalBytes: budget.Used,
	}, nil
}
