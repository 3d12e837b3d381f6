package payload

import (
	"encoding/base64"
	"strings"
)

// MaxRequestBytes is the default ceiling on the sum of decoded image bytes in one request.
const MaxRequestBytes = 32 * 1024 * 1024

// ImageAttachment is one caller-supplied image. DeclaredMIME is empty when the caller omitted it.
type ImageAttachment struct {
	EncodedData  string
	DeclaredMIME string
}

// DecodedImage is an attachment that passed validation.
type DecodedImage struct {
	Index        int
	Bytes        []byte
	ByteLength   int
	ResolvedMIME string
	DeclaredMIME string
	Encoded      string
}

// Budget tracks the decoded bytes consumed by a single request.
type Budget struct {
	Limit int
	Used  int
}

// NewBudget returns an empty budget. A non-positive limit means MaxRequestBytes.
func NewBudget(limit int) *Budget {
	if limit <= 0 {
		limit = MaxRequestBytes
	}
	return &Budget{Limit: limit}
}

// EstimateDecodedLen returns ceil(n*3/4), the decoded size of n base64 characters before padding is discounted.
func EstimateDecodedLen(n int) int {
	return (n*3 + 3) / 4
}

// IsBlank reports whether the encoded text is empty once surrounding whitespace is removed.
func IsBlank(encoded string) bool {
	return strings.TrimSpace(encoded) == ""
}

// Decode validates and decodes one attachment against the remaining budget.
// Blank attachments return (nil, nil) and consume nothing. The budget is only
// charged when the image is accepted.
func (b *Budget) Decode(index int, att ImageAttachment) (*DecodedImage, error) {
	if IsBlank(att.EncodedData) {
		return nil, nil
	}
	encoded := att.EncodedData

	estimate := EstimateDecodedLen(len(encoded)) - trailingPadding(encoded)
	if b.Used+estimate > b.Limit {
		return nil, &ImageError{Index: index, Err: ErrPayloadTooLarge}
	}

	data, err := decodeStrict(encoded)
	if err != nil {
		return nil, &ImageError{Index: index, Err: ErrInvalidEncoding}
	}
	if b.Used+len(data) > b.Limit {
		return nil, &ImageError{Index: index, Err: ErrPayloadTooLarge}
	}
	b.Used += len(data)

	return &DecodedImage{
		Index:        index,
		Bytes:        data,
		ByteLength:   len(data),
		ResolvedMIME: ResolveMIME(data, att.DeclaredMIME),
		DeclaredMIME: att.DeclaredMIME,
		Encoded:      encoded,
	}, nil
}

// DecodeAll decodes attachments in order and stops at the first failure.
func DecodeAll(attachments []ImageAttachment, limit int) ([]*DecodedImage, *Budget, error) {
	budget := NewBudget(limit)
	images := make([]*DecodedImage, 0, len(attachments))
	for i, att := range attachments {
		img, err := budget.Decode(i, att)
		if err != nil {
			return nil, budget, err
		}
		if img != nil {
			images = append(images, img)
		}
	}
	return images, budget, nil
}

// decodeStrict rejects line breaks, which encoding/base64 would otherwise skip.
func decodeStrict(encoded string) ([]byte, error) {
	if strings.ContainsAny(encoded, "\r\n") {
		return nil, base64.CorruptInputError(strings.IndexAny(encoded, "\r\n"))
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func trailingPadding(encoded string) int {
	n := 0
	for i := len(encoded) - 1; i >= 0 && n < 2 && encoded[i] == '='; i-- {
		n++
	}
	return n
}
