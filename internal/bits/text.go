package bits

import "strings"

const (
	ByteWidth = 8

	// Placeholder stands in for any group that cannot be rendered as a character.
	Placeholder = '?'
)

// TextToBinary maps every character to its 8-bit code, MSB first.
// Characters above one byte are encoded as the placeholder.
func TextToBinary(text string) Sequence {
	var sb strings.Builder
	sb.Grow(len(text) * ByteWidth)

	for _, r := range text {
		if r > 0xFF {
			r = Placeholder
		}
		sb.WriteString(string(FromUint(uint64(r), ByteWidth)))
	}

	return Sequence(sb.String())
}

// BinaryToText decodes consecutive 8-bit groups into characters.
// A trailing group shorter than 8 bits is dropped, a group holding anything
// other than '0'/'1' becomes the placeholder.
func BinaryToText(s Sequence) string {
	var sb strings.Builder

	for _, group := range s.Chunks(ByteWidth) {
		if len(group) < ByteWidth {
			break
		}

		if !group.Valid() {
			sb.WriteRune(Placeholder)
			continue
		}

		sb.WriteRune(rune(group.Uint()))
	}

	return sb.String()
}
