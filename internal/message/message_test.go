package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
)

func TestEncode_CRC(t *testing.T) {
	// Given: the default generator 1011
	// When
	encoded, err := Encode("Hi", codec.MethodCRC)

	// Then
	require.NoError(t, err)
	assert.Equal(t, bits.Sequence("0100100001101001"), encoded.Binary)
	assert.Len(t, encoded.EncodedData, 19)
	assert.Equal(t, encoded.Binary, encoded.EncodedData[:16])
	assert.Equal(t, string(encoded.EncodedData[16:]), encoded.ControlInfo)

	decoded, err := Decode(encoded.EncodedData, codec.MethodCRC)
	require.NoError(t, err)
	assert.Equal(t, "Hi", decoded.DecodedText)
	assert.True(t, decoded.ControlMatch)
	assert.True(t, decoded.Valid)
	assert.Empty(t, decoded.ErrorDetails)
}

func TestRoundTrip(t *testing.T) {
	for _, method := range codec.Methods() {
		for _, text := range []string{"", "Hi", "Hello, world!", "tic tac toe"} {
			t.Run(string(method)+"/"+text, func(t *testing.T) {
				encoded, err := Encode(text, method)
				require.NoError(t, err)

				decoded, err := Decode(encoded.EncodedData, method)
				require.NoError(t, err)

				assert.Equal(t, text, decoded.DecodedText)
				assert.True(t, decoded.Valid)
				assert.False(t, decoded.ErrorsDetected)
				assert.False(t, decoded.ErrorsCorrected)
				assert.True(t, decoded.ControlMatch)
				assert.Equal(t, "clean", decoded.Outcome())
			})
		}
	}
}

func TestEncode_Layouts(t *testing.T) {
	t.Run("Parity appends one bit per byte", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodParity)

		require.NoError(t, err)
		assert.Equal(t, "parity_bits", encoded.ControlInfo)
		// H = 01001000 (2 ones), i = 01101001 (4 ones)
		assert.Equal(t, bits.Sequence("010010000"+"011010010"), encoded.EncodedData)
	})

	t.Run("Hamming expands every nibble to 7 bits", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodHamming)

		require.NoError(t, err)
		assert.Equal(t, "hamming_7_4", encoded.ControlInfo)
		assert.Len(t, encoded.EncodedData, 28)
		assert.Equal(t, codec.EncodeHamming("0100"), encoded.EncodedData[:7])
	})

	t.Run("Checksum appends one block", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodChecksum)

		require.NoError(t, err)
		assert.Equal(t, "01001110", encoded.ControlInfo)
		assert.Len(t, encoded.EncodedData, 24)
	})

	t.Run("Unknown method", func(t *testing.T) {
		_, err := Encode("Hi", codec.Method("rot13"))

		require.ErrorIs(t, err, codec.ErrUnknownMethod)
	})
}

func TestDecode_Hamming(t *testing.T) {
	t.Run("Single flip is corrected and never detected", func(t *testing.T) {
		// Given
		encoded, err := Encode("Hi", codec.MethodHamming)
		require.NoError(t, err)

		// When: bit 3 (1-indexed) of the second block is flipped
		decoded, err := Decode(encoded.EncodedData.Flip(9), codec.MethodHamming)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "Hi", decoded.DecodedText)
		assert.True(t, decoded.ErrorsCorrected)
		assert.False(t, decoded.ErrorsDetected)
		assert.True(t, decoded.Valid)
		assert.True(t, decoded.ControlMatch)
		assert.Equal(t, []string{"Hamming corrected bit 3"}, decoded.ErrorDetails)
		assert.Equal(t, "corrected", decoded.Outcome())
	})

	t.Run("Two flips in one block stay valid", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodHamming)
		require.NoError(t, err)

		decoded, err := Decode(encoded.EncodedData.Flip(0).Flip(1), codec.MethodHamming)

		require.NoError(t, err)
		assert.True(t, decoded.Valid)
		assert.False(t, decoded.ErrorsDetected)
		assert.NotEqual(t, "Hi", decoded.DecodedText)
	})

	t.Run("Trailing partial block is ignored", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodHamming)
		require.NoError(t, err)

		decoded, err := Decode(encoded.EncodedData+"101", codec.MethodHamming)

		require.NoError(t, err)
		assert.Equal(t, "Hi", decoded.DecodedText)
		assert.False(t, decoded.ErrorsCorrected)
	})
}

func TestDecode_Detection(t *testing.T) {
	t.Run("Parity names the damaged block", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodParity)
		require.NoError(t, err)

		// When: bit 2 of the first byte flips, H becomes h
		decoded, err := Decode(encoded.EncodedData.Flip(2), codec.MethodParity)

		require.NoError(t, err)
		assert.False(t, decoded.Valid)
		assert.True(t, decoded.ErrorsDetected)
		assert.False(t, decoded.ControlMatch)
		assert.Equal(t, []string{"Parity error at block 0"}, decoded.ErrorDetails)
		assert.Equal(t, "hi", decoded.DecodedText)
		assert.Equal(t, "00", decoded.ReceivedControl)
		assert.Equal(t, "10", decoded.CalculatedControl)
		assert.Equal(t, "detected", decoded.Outcome())
	})

	t.Run("Parity reads a missing last parity bit as zero", func(t *testing.T) {
		decoded, err := Decode("01001000", codec.MethodParity)

		require.NoError(t, err)
		assert.True(t, decoded.Valid)
		assert.Equal(t, "H", decoded.DecodedText)
	})

	t.Run("CRC mismatch", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodCRC)
		require.NoError(t, err)

		decoded, err := Decode(encoded.EncodedData.Flip(5), codec.MethodCRC)

		require.NoError(t, err)
		assert.False(t, decoded.Valid)
		assert.False(t, decoded.ControlMatch)
		assert.Equal(t, []string{"CRC mismatch"}, decoded.ErrorDetails)
		assert.NotEqual(t, decoded.ReceivedControl, decoded.CalculatedControl)
	})

	t.Run("Checksum mismatch", func(t *testing.T) {
		encoded, err := Encode("Hi", codec.MethodChecksum)
		require.NoError(t, err)

		decoded, err := Decode(encoded.EncodedData.Flip(20), codec.MethodChecksum)

		require.NoError(t, err)
		assert.False(t, decoded.Valid)
		assert.Equal(t, []string{"Checksum mismatch"}, decoded.ErrorDetails)
		assert.Equal(t, "Hi", decoded.DecodedText)
	})

	t.Run("Payload shorter than its control field", func(t *testing.T) {
		decoded, err := Decode("01", codec.MethodCRC)

		require.NoError(t, err)
		assert.False(t, decoded.Valid)
		assert.True(t, decoded.ErrorsDetected)
		assert.Len(t, decoded.ErrorDetails, 1)
		assert.Empty(t, decoded.DecodedText)
	})

	t.Run("Payload holding only its control field", func(t *testing.T) {
		for method, encoded := range map[codec.Method]bits.Sequence{
			codec.MethodCRC:      "000",
			codec.MethodChecksum: "11111111",
		} {
			// When: the payload is exactly as long as the control block
			decoded, err := Decode(encoded, method)

			// Then: it is reported, never compared against an empty control
			require.NoError(t, err)
			assert.False(t, decoded.Valid, method)
			assert.True(t, decoded.ErrorsDetected, method)
			assert.Empty(t, decoded.ReceivedControl, method)
			assert.Empty(t, decoded.DecodedText, method)
		}
	})

	t.Run("Unknown method", func(t *testing.T) {
		_, err := Decode("0101", codec.Method("xor"))

		require.ErrorIs(t, err, codec.ErrUnknownMethod)
	})
}

func TestNew(t *testing.T) {
	t.Run("Custom options", func(t *testing.T) {
		opts := codec.DefaultOptions()
		opts.Generator = "10011"
		opts.Parity = codec.ParityOdd
		opts.BlockWidth = 16

		pipeline, err := New(opts)
		require.NoError(t, err)
		assert.Equal(t, opts, pipeline.Options())

		for _, method := range codec.Methods() {
			encoded, err := pipeline.Encode("Hey", method)
			require.NoError(t, err)

			decoded, err := pipeline.Decode(encoded.EncodedData, method)
			require.NoError(t, err)
			assert.True(t, decoded.Valid, method)
			assert.Equal(t, "Hey", decoded.DecodedText, method)
		}

		encoded, err := pipeline.Encode("Hi", codec.MethodCRC)
		require.NoError(t, err)
		assert.Len(t, encoded.EncodedData, 20)
	})

	t.Run("Invalid options", func(t *testing.T) {
		opts := codec.DefaultOptions()
		opts.BlockWidth = 64

		pipeline, err := New(opts)

		require.ErrorIs(t, err, codec.ErrInvalidBlockWidth)
		assert.Nil(t, pipeline)
	})
}
