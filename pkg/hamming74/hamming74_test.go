package hamming74_test

import (
	"bytes"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/channel"
	. "github.com/tuomas-lb/hamming74/pkg/hamming74"
)

func flipAt(s string, i int) string {
	b := []byte(s)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

func randomBitString(rng *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + rng.Intn(2)))
	}
	return sb.String()
}

var _ = Describe("Stream codec", func() {

	Describe("encoding", func() {
		table.DescribeTable("produces the framed stream",
			func(input, expected string) {
				encoded, err := EncodeStream(input)
				Expect(err).NotTo(HaveOccurred())
				Expect(encoded).To(Equal(expected))
			},
			table.Entry("empty input is a marker-only byte", "", "00010000"),
			table.Entry("an aligned chunk", "1100", "0111100"+"0001"+"00000"),
			table.Entry("a chunk needing one padding bit", "101", "1011010"+"0011"+"00000"),
		)

		It("keeps every stream byte-aligned", func() {
			rng := rand.New(rand.NewSource(7))
			for n := 0; n < 200; n++ {
				encoded, err := EncodeStream(randomBitString(rng, n))
				Expect(err).NotTo(HaveOccurred())
				Expect(len(encoded) % 8).To(BeZero())
			}
		})

		It("rejects non-binary characters", func() {
			_, err := EncodeStream("10a1")
			Expect(err).To(MatchError(ErrInvalidInput))
		})
	})

	Describe("decoding", func() {
		It("inverts encoding for every length", func() {
			rng := rand.New(rand.NewSource(11))
			for n := 0; n < 200; n++ {
				original := randomBitString(rng, n)
				encoded, err := EncodeStream(original)
				Expect(err).NotTo(HaveOccurred())
				decoded, err := DecodeStream(encoded)
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded).To(Equal(original))
			}
		})

		It("decodes the marker-only stream to nothing", func() {
			decoded, err := DecodeStream("00010000")
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(BeEmpty())
		})

		It("corrects a single flipped bit in any codeword", func() {
			original := "1011000111101"
			encoded, err := EncodeStream(original)
			Expect(err).NotTo(HaveOccurred())
			codeLen := (len(original) + 3) / 4 * 7
			for i := 0; i < codeLen; i++ {
				decoded, err := DecodeStream(flipAt(encoded, i))
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded).To(Equal(original), "flipped bit %d", i)
			}
		})

		It("miscorrects two flipped bits in one codeword", func() {
			encoded, err := EncodeStream("0000")
			Expect(err).NotTo(HaveOccurred())
			decoded, err := DecodeStream(flipAt(flipAt(encoded, 0), 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).NotTo(Equal("0000"))
			Expect(decoded).To(Equal("1000"))
		})

		It("recovers the text message with stream bit 16 flipped", func() {
			message := "Hello world!"
			encoded, err := EncodeStream(BytesToBits([]byte(message)))
			Expect(err).NotTo(HaveOccurred())

			decoded, err := DecodeStream(flipAt(encoded, 16))
			Expect(err).NotTo(HaveOccurred())
			text, err := BitsToBytes(decoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(text)).To(Equal(message))
		})

		table.DescribeTable("rejects malformed streams",
			func(input string, kind error) {
				_, err := DecodeStream(input)
				Expect(err).To(MatchError(kind))
			},
			table.Entry("no sentinel", "00000000", ErrMalformedStream),
			table.Entry("truncated marker", "01000000", ErrMalformedStream),
			table.Entry("misaligned codewords", "11"+"0001"+"00", ErrMalformedStream),
			table.Entry("non-binary character", "0001x000", ErrInvalidInput),
		)
	})
})

var _ = Describe("Byte bridge", func() {
	It("renders bytes MSB first", func() {
		Expect(BytesToBits([]byte{0x80, 0x01})).To(Equal("1000000000000001"))
		Expect(BytesToBits(nil)).To(BeEmpty())
	})

	It("round-trips arbitrary bytes", func() {
		rng := rand.New(rand.NewSource(5))
		for n := 0; n < 64; n++ {
			data := make([]byte, n)
			rng.Read(data)
			back, err := BitsToBytes(BytesToBits(data))
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.Equal(back, data)).To(BeTrue())
		}
	})

	It("rejects bit strings that are not whole bytes", func() {
		_, err := BitsToBytes("1010101")
		Expect(err).To(MatchError(ErrInvalidInput))
	})
})

var _ = Describe("Codec", func() {
	var (
		logs  *bytes.Buffer
		codec *Codec
	)

	BeforeEach(func() {
		logs = &bytes.Buffer{}
		logger := zerolog.New(logs).Level(zerolog.InfoLevel)
		var err error
		codec, err = NewCodec(Options{Workers: 4, Scheme: ECCSchemeHamming74, Logger: &logger})
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips byte frames through the packed stream", func() {
		data := []byte("The quick brown fox jumps over the lazy dog")
		encoded, err := codec.EncodeBytes(data)
		Expect(err).NotTo(HaveOccurred())
		// 344 bits -> 86 codewords (602 bits) + marker -> 608 bits
		Expect(encoded).To(HaveLen(76))

		decoded, err := codec.DecodeBytes(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(data))
		Expect(logs.String()).To(BeEmpty())
	})

	It("logs the codewords it had to correct", func() {
		encoded, err := codec.EncodeStream(BytesToBits([]byte("abc")))
		Expect(err).NotTo(HaveOccurred())

		decoded, err := codec.DecodeStream(flipAt(encoded, 9))
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(BytesToBits([]byte("abc"))))
		Expect(logs.String()).To(ContainSubstring("corrected bit errors"))
		Expect(logs.String()).To(ContainSubstring(`"corrected":[1]`))
	})

	It("survives channel noise of one bit per codeword", func() {
		data := bytes.Repeat([]byte{0xA5, 0x3C}, 600)
		encoded, err := codec.EncodeBytes(data)
		Expect(err).NotTo(HaveOccurred())

		codewords := len(data) * 8 / 4
		positions := make([]int, codewords)
		for i := range positions {
			positions[i] = i*7 + i%7
		}
		noisyBits, err := channel.Flip(bitstream.BytesToBits(encoded), positions...)
		Expect(err).NotTo(HaveOccurred())
		noisy, err := bitstream.BitsToBytes(noisyBits)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := codec.DecodeBytes(noisy)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(data))
		Expect(logs.String()).To(ContainSubstring("corrected bit errors"))
	})

	It("works with the repetition scheme", func() {
		rep, err := NewCodec(Options{Scheme: ECCSchemeRepetition3})
		Expect(err).NotTo(HaveOccurred())

		encoded, err := rep.EncodeBytes([]byte{0x80})
		Expect(err).NotTo(HaveOccurred())
		Expect(encoded).To(HaveLen(3))

		encoded[0] ^= 0x80
		decoded, err := rep.DecodeBytes(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal([]byte{0x80}))
	})

	It("rejects unknown schemes", func() {
		_, err := NewCodec(Options{Scheme: 42})
		Expect(err).To(HaveOccurred())
	})

	It("reports a partial byte stream as malformed", func() {
		stream, err := EncodeStream("1010")
		Expect(err).NotTo(HaveOccurred())
		packed, err := BitsToBytes(stream)
		Expect(err).NotTo(HaveOccurred())

		_, err = codec.DecodeBytes(packed)
		Expect(err).To(MatchError(ErrMalformedStream))
	})
})
