package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/kailas-cloud/lexdex/internal/lexical"
)

// FormatVersion is bumped whenever the payload layout changes. Artifacts
// written with another version are rejected on load.
const FormatVersion uint16 = 1

var magic = [4]byte{'L', 'X', 'D', 'X'}

// headerSize: magic + version + compression tag + BLAKE3 checksum.
const headerSize = 4 + 2 + 1 + 32

// Compression identifies how the payload is compressed. Tag values are part
// of the on-disk format.
type Compression uint8

// Compression tags.
const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

// String returns the configuration name of the compression tag.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a configured compression name. Empty selects zstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// Manifest describes a persisted index.
type Manifest struct {
	FormatVersion uint16    `cbor:"format_version"`
	BuiltAt       time.Time `cbor:"built_at"`
	TitleWeight   int       `cbor:"title_weight"`
	Documents     int       `cbor:"documents"`
	Vocabulary    int       `cbor:"vocabulary"`
	Fingerprint   string    `cbor:"fingerprint"`
}

type payload struct {
	Manifest Manifest         `cbor:"manifest"`
	Index    lexical.Snapshot `cbor:"index"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

// maxCollectionLen is the largest array and map size the CBOR library
// accepts. Vocabularies routinely exceed its default of 131072.
const maxCollectionLen = 2147483647

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("artifact: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: maxCollectionLen,
		MaxMapPairs:      maxCollectionLen,
	}.DecMode()
	if err != nil {
		panic("artifact: CBOR decoder initialization failed: " + err.Error())
	}
}

// errCorrupt marks structurally broken artifact bytes.
var errCorrupt = errors.New("corrupt artifact")

// Encode serialises a fitted index with its manifest.
func Encode(ix *lexical.Index, builtAt time.Time, comp Compression) ([]byte, Manifest, error) {
	snap, err := ix.Snapshot()
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("snapshot: %w", err)
	}
	m := Manifest{
		FormatVersion: FormatVersion,
		BuiltAt:       builtAt.UTC(),
		TitleWeight:   snap.Options.TitleWeight,
		Documents:     ix.Len(),
		Vocabulary:    ix.VocabularySize(),
		Fingerprint:   ix.Fingerprint().String(),
	}
	raw, err := encMode.Marshal(payload{Manifest: m, Index: snap})
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("cbor encode: %w", err)
	}
	body, err := compress(comp, raw)
	if err != nil {
		return nil, Manifest{}, err
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(body))
	buf.Write(magic[:])
	_ = binary.Write(&buf, binary.BigEndian, FormatVersion)
	buf.WriteByte(byte(comp))
	sum := blake3.Sum256(raw)
	buf.Write(sum[:])
	buf.Write(body)
	return buf.Bytes(), m, nil
}

// Decode verifies and deserialises an artifact. Every failure wraps errCorrupt
// or names the version mismatch; callers turn it into a load error.
func Decode(data []byte) (*lexical.Index, Manifest, error) {
	if len(data) < headerSize {
		return nil, Manifest{}, fmt.Errorf("%w: %d bytes is shorter than the header", errCorrupt, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, Manifest{}, fmt.Errorf("%w: bad magic %q", errCorrupt, data[:4])
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != FormatVersion {
		return nil, Manifest{}, fmt.Errorf("format version %d, want %d", v, FormatVersion)
	}
	comp := Compression(data[6])
	var sum [32]byte
	copy(sum[:], data[7:headerSize])

	raw, err := decompress(comp, data[headerSize:])
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if blake3.Sum256(raw) != sum {
		return nil, Manifest{}, fmt.Errorf("%w: checksum mismatch", errCorrupt)
	}

	var p payload
	if err := decMode.Unmarshal(raw, &p); err != nil {
		return nil, Manifest{}, fmt.Errorf("%w: cbor decode: %v", errCorrupt, err)
	}
	ix, err := lexical.Restore(p.Index)
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if got := ix.Fingerprint().String(); got != p.Manifest.Fingerprint {
		return nil, Manifest{}, fmt.Errorf("%w: fingerprint %s does not match manifest %s",
			errCorrupt, got, p.Manifest.Fingerprint)
	}
	return ix, p.Manifest, nil
}

func compress(comp Compression, raw []byte) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return raw, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression tag %d", comp)
	}
}

func decompress(comp Compression, body []byte) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return body, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression tag %d", comp)
	}
}
