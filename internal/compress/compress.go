package compress

import "fmt"

// Compress encodes and decodes whole payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

var (
	_ Compress = GZip{}
	_ Compress = LZ4{}
	_ Compress = Brotli{}
	_ Compress = Nop{}
)

// Names lists the codecs accepted by ByName.
var Names = []string{"gzip", "lz4", "brotli", "none"}

// ByName returns the codec registered under name.
func ByName(name string) (Compress, error) {
	switch name {
	case "gzip", "gz":
		return NewGZip(), nil
	case "lz4":
		return NewLZ4(), nil
	case "brotli", "br":
		return NewBrotli(), nil
	case "none", "nop", "":
		return NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q, expected one of %v", name, Names)
	}
}
