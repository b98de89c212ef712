package encoding

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sort"
)

// Coord is a grid position as stored in layer sets.
type Coord struct {
	X uint16
	Y uint16
}

const coordSize = 4

// EncodePoints writes each point as big-endian x then big-endian y.
func EncodePoints(points []Coord) []byte {
	out := make([]byte, len(points)*coordSize)
	for i, p := range points {
		binary.BigEndian.PutUint16(out[i*coordSize:], p.X)
		binary.BigEndian.PutUint16(out[i*coordSize+2:], p.Y)
	}
	return out
}

// DecodePoints reverses EncodePoints. An empty input is an empty point list.
func DecodePoints(raw []byte) ([]Coord, error) {
	if len(raw)%coordSize != 0 {
		return nil, fmt.Errorf("%w: %d point bytes is not a multiple of %d", ErrMalformedLength, len(raw), coordSize)
	}
	out := make([]Coord, 0, len(raw)/coordSize)
	for i := 0; i < len(raw); i += coordSize {
		out = append(out, Coord{
			X: binary.BigEndian.Uint16(raw[i:]),
			Y: binary.BigEndian.Uint16(raw[i+2:]),
		})
	}
	return out, nil
}

// EncodeLayers base64-encodes every layer independently.
func EncodeLayers(layers map[string][]Coord) map[string]string {
	out := make(map[string]string, len(layers))
	for name, points := range layers {
		out[name] = base64.StdEncoding.EncodeToString(EncodePoints(points))
	}
	return out
}

// DecodeLayers keeps every key it is given, so an empty blob yields an
// empty (non-nil) layer while a missing key stays missing.
func DecodeLayers(blobs map[string]string) (map[string][]Coord, error) {
	names := make([]string, 0, len(blobs))
	for name := range blobs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string][]Coord, len(blobs))
	for _, name := range names {
		raw, err := base64.StdEncoding.DecodeString(blobs[name])
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		points, err := DecodePoints(raw)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		out[name] = points
	}
	return out, nil
}
