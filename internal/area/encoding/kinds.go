package encoding

import (
	"errors"
	"fmt"
)

// NoKind is the packed byte for an absent label. It is never a table index.
const NoKind byte = 255

// MaxKinds is the largest kind table a packed grid can address.
const MaxKinds = int(NoKind)

var (
	ErrCapacityExceeded = errors.New("kind table capacity exceeded")
	ErrInvalidIndex     = errors.New("kind index out of range")
	ErrMalformedLength  = errors.New("malformed packed length")
)

// WallCell is one tile of the wall grid. An empty Kind means no wall.
type WallCell struct {
	Elevation uint8
	Kind      string
}

// interner assigns table indices in first-occurrence order.
type interner struct {
	index map[string]byte
	table []string
}

func newInterner() *interner {
	return &interner{index: map[string]byte{}}
}

func (in *interner) intern(label string) (byte, error) {
	if label == "" {
		return NoKind, nil
	}
	if idx, ok := in.index[label]; ok {
		return idx, nil
	}
	if len(in.table) >= MaxKinds {
		return 0, fmt.Errorf("%w: %q would be kind %d, at most %d allowed", ErrCapacityExceeded, label, len(in.table), MaxKinds)
	}
	idx := byte(len(in.table))
	in.index[label] = idx
	in.table = append(in.table, label)
	return idx, nil
}

func lookup(kinds []string, b byte) (string, error) {
	if b == NoKind {
		return "", nil
	}
	if int(b) >= len(kinds) {
		return "", fmt.Errorf("%w: %d with %d kinds", ErrInvalidIndex, b, len(kinds))
	}
	return kinds[b], nil
}

// EncodeKinds packs one byte per label. Empty labels encode as NoKind.
func EncodeKinds(labels []string) ([]string, []byte, error) {
	in := newInterner()
	packed := make([]byte, len(labels))
	for i, label := range labels {
		idx, err := in.intern(label)
		if err != nil {
			return nil, nil, fmt.Errorf("cell %d: %w", i, err)
		}
		packed[i] = idx
	}
	return in.table, packed, nil
}

func DecodeKinds(kinds []string, packed []byte) ([]string, error) {
	out := make([]string, len(packed))
	for i, b := range packed {
		label, err := lookup(kinds, b)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}

// EncodeWalls packs two bytes per cell: the kind index followed by the elevation.
func EncodeWalls(cells []WallCell) ([]string, []byte, error) {
	in := newInterner()
	packed := make([]byte, 0, 2*len(cells))
	for i, c := range cells {
		idx, err := in.intern(c.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("wall %d: %w", i, err)
		}
		packed = append(packed, idx, c.Elevation)
	}
	return in.table, packed, nil
}

func DecodeWalls(kinds []string, packed []byte) ([]WallCell, error) {
	if len(packed)%2 != 0 {
		return nil, fmt.Errorf("%w: %d wall bytes is odd", ErrMalformedLength, len(packed))
	}
	out := make([]WallCell, 0, len(packed)/2)
	for i := 0; i < len(packed); i += 2 {
		label, err := lookup(kinds, packed[i])
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", i/2, err)
		}
		out = append(out, WallCell{Elevation: packed[i+1], Kind: label})
	}
	return out, nil
}
