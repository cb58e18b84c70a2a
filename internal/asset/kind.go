package asset

import "fmt"

// Kind is the closed set of match outcomes.
type Kind int

const (
	// KindNoMatch means no equivalent reference asset was found.
	KindNoMatch Kind = iota
	// KindExact means identical content hashes.
	KindExact
	// KindPerceptual means a perceptual hash within the match threshold.
	KindPerceptual
	// KindMetadata means agreement on timestamp and other metadata.
	KindMetadata
	// KindUncertain means a close perceptual hash that needs review.
	KindUncertain
)

// Kinds lists every kind in report order.
var Kinds = []Kind{KindExact, KindPerceptual, KindMetadata, KindUncertain, KindNoMatch}

// String returns the stable wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPerceptual:
		return "perceptual"
	case KindMetadata:
		return "metadata"
	case KindUncertain:
		return "uncertain"
	case KindNoMatch:
		return "no_match"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindExact, KindPerceptual, KindMetadata, KindUncertain, KindNoMatch:
		return true
	default:
		return false
	}
}

// ParseKind converts a wire name back to a Kind.
func ParseKind(value string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == value {
			return k, nil
		}
	}
	return KindNoMatch, fmt.Errorf("unknown match kind %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal match kind: invalid value %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
