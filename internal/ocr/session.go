package ocr

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultConfidence is assigned to characters when the recognizer
	// supplies no per-character confidences.
	DefaultConfidence = 0.85
	// DefaultUncertainThreshold marks characters below it as uncertain.
	DefaultUncertainThreshold = 0.9
)

var (
	// ErrEmptyInput indicates session initialization without any recognized text.
	ErrEmptyInput = errors.New("ocr: empty recognition input")
	// ErrOutOfRange indicates a correction referencing a position outside the session.
	ErrOutOfRange = errors.New("ocr: position out of range")
)

// MediaType identifies the kind of physical media that was photographed. It
// affects review guidance only, never matching logic.
type MediaType string

const (
	MediaVinyl MediaType = "vinyl"
	MediaCD    MediaType = "cd"
)

// ParseMediaType normalizes a media type string.
func ParseMediaType(value string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "vinyl", "lp", "record":
		return MediaVinyl, nil
	case "cd", "disc":
		return MediaCD, nil
	default:
		return "", fmt.Errorf("unknown media type %q", value)
	}
}

// CharacterConfidence is one recognized character with its confidence and the
// ordered alternatives an OCR pass could have confused it with.
type CharacterConfidence struct {
	Character    rune
	Confidence   float64
	Position     int
	Alternatives []rune
}

// Correction records a single human correction. A later correction to the
// same position replaces the log entry but keeps the original character from
// before any correction there.
type Correction struct {
	Position  int
	Original  rune
	Corrected rune
}

// Session holds per-character recognition state during human review. It is a
// plain value owned by the scan workflow: no I/O, no shared mutable state.
type Session struct {
	characters         []CharacterConfidence
	corrections        []Correction
	mediaType          MediaType
	uncertainThreshold float64
}

// SessionOption customizes session construction.
type SessionOption func(*sessionSettings)

type sessionSettings struct {
	defaultConfidence  float64
	uncertainThreshold float64
}

// WithDefaultConfidence overrides the confidence assigned when the recognizer
// supplies none.
func WithDefaultConfidence(value float64) SessionOption {
	return func(s *sessionSettings) {
		if value > 0 && value <= 1 {
			s.defaultConfidence = value
		}
	}
}

// WithUncertainThreshold overrides the confidence below which a character
// counts as uncertain.
func WithUncertainThreshold(value float64) SessionOption {
	return func(s *sessionSettings) {
		if value > 0 && value <= 1 {
			s.uncertainThreshold = value
		}
	}
}

// NewSession builds a session from a raw recognized string, assigning each
// character the default confidence and seeding alternatives from the
// confusable table. Returns ErrEmptyInput for an empty string.
func NewSession(mediaType MediaType, raw string, opts ...SessionOption) (*Session, error) {
	settings := applyOptions(opts)
	runes := []rune(raw)
	if len(runes) == 0 {
		return nil, ErrEmptyInput
	}
	characters := make([]CharacterConfidence, len(runes))
	for i, r := range runes {
		characters[i] = CharacterConfidence{
			Character:    r,
			Confidence:   settings.defaultConfidence,
			Position:     i,
			Alternatives: Confusables(r),
		}
	}
	return &Session{
		characters:         characters,
		mediaType:          mediaType,
		uncertainThreshold: settings.uncertainThreshold,
	}, nil
}

// NewSessionWithConfidence builds a session from caller-supplied per-character
// entries, trusting their positions and confidences. Returns ErrEmptyInput
// when the slice is empty.
func NewSessionWithConfidence(mediaType MediaType, characters []CharacterConfidence, opts ...SessionOption) (*Session, error) {
	settings := applyOptions(opts)
	if len(characters) == 0 {
		return nil, ErrEmptyInput
	}
	cp := make([]CharacterConfidence, len(characters))
	copy(cp, characters)
	for i := range cp {
		cp[i].Position = i
		if len(cp[i].Alternatives) == 0 {
			cp[i].Alternatives = Confusables(cp[i].Character)
		}
	}
	return &Session{
		characters:         cp,
		mediaType:          mediaType,
		uncertainThreshold: settings.uncertainThreshold,
	}, nil
}

func applyOptions(opts []SessionOption) sessionSettings {
	settings := sessionSettings{
		defaultConfidence:  DefaultConfidence,
		uncertainThreshold: DefaultUncertainThreshold,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// MediaType returns the media kind the session reviews.
func (s *Session) MediaType() MediaType {
	return s.mediaType
}

// Len returns the number of characters under review.
func (s *Session) Len() int {
	return len(s.characters)
}

// Characters returns a copy of the current character states in position order.
func (s *Session) Characters() []CharacterConfidence {
	cp := make([]CharacterConfidence, len(s.characters))
	copy(cp, s.characters)
	return cp
}

// CharacterAt returns the character state at position.
func (s *Session) CharacterAt(position int) (CharacterConfidence, error) {
	if position < 0 || position >= len(s.characters) {
		return CharacterConfidence{}, fmt.Errorf("%w: %d (session has %d characters)", ErrOutOfRange, position, len(s.characters))
	}
	return s.characters[position], nil
}

// ApplyCorrection atomically replaces the character at position, marking it
// human-verified with confidence 1.0. Alternatives are left unchanged. The
// correction log keeps one entry per corrected position; repeat corrections
// replace the entry but preserve the original character.
func (s *Session) ApplyCorrection(position int, newCharacter rune) error {
	if position < 0 || position >= len(s.characters) {
		return fmt.Errorf("%w: %d (session has %d characters)", ErrOutOfRange, position, len(s.characters))
	}

	current := s.characters[position]
	replaced := false
	for i := range s.corrections {
		if s.corrections[i].Position == position {
			s.corrections[i].Corrected = newCharacter
			replaced = true
			break
		}
	}
	if !replaced {
		s.corrections = append(s.corrections, Correction{
			Position:  position,
			Original:  current.Character,
			Corrected: newCharacter,
		})
	}

	s.characters[position] = CharacterConfidence{
		Character:    newCharacter,
		Confidence:   1.0,
		Position:     position,
		Alternatives: current.Alternatives,
	}
	return nil
}

// Corrections returns a copy of the correction log in first-corrected order.
func (s *Session) Corrections() []Correction {
	cp := make([]Correction, len(s.corrections))
	copy(cp, s.corrections)
	return cp
}

// HasChanges reports whether any correction has been applied.
func (s *Session) HasChanges() bool {
	return len(s.corrections) > 0
}

// UncertainCount returns how many characters sit below the uncertain
// threshold. It drives whether the session is resolved enough to proceed.
func (s *Session) UncertainCount() int {
	count := 0
	for _, ch := range s.characters {
		if ch.Confidence < s.uncertainThreshold {
			count++
		}
	}
	return count
}

// Assembled returns the current string in position order.
func (s *Session) Assembled() string {
	var builder strings.Builder
	builder.Grow(len(s.characters))
	for _, ch := range s.characters {
		builder.WriteRune(ch.Character)
	}
	return builder.String()
}
