package valueflow

import (
	"encoding/json"
	"fmt"
)

// Scale is a magnitude multiplier attached to every numeric fact.
// A value's canonical magnitude is always expressed in Units; the scale
// records how the value is presented (e.g. "7,983 million").
type Scale int

// Supported scales, in increasing magnitude.
const (
	Units Scale = iota
	Thousands
	Millions
	Billions
)

var scaleNames = map[Scale]string{
	Units:     "Units",
	Thousands: "Thousands",
	Millions:  "Millions",
	Billions:  "Billions",
}

var scaleFactors = map[Scale]float64{
	Units:     1,
	Thousands: 1_000,
	Millions:  1_000_000,
	Billions:  1_000_000_000,
}

// Factor returns the multiplicative factor relative to Units.
func (s Scale) Factor() float64 {
	if f, ok := scaleFactors[s]; ok {
		return f
	}
	return 1
}

// String returns the scale's canonical label.
func (s Scale) String() string {
	if name, ok := scaleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scale(%d)", int(s))
}

// ParseScale converts a scale label to a Scale.
// Externally supplied value records carry scales as strings.
func ParseScale(name string) (Scale, error) {
	for s, n := range scaleNames {
		if n == name {
			return s, nil
		}
	}
	return Units, fmt.Errorf("unknown scale %q", name)
}

// MarshalJSON encodes the scale as its label.
func (s Scale) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a scale label.
func (s *Scale) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseScale(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Source identifies where a value came from.
type Source int

const (
	// SourceExtracted marks values pulled from an external knowledge source.
	SourceExtracted Source = iota

	// SourceCalculated marks values produced by formula execution.
	SourceCalculated

	// SourcePreviousResult marks values carried over from an earlier turn.
	SourcePreviousResult
)

var sourceNames = map[Source]string{
	SourceExtracted:      "extracted",
	SourceCalculated:     "calculated",
	SourcePreviousResult: "previous_result",
}

// String returns the source's wire label.
func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ParseSource converts a source label to a Source.
func ParseSource(name string) (Source, error) {
	for s, n := range sourceNames {
		if n == name {
			return s, nil
		}
	}
	return SourceExtracted, fmt.Errorf("unknown source %q", name)
}

// MarshalJSON encodes the source as its label.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a source label.
func (s *Source) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSource(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ValueObject is one numeric fact flowing through the system.
//
// Value is the canonical magnitude in Units and is the only field used for
// further arithmetic. DisplayValue is the value expressed in its own Scale,
// for output and comparison only. The two are always consistent:
//
//	Value == DisplayValue * Scale.Factor()
//
// A ValueObject is created once and never mutated.
type ValueObject struct {
	Value        float64 `json:"value"`
	DisplayValue float64 `json:"display_value"`
	Scale        Scale   `json:"scale"`
	Source       Source  `json:"source"`
	Description  string  `json:"description"`
}

// NewValue builds a ValueObject from a display value and its scale.
// The canonical value is derived so the consistency invariant holds.
func NewValue(display float64, scale Scale, source Source, description string) ValueObject {
	return ValueObject{
		Value:        display * scale.Factor(),
		DisplayValue: display,
		Scale:        scale,
		Source:       source,
		Description:  description,
	}
}

// NewValueFromCanonical builds a ValueObject from a canonical (Units-based)
// magnitude, deriving the display value for the given scale.
func NewValueFromCanonical(canonical float64, scale Scale, source Source, description string) ValueObject {
	return ValueObject{
		Value:        canonical,
		DisplayValue: canonical / scale.Factor(),
		Scale:        scale,
		Source:       source,
		Description:  description,
	}
}
