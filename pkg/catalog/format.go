package catalog

import (
	"fmt"
	"strings"
)

// Format identifies a plugin packaging format.
type Format int

// Format codes are stable: hosts pass them across the process boundary as
// plain integers.
const (
	VST2 Format = iota
	VST3
	AU
	AAX
)

// AllFormats returns every known format in code order.
func AllFormats() []Format {
	return []Format{VST2, VST3, AU, AAX}
}

func (f Format) String() string {
	switch f {
	case VST2:
		return "VST2"
	case VST3:
		return "VST3"
	case AU:
		return "AU"
	case AAX:
		return "AAX"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Code returns the integer encoding used across the boundary.
func (f Format) Code() int {
	return int(f)
}

// FormatFromCode maps a boundary integer back to a Format.
func FormatFromCode(code int) (Format, error) {
	if code < int(VST2) || code > int(AAX) {
		return 0, fmt.Errorf("unknown plugin format code %d", code)
	}
	return Format(code), nil
}

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vst", "vst2":
		return VST2, nil
	case "vst3":
		return VST3, nil
	case "au", "audiounit", "component":
		return AU, nil
	case "aax":
		return AAX, nil
	}
	return 0, fmt.Errorf("unknown plugin format %q", s)
}
