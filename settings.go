package fitsview

import "fmt"

// OptionMode says when an automatic behavior fires for newly set images.
type OptionMode int

const (
	// OptionOn applies for every new image unless the user has adjusted the
	// parameter manually.
	OptionOn OptionMode = iota
	// OptionOverride applies for every new image, discarding manual
	// adjustments.
	OptionOverride
	// OptionOnce applies for the next image only, then turns off.
	OptionOnce
	// OptionOff never applies automatically.
	OptionOff
)

// ParseOptionMode parses the textual form used by configuration sources.
func ParseOptionMode(s string) (OptionMode, error) {
	switch s {
	case "on":
		return OptionOn, nil
	case "override":
		return OptionOverride, nil
	case "once":
		return OptionOnce, nil
	case "off":
		return OptionOff, nil
	}
	return OptionOff, fmt.Errorf("unknown option mode %q (recognized: on, override, once, off)", s)
}

func (m OptionMode) String() string {
	switch m {
	case OptionOn:
		return "on"
	case OptionOverride:
		return "override"
	case OptionOnce:
		return "once"
	default:
		return "off"
	}
}

// Settings enumerates the per-viewer automatic behaviors. It replaces
// string-keyed settings dictionaries with typed fields.
type Settings struct {
	AutoCenter OptionMode
	AutoCuts   OptionMode
	AutoZoom   OptionMode

	// AutoCutsAlgorithm names the estimator used by automatic cut levels.
	AutoCutsAlgorithm string
}

// DefaultSettings enables centering, zscale-based cut levels and zoom-to-fit
// for every new image.
func DefaultSettings() Settings {
	return Settings{
		AutoCenter:        OptionOn,
		AutoCuts:          OptionOn,
		AutoZoom:          OptionOn,
		AutoCutsAlgorithm: "zscale",
	}
}
