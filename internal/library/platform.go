package library

import "fmt"

// Platform holds the bit widths that parameterize literal sizing and
// arithmetic promotion.
type Platform struct {
	Name        string
	CharBit     int
	ShortBit    int
	IntBit      int
	LongBit     int
	LongLongBit int
	PointerBit  int
	// CharSigned reports whether plain char is signed on this platform.
	CharSigned bool
}

// Native returns the widths of a typical 64-bit host, the default when no
// platform is selected.
func Native() Platform {
	return Platform{
		Name: "native", CharBit: 8, ShortBit: 16, IntBit: 32,
		LongBit: 64, LongLongBit: 64, PointerBit: 64, CharSigned: true,
	}
}

// PlatformByName returns the named width table. Supported names are native,
// unix32, unix64, win32A, win32W, and win64.
func PlatformByName(name string) (Platform, error) {
	switch name {
	case "", "native":
		return Native(), nil
	case "unix32":
		return Platform{Name: name, CharBit: 8, ShortBit: 16, IntBit: 32,
			LongBit: 32, LongLongBit: 64, PointerBit: 32, CharSigned: true}, nil
	case "unix64":
		return Platform{Name: name, CharBit: 8, ShortBit: 16, IntBit: 32,
			LongBit: 64, LongLongBit: 64, PointerBit: 64, CharSigned: true}, nil
	case "win32A", "win32W":
		return Platform{Name: name, CharBit: 8, ShortBit: 16, IntBit: 32,
			LongBit: 32, LongLongBit: 64, PointerBit: 32, CharSigned: true}, nil
	case "win64":
		return Platform{Name: name, CharBit: 8, ShortBit: 16, IntBit: 32,
			LongBit: 32, LongLongBit: 64, PointerBit: 64, CharSigned: true}, nil
	}
	return Platform{}, fmt.Errorf("unknown platform %q", name)
}
