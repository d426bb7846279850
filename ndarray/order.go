package ndarray

import (
	"fmt"
	"strings"
)

// Order determines which axis varies fastest in an array's linear pixel
// sequence.
type Order int

const (
	// FirstIndexFastest is column-major ordering, as used by FITS.
	FirstIndexFastest Order = iota + 1
	// LastIndexFastest is row-major ordering, as used by C.
	LastIndexFastest
)

// ParseOrder parses an order name.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "first-index-fastest", "column-major", "f":
		return FirstIndexFastest, nil
	case "last-index-fastest", "row-major", "c":
		return LastIndexFastest, nil
	default:
		return 0, fmt.Errorf("%w: unknown order %q", ErrInvalidArgument, s)
	}
}

// Valid reports whether o is a defined ordering.
func (o Order) Valid() bool {
	return o == FirstIndexFastest || o == LastIndexFastest
}

// IsFirstIndexFastest reports whether o is column-major.
func (o Order) IsFirstIndexFastest() bool {
	return o == FirstIndexFastest
}

func (o Order) String() string {
	switch o {
	case FirstIndexFastest:
		return "first-index-fastest"
	case LastIndexFastest:
		return "last-index-fastest"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// AccessMode states the use that will be made of an array: read only, write
// only, or both.
type AccessMode int

const (
	Read AccessMode = iota + 1
	Write
	Update
)

// ParseAccessMode parses an access mode name.
func ParseAccessMode(s string) (AccessMode, error) {
	switch strings.ToLower(s) {
	case "read", "r":
		return Read, nil
	case "write", "w":
		return Write, nil
	case "update", "rw", "r+":
		return Update, nil
	default:
		return 0, fmt.Errorf("%w: unknown access mode %q", ErrInvalidArgument, s)
	}
}

// IsReadable reports whether the mode implies read access.
func (m AccessMode) IsReadable() bool {
	return m == Read || m == Update
}

// IsWritable reports whether the mode implies write access.
func (m AccessMode) IsWritable() bool {
	return m == Write || m == Update
}

func (m AccessMode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("AccessMode(%d)", int(m))
	}
}

// ModeFor returns the widest access mode the array supports.
func ModeFor(d ArrayDescription) AccessMode {
	switch {
	case d.IsReadable() && d.IsWritable():
		return Update
	case d.IsWritable():
		return Write
	default:
		return Read
	}
}

// checkMode verifies that d supports the access implied by mode.
func checkMode(d ArrayDescription, mode AccessMode) error {
	if mode.IsReadable() && !d.IsReadable() {
		return fmt.Errorf("%w: %s access requested on unreadable array", ErrInvalidArgument, mode)
	}
	if mode.IsWritable() && !d.IsWritable() {
		return fmt.Errorf("%w: %s access requested on unwritable array", ErrInvalidArgument, mode)
	}
	return nil
}
