// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vollgas

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// An Address references one cell of simulation state.
//
// A static address is a fixed byte offset within a Space. A rotating address
// is the base of a ring of Mod() cells; the cell touched at step n is
//
//	base + (((n + StartOffset()) mod Mod()) + local) mod Mod()
//
// where local is 0 unless a caller peeks at other slots of the ring.
//
// Addresses are plain values. Their absolute offset is only known once the
// owning Layout has been resolved (see Layout.Offset).
//
type Address struct {
	space  int // region index + 1, 0 for the zero Address
	offset int // relative to the region base
	mod    int
	start  int
	rot    bool
	hint   string
}

// IsZero returns true if a is the zero Address, i.e. no cell has been
// allocated for it.
//
func (a Address) IsZero() bool { return a.space == 0 }

// IsRotating returns true for rotating addresses.
//
func (a Address) IsRotating() bool { return a.rot }

// Mod returns the ring size of a rotating address, 0 for static addresses.
//
func (a Address) Mod() int { return a.mod }

// StartOffset returns the start offset of a rotating address.
//
func (a Address) StartOffset() int { return a.start }

// Hint returns the human readable description given when a was allocated.
//
func (a Address) Hint() string { return a.hint }

func (a Address) String() string {
	if a.IsZero() {
		return "<nil address>"
	}
	s := "s" + strconv.Itoa(a.space-1) + "+" + strconv.Itoa(a.offset)
	if a.IsRotating() {
		s += "%" + strconv.Itoa(a.mod) + "@" + strconv.Itoa(a.start)
	}
	return s
}

// extent returns the number of bytes needed in the owning region.
func (a Address) extent() int {
	if a.IsRotating() {
		return a.offset + a.mod
	}
	return a.offset + 1
}

// region is one allocation generation.
type region struct {
	next   int // index + 1 of the next region, 0 if none
	base   int
	extent int
	addrs  []Address
}

// A Layout is the allocator for the flat address space of a circuit.
//
// Allocation happens in two passes: elements register addresses relative to
// the region (Space) they were given, then Resolve sizes every region and
// computes absolute bases as a prefix sum along the chain.
//
type Layout struct {
	regions  []region
	header   int
	size     int
	resolved bool
}

// NewLayout returns a new, empty Layout.
//
func NewLayout() *Layout {
	return &Layout{}
}

// Root returns the first Space of the chain, creating it if necessary.
//
func (l *Layout) Root() Space {
	if len(l.regions) == 0 {
		l.regions = append(l.regions, region{})
	}
	return Space{l, 0}
}

// Resolved returns true once Resolve has been called successfully.
//
func (l *Layout) Resolved() bool { return l.resolved }

// Resolve sizes every region of the chain and assigns absolute bases,
// starting at header. It returns the total byte size of the layout,
// header included.
//
func (l *Layout) Resolve(header int) (int, error) {
	if l.resolved {
		return 0, errors.New("layout already resolved")
	}
	if header < 0 {
		return 0, errors.Errorf("invalid layout header size %d", header)
	}
	l.Root()
	base := header
	for i := 0; ; {
		r := &l.regions[i]
		r.base = base
		for _, a := range r.addrs {
			if a.offset < 0 {
				return 0, errors.Errorf("negative offset for address %s (%s)", a, a.hint)
			}
			if a.rot && (a.mod <= 0 || int64(a.mod) > math.MaxUint32) {
				return 0, errors.Errorf("invalid modulus %d for address %s (%s)", a.mod, a, a.hint)
			}
			if e := a.extent(); e > r.extent {
				r.extent = e
			}
		}
		base += r.extent
		if r.next == 0 {
			break
		}
		i = r.next - 1
	}
	l.header = header
	l.size = base
	l.resolved = true
	return base, nil
}

// Size returns the total byte size computed by Resolve.
//
func (l *Layout) Size() int { return l.size }

// Header returns the number of bytes reserved before the first Space.
//
func (l *Layout) Header() int { return l.header }

// Offset returns the absolute byte offset of a. For rotating addresses, this
// is the base of the ring.
//
// Offset panics if the layout has not been resolved or if a does not belong
// to l.
//
func (l *Layout) Offset(a Address) int {
	if !l.resolved {
		panic("vollgas: address offset requested before layout resolution")
	}
	if a.space <= 0 || a.space > len(l.regions) {
		panic("vollgas: address " + a.String() + " does not belong to this layout")
	}
	return l.regions[a.space-1].base + a.offset
}

// Addresses returns every address registered in the layout, in chain order.
//
func (l *Layout) Addresses() []Address {
	var out []Address
	if len(l.regions) == 0 {
		return nil
	}
	for i := 0; ; {
		r := &l.regions[i]
		out = append(out, r.addrs...)
		if r.next == 0 {
			break
		}
		i = r.next - 1
	}
	return out
}

// A Space is a handle to one region of a Layout. Elements allocate their
// cells in the spaces they are handed.
//
type Space struct {
	l  *Layout
	id int
}

// IsZero returns true for the zero Space.
//
func (s Space) IsZero() bool { return s.l == nil }

func (s Space) region() *region {
	if s.l == nil {
		panic("vollgas: use of zero Space")
	}
	if s.l.resolved {
		panic("vollgas: Space used after layout resolution")
	}
	return &s.l.regions[s.id]
}

// Next creates the Space following s in the chain. Only one Space can follow
// a given Space.
//
func (s Space) Next() (Space, error) {
	r := s.region()
	if r.next != 0 {
		return Space{}, errors.New("next Space already created")
	}
	s.l.regions = append(s.l.regions, region{})
	// r may have moved
	s.l.regions[s.id].next = len(s.l.regions)
	return Space{s.l, len(s.l.regions) - 1}, nil
}

// Last returns the last Space of the chain starting at s.
//
func (s Space) Last() Space {
	for {
		r := s.region()
		if r.next == 0 {
			return s
		}
		s = Space{s.l, r.next - 1}
	}
}

// Owns returns true if a was allocated in s.
//
func (s Space) Owns(a Address) bool {
	return s.l != nil && a.space == s.id+1
}

// Static allocates a static address at the given offset in s. Allocating the
// same offset twice returns two addresses for the same cell.
//
func (s Space) Static(offset int, hint string) Address {
	a := Address{space: s.id + 1, offset: offset, hint: hint}
	r := s.region()
	r.addrs = append(r.addrs, a)
	return a
}

// Rotating allocates a ring of mod cells starting at the given offset in s.
//
func (s Space) Rotating(offset, mod, startOffset int, hint string) Address {
	a := Address{space: s.id + 1, offset: offset, mod: mod, start: startOffset, rot: true, hint: hint}
	r := s.region()
	r.addrs = append(r.addrs, a)
	return a
}
