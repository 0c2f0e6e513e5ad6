// Package vm defines the geometry of the simulated virtual and physical
// address spaces and the page-number arithmetic shared by the MMU.
package vm

import "fmt"

// A Geometry carries the derived constants of one address-space
// configuration.
//
// A virtual address decomposes into TablesDepth table-index fields of
// OffsetWidth bits each, most-significant first, followed by an in-page
// offset of OffsetWidth bits. The concatenation of the table-index fields is
// the virtual page number.
type Geometry struct {
	wordsPerPage   uint64
	offsetWidth    uint64
	numFrames      uint64
	numPages       uint64
	virtualMemSize uint64
	tablesDepth    int
}

// MakeGeometry derives a geometry from the words-per-page, the number of
// virtual pages, and the number of physical frames. Both wordsPerPage and
// numPages must be powers of two, and the page-number width must divide into
// whole table-index fields. Invalid configurations panic, as they are
// programming errors rather than runtime conditions.
func MakeGeometry(wordsPerPage, numPages, numFrames uint64) Geometry {
	if wordsPerPage < 2 {
		panic("pages need at least two words to hold table entries")
	}

	offsetWidth := log2(wordsPerPage)
	pageNumWidth := log2(numPages)

	if pageNumWidth == 0 {
		panic("a single-page address space leaves no room for a page table")
	}

	if pageNumWidth%offsetWidth != 0 {
		panic(fmt.Sprintf(
			"page-number width %d is not a multiple of offset width %d",
			pageNumWidth, offsetWidth))
	}

	if numFrames < 2 {
		panic("geometry needs at least the root frame and one more frame")
	}

	return Geometry{
		wordsPerPage:   wordsPerPage,
		offsetWidth:    offsetWidth,
		numFrames:      numFrames,
		numPages:       numPages,
		virtualMemSize: numPages * wordsPerPage,
		tablesDepth:    int(pageNumWidth / offsetWidth),
	}
}

func log2(n uint64) uint64 {
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("%d is not a power of two", n))
	}

	width := uint64(0)
	for n > 1 {
		n >>= 1
		width++
	}

	return width
}

// WordsPerPage returns the number of words in one page, which is also the
// number of entries in one page table.
func (g Geometry) WordsPerPage() uint64 {
	return g.wordsPerPage
}

// OffsetWidth returns the number of bits of one table-index field and of the
// in-page offset.
func (g Geometry) OffsetWidth() uint64 {
	return g.offsetWidth
}

// NumFrames returns the number of physical frames.
func (g Geometry) NumFrames() uint64 {
	return g.numFrames
}

// NumPages returns the number of virtual pages.
func (g Geometry) NumPages() uint64 {
	return g.numPages
}

// VirtualMemSize returns the number of addressable words in the virtual
// address space.
func (g Geometry) VirtualMemSize() uint64 {
	return g.virtualMemSize
}

// TablesDepth returns the number of page-table levels.
func (g Geometry) TablesDepth() int {
	return g.tablesDepth
}

// PhysicalAddr composes the physical address of a row inside a frame.
func (g Geometry) PhysicalAddr(frame, row uint64) uint64 {
	return frame*g.wordsPerPage + row
}

// PageNumber returns the virtual page number of a virtual address.
func (g Geometry) PageNumber(vaddr uint64) uint64 {
	return vaddr >> g.offsetWidth
}

// Offset returns the in-page offset of a virtual address.
func (g Geometry) Offset(vaddr uint64) uint64 {
	return vaddr & (g.wordsPerPage - 1)
}

// IndexAtLevel extracts the table-index field of a virtual address for one
// tree level. Level 0 indexes the root table.
func (g Geometry) IndexAtLevel(vaddr uint64, level int) uint64 {
	shift := g.offsetWidth * uint64(g.tablesDepth-level)
	return (vaddr >> shift) & (g.wordsPerPage - 1)
}

// CyclicDistance returns the distance between two page numbers on the ring
// of NumPages pages.
func (g Geometry) CyclicDistance(a, b uint64) uint64 {
	diff := a - b
	if b > a {
		diff = b - a
	}

	if g.numPages-diff < diff {
		return g.numPages - diff
	}

	return diff
}
