// Package mmu implements hierarchical virtual-to-physical address
// translation with on-demand page-table construction and frame reclamation
// over a simulated physical memory.
package mmu

// PhysicalMemory is the backing store that the MMU drives. It provides raw
// word access by physical address and whole-page restore/evict against a
// swap space keyed by virtual page number.
type PhysicalMemory interface {
	// Read returns the word at a physical address.
	Read(addr uint64) (uint32, error)

	// Write sets the word at a physical address.
	Write(addr uint64, word uint32) error

	// Restore populates a frame with the swap image of a virtual page.
	// Pages that were never evicted restore as zero pages.
	Restore(frame, vpn uint64) error

	// Evict persists a frame's content as the swap image of a virtual page.
	Evict(frame, vpn uint64) error

	// ClearFrame zeroes every word in a frame.
	ClearFrame(frame uint64) error

	// DropSwap discards all swap images.
	DropSwap()
}
