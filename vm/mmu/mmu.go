package mmu

import (
	"log"
	"sync"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/vm"
)

// rootFrame is the frame that permanently holds the root page table. It is
// never reclaimed, evicted, or handed out by the allocator.
const rootFrame = 0

// Stats counts the externally observable translation events of one MMU.
type Stats struct {
	PageFaults uint64
	Evictions  uint64
	Restores   uint64
}

// Comp is the software MMU. It owns one page-table tree rooted at frame 0 of
// its physical memory and serves word reads and writes against virtual
// addresses, faulting in tables and data pages on demand.
//
// All public operations serialize behind one mutex: the allocator's
// scan-then-mutate sequence is not safe under interleaving.
type Comp struct {
	*hooking.HookableBase
	sync.Mutex

	name     string
	geometry vm.Geometry
	physMem  PhysicalMemory

	numPageFaults uint64
	numEvictions  uint64
	numRestores   uint64
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Geometry returns the address-space geometry the MMU is configured with.
func (c *Comp) Geometry() vm.Geometry {
	return c.geometry
}

// Initialize clears the root page table and discards all swap images,
// establishing an empty tree. It must run before any Read or Write and can
// run again later to reset all mappings.
func (c *Comp) Initialize() {
	c.Lock()
	defer c.Unlock()

	err := c.physMem.ClearFrame(rootFrame)
	if err != nil {
		log.Panic(err)
	}

	c.physMem.DropSwap()
}

// Read returns the word at a virtual address. It fails, without mutating any
// state, only when the address is outside the virtual address space. A read
// of a never-touched address faults a fresh zero-filled mapping in.
func (c *Comp) Read(vaddr uint64) (uint32, bool) {
	c.Lock()
	defer c.Unlock()

	if vaddr >= c.geometry.VirtualMemSize() {
		return 0, false
	}

	frame, _ := c.translate(vaddr, true)

	return c.mustReadEntry(frame, c.geometry.Offset(vaddr)), true
}

// Write sets the word at a virtual address. It fails, without mutating any
// state, only when the address is outside the virtual address space.
func (c *Comp) Write(vaddr uint64, word uint32) bool {
	c.Lock()
	defer c.Unlock()

	if vaddr >= c.geometry.VirtualMemSize() {
		return false
	}

	frame, _ := c.translate(vaddr, true)

	c.mustWriteEntry(frame, c.geometry.Offset(vaddr), word)

	return true
}

// Translate resolves a virtual address to the frame index of its data page.
// With create cleared it reports false on the first missing link, leaving
// the tree untouched.
func (c *Comp) Translate(vaddr uint64, create bool) (uint64, bool) {
	c.Lock()
	defer c.Unlock()

	if vaddr >= c.geometry.VirtualMemSize() {
		return 0, false
	}

	return c.translate(vaddr, create)
}

// Stats returns the event counters accumulated since the MMU was built.
func (c *Comp) Stats() Stats {
	c.Lock()
	defer c.Unlock()

	return Stats{
		PageFaults: c.numPageFaults,
		Evictions:  c.numEvictions,
		Restores:   c.numRestores,
	}
}

// mustReadEntry reads one word of a frame. Storage errors are impossible for
// frames inside a valid geometry.
func (c *Comp) mustReadEntry(frame, row uint64) uint32 {
	word, err := c.physMem.Read(c.geometry.PhysicalAddr(frame, row))
	if err != nil {
		log.Panic(err)
	}

	return word
}

func (c *Comp) mustWriteEntry(frame, row uint64, word uint32) {
	err := c.physMem.Write(c.geometry.PhysicalAddr(frame, row), word)
	if err != nil {
		log.Panic(err)
	}
}
