package mmu

import (
	"log"

	"github.com/sarchlab/vmsim/hooking"
)

// translate walks the page-table tree from the root and returns the frame
// index of the data page backing vaddr.
//
// With create set, a missing table or leaf is materialized through the
// allocator and linked into its parent; leaves are additionally populated
// from swap. With create cleared, the walk fails on the first missing link
// with no side effects.
func (c *Comp) translate(vaddr uint64, create bool) (uint64, bool) {
	g := c.geometry
	frame := uint64(rootFrame)

	for level := 0; level < g.TablesDepth(); level++ {
		row := g.IndexAtLevel(vaddr, level)
		entry := uint64(c.mustReadEntry(frame, row))

		if entry == 0 {
			if !create {
				return 0, false
			}

			entry = c.handlePageFault(frame, row, vaddr, level)
		}

		frame = entry
	}

	return frame, true
}

// handlePageFault materializes the missing child of frame at row and returns
// the new child's frame index.
func (c *Comp) handlePageFault(frame, row, vaddr uint64, level int) uint64 {
	g := c.geometry
	vpn := g.PageNumber(vaddr)
	leaf := level+1 == g.TablesDepth()

	newFrame := c.allocateFrame(frame, vpn, leaf)

	if leaf {
		c.restore(newFrame, vpn)
	}

	c.mustWriteEntry(frame, row, uint32(newFrame))

	c.numPageFaults++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosPageFault,
		Detail: PageFaultDetail{
			VPN:   vpn,
			Frame: newFrame,
			Level: level,
			Leaf:  leaf,
		},
	})

	return newFrame
}

func (c *Comp) restore(frame, vpn uint64) {
	err := c.physMem.Restore(frame, vpn)
	if err != nil {
		log.Panic(err)
	}

	c.numRestores++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosRestore,
		Detail: RestoreDetail{VPN: vpn, Frame: frame},
	})
}
