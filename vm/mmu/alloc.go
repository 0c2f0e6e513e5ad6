package mmu

import (
	"log"

	"github.com/sarchlab/vmsim/hooking"
)

// allocateFrame selects and prepares a physical frame that will be linked
// into parent at the given row, applying three priorities in strict order:
// reuse the first all-zero table, take a never-used frame above the
// high-water mark, or evict the data leaf cyclically farthest from
// targetPage.
//
// Leaf-role frames are returned without clearing; the caller restores their
// content from swap. Table-role frames come back all-zero.
func (c *Comp) allocateFrame(parent, targetPage uint64, leaf bool) uint64 {
	res := c.scanTree(targetPage, parent)

	if res.hasEmptyTable {
		c.detach(res.emptyTable.parent, res.emptyTable.row)
		c.prepareFrame(res.emptyTable.frame, leaf)

		return res.emptyTable.frame
	}

	if res.maxFrame+1 < c.geometry.NumFrames() {
		frame := res.maxFrame + 1
		c.prepareFrame(frame, leaf)

		return frame
	}

	// Memory is full, so the tree holds at least one data leaf other than
	// the page being mapped. The scan is guaranteed to have found a victim.
	if !res.hasVictim {
		log.Panic("no frame reclaimable: physical memory cannot hold " +
			"one translation path")
	}

	c.evict(res.victim)
	c.detach(res.victim.parent, res.victim.row)
	c.prepareFrame(res.victim.frame, leaf)

	return res.victim.frame
}

// detach zeroes the single parent entry that owns a frame.
func (c *Comp) detach(parent, row uint64) {
	c.mustWriteEntry(parent, row, 0)
}

func (c *Comp) prepareFrame(frame uint64, leaf bool) {
	if leaf {
		return
	}

	err := c.physMem.ClearFrame(frame)
	if err != nil {
		log.Panic(err)
	}
}

func (c *Comp) evict(victim evictionCandidate) {
	err := c.physMem.Evict(victim.frame, victim.vpn)
	if err != nil {
		log.Panic(err)
	}

	c.numEvictions++

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosEvict,
		Detail: EvictDetail{
			VPN:      victim.vpn,
			Frame:    victim.frame,
			Distance: victim.distance,
		},
	})
}
