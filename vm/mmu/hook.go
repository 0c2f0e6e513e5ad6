package mmu

import "github.com/sarchlab/vmsim/hooking"

// HookPosPageFault is triggered after a missing table or leaf is
// materialized and linked into its parent.
var HookPosPageFault = &hooking.HookPos{Name: "PageFault"}

// HookPosEvict is triggered after a leaf frame's content is persisted to
// swap so the frame can be reclaimed.
var HookPosEvict = &hooking.HookPos{Name: "Evict"}

// HookPosRestore is triggered after a leaf frame is populated from swap.
var HookPosRestore = &hooking.HookPos{Name: "Restore"}

// PageFaultDetail carries the information of a page-fault hook invocation.
type PageFaultDetail struct {
	VPN   uint64
	Frame uint64
	Level int
	Leaf  bool
}

// EvictDetail carries the information of an eviction hook invocation.
type EvictDetail struct {
	VPN      uint64
	Frame    uint64
	Distance uint64
}

// RestoreDetail carries the information of a restore hook invocation.
type RestoreDetail struct {
	VPN   uint64
	Frame uint64
}
