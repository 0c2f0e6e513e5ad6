// Package tracing records MMU translation events into a data recorder.
package tracing

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/vm/mmu"
)

// A TraceEntry is one row of the mmu_trace table. Kind is the hook position
// name; Distance is only meaningful for evictions.
type TraceEntry struct {
	Kind     string
	VPN      uint64
	Frame    uint64
	Level    int
	Distance uint64
}

// An MMUTracer is a hook that records page faults, evictions, and restores
// into a DataRecorder.
type MMUTracer struct {
	recorder  datarecording.DataRecorder
	tableName string
}

// NewMMUTracer creates an MMUTracer writing into the mmu_trace table of the
// given recorder.
func NewMMUTracer(recorder datarecording.DataRecorder) *MMUTracer {
	t := &MMUTracer{
		recorder:  recorder,
		tableName: "mmu_trace",
	}

	recorder.CreateTable(t.tableName, TraceEntry{})

	return t
}

// Func records one hook invocation.
func (t *MMUTracer) Func(ctx hooking.HookCtx) {
	switch detail := ctx.Detail.(type) {
	case mmu.PageFaultDetail:
		t.recorder.InsertData(t.tableName, TraceEntry{
			Kind:  ctx.Pos.Name,
			VPN:   detail.VPN,
			Frame: detail.Frame,
			Level: detail.Level,
		})
	case mmu.EvictDetail:
		t.recorder.InsertData(t.tableName, TraceEntry{
			Kind:     ctx.Pos.Name,
			VPN:      detail.VPN,
			Frame:    detail.Frame,
			Distance: detail.Distance,
		})
	case mmu.RestoreDetail:
		t.recorder.InsertData(t.tableName, TraceEntry{
			Kind:  ctx.Pos.Name,
			VPN:   detail.VPN,
			Frame: detail.Frame,
		})
	}
}
