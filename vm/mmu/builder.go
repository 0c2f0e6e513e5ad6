package mmu

import (
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// A Builder can build MMU components.
type Builder struct {
	geometry    vm.Geometry
	geometrySet bool
	physMem     PhysicalMemory
}

// MakeBuilder creates a new builder with a default geometry of 16-word
// pages, 256 virtual pages, and 32 physical frames.
func MakeBuilder() Builder {
	return Builder{}
}

// WithGeometry sets the address-space geometry of the MMU.
func (b Builder) WithGeometry(g vm.Geometry) Builder {
	b.geometry = g
	b.geometrySet = true
	return b
}

// WithPhysicalMemory sets the backing store the MMU drives. When no backing
// store is given, Build creates a simulated physical memory matching the
// geometry.
func (b Builder) WithPhysicalMemory(pm PhysicalMemory) Builder {
	b.physMem = pm
	return b
}

// Build returns a newly created MMU component.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.HookableBase = hooking.NewHookableBase()
	c.name = name

	if b.geometrySet {
		c.geometry = b.geometry
	} else {
		c.geometry = vm.MakeGeometry(16, 256, 32)
	}

	if b.physMem != nil {
		c.physMem = b.physMem
	} else {
		c.physMem = mem.NewPhysicalMemory(
			c.geometry.NumFrames(), c.geometry.WordsPerPage())
	}

	return c
}
