package mmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("Frame Allocator", func() {
	var (
		geometry vm.Geometry
		physMem  *mem.PhysicalMemory
		m        *Comp
	)

	BeforeEach(func() {
		geometry = vm.MakeGeometry(4, 16, 8)
		physMem = mem.NewPhysicalMemory(8, 4)
		m = MakeBuilder().
			WithGeometry(geometry).
			WithPhysicalMemory(physMem).
			Build("MMU")
		m.Initialize()
	})

	link := func(parent, row, child uint64) {
		Expect(physMem.Write(
			geometry.PhysicalAddr(parent, row), uint32(child),
		)).To(Succeed())
	}

	readEntry := func(frame, row uint64) uint32 {
		word, err := physMem.Read(geometry.PhysicalAddr(frame, row))
		Expect(err).ToNot(HaveOccurred())
		return word
	}

	It("should reuse an empty table first", func() {
		link(rootFrame, 0, 1)
		link(1, 0, 2) // leaf, page 0
		link(rootFrame, 1, 4)

		frame := m.allocateFrame(rootFrame, 0, false)

		Expect(frame).To(Equal(uint64(4)))
		Expect(readEntry(rootFrame, 1)).To(Equal(uint32(0)),
			"empty table must be detached from its old parent")
	})

	It("should not reuse the frame currently being linked into", func() {
		link(rootFrame, 0, 1)

		frame := m.allocateFrame(1, 0, true)

		Expect(frame).To(Equal(uint64(2)),
			"the all-zero frame 1 is the allocation target, "+
				"so the fresh frame above the high-water mark wins")
		Expect(readEntry(rootFrame, 0)).To(Equal(uint32(1)))
	})

	It("should take the frame above the high-water mark", func() {
		link(rootFrame, 0, 1)
		link(1, 0, 2) // leaf, page 0

		frame := m.allocateFrame(1, 1, true)

		Expect(frame).To(Equal(uint64(3)))
	})

	It("should evict the farthest leaf when memory is full", func() {
		link(rootFrame, 0, 1)
		link(1, 0, 2) // page 0
		link(1, 1, 3) // page 1
		link(1, 2, 4) // page 2
		link(1, 3, 5) // page 3
		link(rootFrame, 1, 6)
		link(6, 0, 7) // page 4

		Expect(physMem.Write(geometry.PhysicalAddr(7, 2), 77)).To(Succeed())

		frame := m.allocateFrame(1, 0, true)

		// Page 4 is farthest from page 0 on the ring of 16.
		Expect(frame).To(Equal(uint64(7)))
		Expect(readEntry(6, 0)).To(Equal(uint32(0)),
			"victim must be detached from its parent")
		Expect(m.Stats().Evictions).To(Equal(uint64(1)))

		// The victim's content must have been persisted before reuse.
		Expect(physMem.Restore(7, 4)).To(Succeed())
		Expect(readEntry(7, 2)).To(Equal(uint32(77)))
	})

	Context("with a mocked backing store", func() {
		var (
			mockCtrl    *gomock.Controller
			mockPhysMem *MockPhysicalMemory
			words       map[uint64]uint32
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mockPhysMem = NewMockPhysicalMemory(mockCtrl)
			words = make(map[uint64]uint32)

			mockPhysMem.EXPECT().
				Read(gomock.Any()).
				DoAndReturn(func(addr uint64) (uint32, error) {
					return words[addr], nil
				}).
				AnyTimes()
			mockPhysMem.EXPECT().
				Write(gomock.Any(), gomock.Any()).
				DoAndReturn(func(addr uint64, word uint32) error {
					words[addr] = word
					return nil
				}).
				AnyTimes()

			m = MakeBuilder().
				WithGeometry(geometry).
				WithPhysicalMemory(mockPhysMem).
				Build("MMU")
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should evict exactly once, keyed by the victim's page number, "+
			"and skip clearing leaf-role frames", func() {
			words[geometry.PhysicalAddr(rootFrame, 0)] = 1
			words[geometry.PhysicalAddr(1, 0)] = 2 // page 0
			words[geometry.PhysicalAddr(1, 1)] = 3 // page 1
			words[geometry.PhysicalAddr(1, 2)] = 4 // page 2
			words[geometry.PhysicalAddr(1, 3)] = 5 // page 3
			words[geometry.PhysicalAddr(rootFrame, 1)] = 6
			words[geometry.PhysicalAddr(6, 0)] = 7 // page 4

			mockPhysMem.EXPECT().Evict(uint64(7), uint64(4)).Return(nil)

			frame := m.allocateFrame(1, 0, true)

			Expect(frame).To(Equal(uint64(7)))
			Expect(words[geometry.PhysicalAddr(6, 0)]).To(Equal(uint32(0)))
		})

		It("should clear table-role frames instead of restoring them", func() {
			words[geometry.PhysicalAddr(rootFrame, 0)] = 1
			words[geometry.PhysicalAddr(1, 0)] = 2 // page 0

			mockPhysMem.EXPECT().ClearFrame(uint64(3)).Return(nil)

			frame := m.allocateFrame(rootFrame, 1, false)

			Expect(frame).To(Equal(uint64(3)))
		})
	})
})
