package mem

// PhysicalMemory combines the frame storage and the swap space into the
// backing store that the MMU drives.
//
// A physical address is frame × wordsPerPage + row.
type PhysicalMemory struct {
	storage *Storage
	swap    *SwapSpace
}

// NewPhysicalMemory creates a physical memory with numFrames frames of
// wordsPerPage words each, together with an empty swap space.
func NewPhysicalMemory(numFrames, wordsPerPage uint64) *PhysicalMemory {
	return &PhysicalMemory{
		storage: NewStorage(numFrames, wordsPerPage),
		swap:    NewSwapSpace(wordsPerPage),
	}
}

// NumFrames returns the number of physical frames.
func (m *PhysicalMemory) NumFrames() uint64 {
	return m.storage.NumFrames()
}

// Read returns the word at a physical address.
func (m *PhysicalMemory) Read(addr uint64) (uint32, error) {
	return m.storage.Read(addr)
}

// Write sets the word at a physical address.
func (m *PhysicalMemory) Write(addr uint64, word uint32) error {
	return m.storage.Write(addr, word)
}

// Restore populates a frame with the swap image of the given virtual page.
// Pages that were never evicted restore as zero pages.
func (m *PhysicalMemory) Restore(frame, vpn uint64) error {
	return m.storage.WritePage(frame, m.swap.PageIn(vpn))
}

// Evict persists a frame's current content as the swap image of the given
// virtual page.
func (m *PhysicalMemory) Evict(frame, vpn uint64) error {
	page, err := m.storage.ReadPage(frame)
	if err != nil {
		return err
	}

	m.swap.PageOut(vpn, page)

	return nil
}

// ClearFrame zeroes every word in a frame.
func (m *PhysicalMemory) ClearFrame(frame uint64) error {
	return m.storage.ClearPage(frame)
}

// DropSwap discards all swap images. The MMU uses it when re-initializing,
// so previously evicted pages read as freshly faulted zero pages again.
func (m *PhysicalMemory) DropSwap() {
	m.swap.Drop()
}
