// Package mem provides the simulated physical memory that backs the MMU: a
// word-addressed frame storage plus a swap space that holds evicted page
// images.
package mem

import "fmt"

// A Storage keeps the words of the simulated physical memory.
//
// The storage is managed in frame-sized units. Frames that have never been
// touched by Read or Write hold no allocated memory; they read as zero.
type Storage struct {
	wordsPerFrame uint64
	numFrames     uint64
	frames        map[uint64][]uint32
}

// NewStorage creates a storage with numFrames frames of wordsPerFrame words
// each.
func NewStorage(numFrames, wordsPerFrame uint64) *Storage {
	return &Storage{
		wordsPerFrame: wordsPerFrame,
		numFrames:     numFrames,
		frames:        make(map[uint64][]uint32),
	}
}

// NumFrames returns the number of frames the storage holds.
func (s *Storage) NumFrames() uint64 {
	return s.numFrames
}

// createOrGetFrame retrieves a frame's words if the frame has been touched
// before. Otherwise it allocates the frame zero-filled.
func (s *Storage) createOrGetFrame(index uint64) ([]uint32, error) {
	if index >= s.numFrames {
		return nil, fmt.Errorf("frame %d beyond storage capacity %d",
			index, s.numFrames)
	}

	frame, ok := s.frames[index]
	if !ok {
		frame = make([]uint32, s.wordsPerFrame)
		s.frames[index] = frame
	}

	return frame, nil
}

func (s *Storage) parseAddress(addr uint64) (frame, row uint64) {
	return addr / s.wordsPerFrame, addr % s.wordsPerFrame
}

// Read returns the word at the given physical address.
func (s *Storage) Read(addr uint64) (uint32, error) {
	frameIndex, row := s.parseAddress(addr)

	frame, err := s.createOrGetFrame(frameIndex)
	if err != nil {
		return 0, err
	}

	return frame[row], nil
}

// Write sets the word at the given physical address.
func (s *Storage) Write(addr uint64, word uint32) error {
	frameIndex, row := s.parseAddress(addr)

	frame, err := s.createOrGetFrame(frameIndex)
	if err != nil {
		return err
	}

	frame[row] = word

	return nil
}

// ReadPage returns a copy of all the words in a frame.
func (s *Storage) ReadPage(index uint64) ([]uint32, error) {
	frame, err := s.createOrGetFrame(index)
	if err != nil {
		return nil, err
	}

	page := make([]uint32, s.wordsPerFrame)
	copy(page, frame)

	return page, nil
}

// WritePage replaces all the words in a frame.
func (s *Storage) WritePage(index uint64, words []uint32) error {
	if uint64(len(words)) != s.wordsPerFrame {
		return fmt.Errorf("page size %d does not match frame size %d",
			len(words), s.wordsPerFrame)
	}

	frame, err := s.createOrGetFrame(index)
	if err != nil {
		return err
	}

	copy(frame, words)

	return nil
}

// ClearPage zeroes all the words in a frame.
func (s *Storage) ClearPage(index uint64) error {
	frame, err := s.createOrGetFrame(index)
	if err != nil {
		return err
	}

	for i := range frame {
		frame[i] = 0
	}

	return nil
}
