package mem

// A SwapSpace stores the images of pages that are not currently resident in
// physical memory, keyed by virtual page number.
//
// A page that was never paged out reads as a zero page, so a first-ever
// access and a re-access after eviction go through the same path.
type SwapSpace struct {
	wordsPerPage uint64
	images       map[uint64][]uint32
}

// NewSwapSpace creates a swap space for pages of wordsPerPage words.
func NewSwapSpace(wordsPerPage uint64) *SwapSpace {
	return &SwapSpace{
		wordsPerPage: wordsPerPage,
		images:       make(map[uint64][]uint32),
	}
}

// PageIn returns a copy of the stored image of the given virtual page, or a
// zero page if the page was never paged out.
func (s *SwapSpace) PageIn(vpn uint64) []uint32 {
	page := make([]uint32, s.wordsPerPage)

	image, ok := s.images[vpn]
	if ok {
		copy(page, image)
	}

	return page
}

// PageOut stores a copy of words as the image of the given virtual page,
// replacing any previous image.
func (s *SwapSpace) PageOut(vpn uint64, words []uint32) {
	image := make([]uint32, s.wordsPerPage)
	copy(image, words)
	s.images[vpn] = image
}

// Drop discards all stored page images.
func (s *SwapSpace) Drop() {
	s.images = make(map[uint64][]uint32)
}
