package mmu

// emptyTableCandidate describes the first all-zero table found during a
// scan. The parent fields are filled lazily: they stay unresolved until the
// traversal visits the frame holding the entry that points at the candidate.
type emptyTableCandidate struct {
	frame       uint64
	parent      uint64
	row         uint64
	parentKnown bool
}

// evictionCandidate describes the data leaf whose virtual page is cyclically
// farthest from the page that triggered the allocation.
type evictionCandidate struct {
	frame    uint64
	parent   uint64
	row      uint64
	vpn      uint64
	distance uint64
}

// scanResult aggregates the three results of one tree traversal, one per
// reclamation priority.
type scanResult struct {
	emptyTable    emptyTableCandidate
	hasEmptyTable bool

	maxFrame uint64

	victim    evictionCandidate
	hasVictim bool
}

// scanTree walks the whole live page-table tree once, in pre-order, and
// collects the allocation candidates for all three reclamation priorities.
//
// The exclude frame is the table about to receive a new child. It is never
// reported as an empty-table candidate, since reclaiming the frame currently
// being linked into would undo the allocation in progress.
//
// Once the scan returns, a reported empty-table candidate always has its
// parent resolved: the parent's row loop recurses into the candidate before
// the parent's own post-loop bookkeeping runs.
func (c *Comp) scanTree(targetPage, exclude uint64) scanResult {
	res := scanResult{}
	c.scanFrame(rootFrame, 0, 0, targetPage, exclude, &res)
	return res
}

func (c *Comp) scanFrame(
	frame uint64,
	depth int,
	pagePrefix, targetPage, exclude uint64,
	res *scanResult,
) {
	g := c.geometry
	allZero := true

	for row := uint64(0); row < g.WordsPerPage(); row++ {
		entry := uint64(c.mustReadEntry(frame, row))
		if entry == 0 {
			continue
		}

		allZero = false

		if entry > res.maxFrame {
			res.maxFrame = entry
		}

		prefix := pagePrefix<<g.OffsetWidth() | row

		if depth+1 < g.TablesDepth() {
			c.scanFrame(entry, depth+1, prefix, targetPage, exclude, res)
			continue
		}

		// Strict-greater comparison keeps the first candidate found in
		// pre-order when two leaves are equidistant from the target.
		dist := g.CyclicDistance(prefix, targetPage)
		if !res.hasVictim || dist > res.victim.distance {
			res.victim = evictionCandidate{
				frame:    entry,
				parent:   frame,
				row:      row,
				vpn:      prefix,
				distance: dist,
			}
			res.hasVictim = true
		}
	}

	if allZero && frame != rootFrame && frame != exclude && !res.hasEmptyTable {
		res.emptyTable = emptyTableCandidate{frame: frame}
		res.hasEmptyTable = true
	}

	if res.hasEmptyTable && !res.emptyTable.parentKnown {
		c.resolveEmptyTableParent(frame, res)
	}
}

// resolveEmptyTableParent checks whether the frame being visited holds the
// single entry that points at the recorded empty-table candidate.
func (c *Comp) resolveEmptyTableParent(frame uint64, res *scanResult) {
	for row := uint64(0); row < c.geometry.WordsPerPage(); row++ {
		entry := uint64(c.mustReadEntry(frame, row))

		if entry == res.emptyTable.frame {
			res.emptyTable.parent = frame
			res.emptyTable.row = row
			res.emptyTable.parentKnown = true
			return
		}
	}
}
