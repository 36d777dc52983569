package store

import (
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/weftworks/weft/api"
)

// pathIndex is the in-memory view of the tree that serves listing, id
// resolution, and reverse link lookups without re-walking the
// filesystem. It is built lazily by one walk, updated incrementally on
// every mutation, and dropped wholesale by markStale.
type pathIndex struct {
	mu    sync.RWMutex
	built bool

	byPath   map[string]*api.Node
	idToPath map[string]string

	// Reverse soft-link index: target node id → bitmap of internal ids
	// of the nodes whose links name it.
	linkedBy  map[string]*roaring.Bitmap
	pathIntID map[string]uint32 // path → internal bitmap id
	intToPath []string          // reverse: internal id → path
	nextIntID uint32            // monotonic counter
}

func newPathIndex() *pathIndex {
	return &pathIndex{}
}

// markStale drops the whole index; the next ensure rebuilds it.
func (ix *pathIndex) markStale() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.built = false
	ix.byPath = nil
	ix.idToPath = nil
	ix.linkedBy = nil
	ix.pathIntID = nil
	ix.intToPath = nil
	ix.nextIntID = 0
}

func (ix *pathIndex) stale() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return !ix.built
}

// build repopulates the index from one walk of the tree. Concurrent
// callers race to the lock and the losers see built and return.
func (ix *pathIndex) build(walk func(visit func(*api.Node)) error) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.built {
		return nil
	}
	ix.resetLocked()
	if err := walk(func(n *api.Node) { ix.putLocked(n) }); err != nil {
		return err
	}
	ix.built = true
	return nil
}

// resetLocked reallocates the maps. Callers hold mu.
func (ix *pathIndex) resetLocked() {
	ix.byPath = make(map[string]*api.Node)
	ix.idToPath = make(map[string]string)
	ix.linkedBy = make(map[string]*roaring.Bitmap)
	ix.pathIntID = make(map[string]uint32)
	ix.intToPath = nil
	ix.nextIntID = 0
}

// put inserts or replaces one node. A no-op while the index is stale:
// the next rebuild picks the change up from disk.
func (ix *pathIndex) put(n *api.Node) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.built {
		return
	}
	ix.putLocked(n)
}

func (ix *pathIndex) putLocked(n *api.Node) {
	if old, ok := ix.byPath[n.Path]; ok {
		ix.dropLinksLocked(n.Path, old.SoftLinks)
		if old.Metadata.ID != "" && old.Metadata.ID != n.Metadata.ID {
			delete(ix.idToPath, old.Metadata.ID)
		}
	}
	ix.byPath[n.Path] = n
	if n.Metadata.ID != "" {
		ix.idToPath[n.Metadata.ID] = n.Path
	}
	ix.addLinksLocked(n.Path, n.SoftLinks)
}

// remove drops the node at path and, for directories, its whole subtree.
func (ix *pathIndex) remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.built {
		return
	}
	ix.removeLocked(path)
	prefix := path + "/"
	for p := range ix.byPath {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			ix.removeLocked(p)
		}
	}
}

func (ix *pathIndex) removeLocked(p string) {
	old, ok := ix.byPath[p]
	if !ok {
		return
	}
	ix.dropLinksLocked(p, old.SoftLinks)
	delete(ix.byPath, p)
	if old.Metadata.ID != "" && ix.idToPath[old.Metadata.ID] == p {
		delete(ix.idToPath, old.Metadata.ID)
	}
}

// get returns a copy-safe clone of the indexed node.
func (ix *pathIndex) get(path string) (*api.Node, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n, ok := ix.byPath[path]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// nodes returns clones of every indexed node, unordered.
func (ix *pathIndex) nodes() []*api.Node {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*api.Node, 0, len(ix.byPath))
	for _, n := range ix.byPath {
		out = append(out, n.Clone())
	}
	return out
}

// pathForID resolves a node id to its current path.
func (ix *pathIndex) pathForID(id string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	p, ok := ix.idToPath[id]
	return p, ok
}

// backlinks returns the paths of every indexed node whose links contain
// the given id.
func (ix *pathIndex) backlinks(id string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := []string{}
	bm, ok := ix.linkedBy[id]
	if !ok {
		return out
	}
	it := bm.Iterator()
	for it.HasNext() {
		intID := it.Next()
		if int(intID) >= len(ix.intToPath) {
			continue
		}
		p := ix.intToPath[intID]
		if p == "" {
			continue
		}
		// Stale bits survive removals; byPath is the source of truth.
		if _, present := ix.byPath[p]; present {
			out = append(out, p)
		}
	}
	return out
}

// internLocked assigns (or returns) the internal bitmap id for a path.
func (ix *pathIndex) internLocked(path string) uint32 {
	id, ok := ix.pathIntID[path]
	if !ok {
		id = ix.nextIntID
		ix.nextIntID++
		ix.pathIntID[path] = id
		for uint32(len(ix.intToPath)) <= id {
			ix.intToPath = append(ix.intToPath, "")
		}
		ix.intToPath[id] = path
	}
	return id
}

func (ix *pathIndex) addLinksLocked(srcPath string, targets []string) {
	if len(targets) == 0 {
		return
	}
	intID := ix.internLocked(srcPath)
	for _, target := range targets {
		bm, ok := ix.linkedBy[target]
		if !ok {
			bm = roaring.New()
			ix.linkedBy[target] = bm
		}
		bm.Add(intID)
	}
}

func (ix *pathIndex) dropLinksLocked(srcPath string, targets []string) {
	intID, ok := ix.pathIntID[srcPath]
	if !ok {
		return
	}
	for _, target := range targets {
		bm, ok := ix.linkedBy[target]
		if !ok {
			continue
		}
		bm.Remove(intID)
		if bm.IsEmpty() {
			delete(ix.linkedBy, target)
		}
	}
}
