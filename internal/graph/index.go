package graph

import "neurograph/internal/model"

// Index is the connectivity index: presynaptic neuron ID to outgoing synapse
// IDs, with (pre, post) resolution in O(1). It replaces the linear scan over
// every synapse during propagation. Buckets keep creation order, so when
// multiple synapses join the same pair the oldest live one wins and deletion
// promotes the next oldest.
type Index struct {
	outgoing map[uint32][]uint32
	incoming map[uint32][]uint32
	byPair   map[pairKey][]uint32
}

type pairKey struct {
	pre  uint32
	post uint32
}

func NewIndex() *Index {
	return &Index{
		outgoing: make(map[uint32][]uint32),
		incoming: make(map[uint32][]uint32),
		byPair:   make(map[pairKey][]uint32),
	}
}

// Add registers a synapse under its endpoints and endpoint pair.
func (ix *Index) Add(s *model.Synapse) {
	ix.outgoing[s.PreID] = append(ix.outgoing[s.PreID], s.ID)
	ix.incoming[s.PostID] = append(ix.incoming[s.PostID], s.ID)
	key := pairKey{pre: s.PreID, post: s.PostID}
	ix.byPair[key] = append(ix.byPair[key], s.ID)
}

// Remove drops a synapse's entries.
func (ix *Index) Remove(s *model.Synapse) {
	ix.outgoing[s.PreID] = removeID(ix.outgoing[s.PreID], s.ID)
	if len(ix.outgoing[s.PreID]) == 0 {
		delete(ix.outgoing, s.PreID)
	}
	ix.incoming[s.PostID] = removeID(ix.incoming[s.PostID], s.ID)
	if len(ix.incoming[s.PostID]) == 0 {
		delete(ix.incoming, s.PostID)
	}
	key := pairKey{pre: s.PreID, post: s.PostID}
	ix.byPair[key] = removeID(ix.byPair[key], s.ID)
	if len(ix.byPair[key]) == 0 {
		delete(ix.byPair, key)
	}
}

// Resolve returns the oldest live synapse ID connecting pre to post.
func (ix *Index) Resolve(preID, postID uint32) (uint32, bool) {
	bucket := ix.byPair[pairKey{pre: preID, post: postID}]
	if len(bucket) == 0 {
		return 0, false
	}
	return bucket[0], true
}

// Outgoing returns the synapse IDs leaving preID in creation order, copied.
func (ix *Index) Outgoing(preID uint32) []uint32 {
	return append([]uint32(nil), ix.outgoing[preID]...)
}

// Incoming returns the synapse IDs arriving at postID in creation order,
// copied.
func (ix *Index) Incoming(postID uint32) []uint32 {
	return append([]uint32(nil), ix.incoming[postID]...)
}
