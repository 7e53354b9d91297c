package nan

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// peerCacheSize bounds the per-session peer table. Firmware discovery tables
// are far smaller than this in practice.
const peerCacheSize = 256

// PeerTable maps a session's peer instance ids to the MAC each peer was most
// recently seen with. The freshest MAC always wins: every match and every
// received message refreshes the entry, so outgoing messages follow a peer
// across identity (MAC) changes transparently.
type PeerTable struct {
	cache *lru.Cache[uint32, MacAddress]
}

func newPeerTable() *PeerTable {
	cache, err := lru.New[uint32, MacAddress](peerCacheSize)
	if err != nil {
		// only reachable with a non-positive size constant
		panic(err)
	}
	return &PeerTable{cache: cache}
}

func (t *PeerTable) Update(peerID uint32, mac MacAddress) {
	t.cache.Add(peerID, mac)
}

func (t *PeerTable) Lookup(peerID uint32) (MacAddress, bool) {
	return t.cache.Get(peerID)
}

func (t *PeerTable) Len() int {
	return t.cache.Len()
}
