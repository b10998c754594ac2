package storage

import (
	"encoding/binary"
	"fmt"
)

// Key schema for Pebble:
//
//   ord:<id>       → TradeOrder (JSON)
//   seq:<8-byte>   → order id (big-endian sequence number, insertion index)
//   nextseq        → next sequence number (8-byte big-endian)
//
// The seq: rows give ListIDs its insertion order for free via a prefix scan.

const (
	prefixOrder = "ord:"
	prefixSeq   = "seq:"
)

func orderKey(id string) []byte {
	return []byte(fmt.Sprintf("%s%s", prefixOrder, id))
}

func seqKey(seq uint64) []byte {
	k := make([]byte, len(prefixSeq)+8)
	copy(k, prefixSeq)
	binary.BigEndian.PutUint64(k[len(prefixSeq):], seq)
	return k
}

func seqPrefix() []byte {
	return []byte(prefixSeq)
}

func nextSeqKey() []byte {
	return []byte("nextseq")
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
