package session

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// idGenerator issues ULIDs: a 48-bit millisecond timestamp followed by 80
// bits of randomness, Crockford Base32 encoded. A per-millisecond sequence
// in the first random bytes keeps IDs from one generator sortable.
type idGenerator struct {
	mu     sync.Mutex
	lastTS uint64
	seq    uint16
}

func (g *idGenerator) next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := uint64(now.UnixMilli())
	if ts <= g.lastTS {
		ts = g.lastTS
		g.seq++
	} else {
		g.lastTS = ts
		g.seq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], g.seq)
	return encodeULID(b)
}

// encodeULID writes 128 bits as 26 base32 characters, most significant first.
// The leading character carries only the top 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
