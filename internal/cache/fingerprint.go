package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/docdex-ai/docdex/internal/domain/search/query"
)

// Fingerprint hashes the normalized query together with the chunk-collection
// version and the engine's invalidation epoch. Every field that can change
// the result participates, so two equal fingerprints always denote
// byte-identical pages, and bumping either counter makes every prior
// fingerprint unreachable without any eviction sweep.
func Fingerprint(q *query.Query, collectionVersion, epoch uint64) string {
	h := sha256.New()

	writeString(h, string(q.Mode()))
	writeString(h, q.Text())

	emb := q.Embedding()
	writeUint64(h, uint64(len(emb)))
	for _, v := range emb {
		writeUint32(h, math.Float32bits(v))
	}

	writeUint64(h, uint64(q.TopN()))
	if t, ok := q.Threshold(); ok {
		writeUint64(h, 1)
		writeUint64(h, math.Float64bits(t))
	} else {
		writeUint64(h, 0)
	}

	scope := q.Scope()
	writeUint64(h, uint64(len(scope)))
	for _, id := range scope {
		writeString(h, id)
	}

	writeUint64(h, uint64(q.Page()))
	writeUint64(h, collectionVersion)
	writeUint64(h, epoch)

	return hex.EncodeToString(h.Sum(nil))
}

// writeString length-prefixes the value so adjacent fields cannot collide.
func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	writeUint64(h, uint64(len(s)))
	_, _ = h.Write([]byte(s))
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeUint32(h interface{ Write([]byte) (int, error) }, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}
