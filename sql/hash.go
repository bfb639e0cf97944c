package sql

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/flowsql/flowsql/batch"
)

// groupKeyHash computes the canonical value hash of a group-key tuple
// (spec.md §4.4: "hashing uses the canonical value hash (NULL hashes to a
// fixed sentinel; NULLs compare equal within keys)"). Collisions are
// resolved by the Aggregate operator via batch.Value.Equal, not by this
// hash alone — xxhash buckets the common case; equality settles ties.
func groupKeyHash(key []batch.Value) uint64 {
	h := xxhash.New()
	for _, v := range key {
		writeHashableValue(h, v)
		h.Write([]byte{0}) // field separator
	}
	return h.Sum64()
}

func writeHashableValue(h *xxhash.Digest, v batch.Value) {
	if v.IsNull() {
		h.Write([]byte{0xFF}) // fixed NULL sentinel
		return
	}
	switch v.Type().Kind {
	case batch.KindBoolean, batch.KindInt32, batch.KindInt64, batch.KindTimestamp:
		h.Write([]byte(strconv.FormatInt(v.AsInt64(), 10)))
	case batch.KindFloat32, batch.KindFloat64, batch.KindDecimal:
		h.Write([]byte(strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)))
	case batch.KindString:
		h.Write([]byte(v.AsString()))
	case batch.KindBytes:
		h.Write(v.AsBytes())
	case batch.KindArray:
		for _, e := range v.AsArray() {
			writeHashableValue(h, e)
			h.Write([]byte{0})
		}
	case batch.KindStruct:
		st := v.AsStruct()
		if st != nil {
			for _, e := range st.Values {
				writeHashableValue(h, e)
				h.Write([]byte{0})
			}
		}
	}
}

func groupKeysEqual(a, b []batch.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
