// Package docache implements a batched cache-aside layer between an
// application and a backing document store.
//
// Components:
//   - Provider: keyed byte store that executes GET/SET/DEL batches in one
//     round trip (e.g. Redis MULTI/EXEC, Ristretto, BigCache).
//   - Store[V]: backing store with a batched "field in keys" lookup.
//   - Codec[V]: (de)serializes V <-> []byte. Compact JSON by default.
//   - Resolver[V]: one store lookup per batch, input-ordered, with data-miss
//     reporting.
//
// Keys:
//
//	<lowercase entity>:<raw key>
//
// A record is cached under its primary key and under the value of every
// additional key field, all holding the same payload.
//
// Read path:
//
//	hits  := provider GET for every key   (round trip 1)
//	recs  := store.Find(field, misses)     (store round trip)
//	_      = provider SET pk+aliases       (round trip 2)
package docache
