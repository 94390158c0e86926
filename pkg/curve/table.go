package curve

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
)

// baseTableCacheSize is the number of domains whose doubling tables are kept.
const baseTableCacheSize = 16

// baseTables caches, per domain, the table 2^i·G for i in [0, bitlen(n)).
// The cache is safe for concurrent use.
var baseTables *lru.Cache

func init() {
	var err error
	baseTables, err = lru.New(baseTableCacheSize)
	if err != nil {
		panic(err)
	}
}

// ScalarBaseMultiply returns k·G for the base point of d.
//
// k is reduced modulo n first, so negative scalars are accepted.  The
// doublings of G are computed once per domain and cached, leaving only the
// additions for each call.
func ScalarBaseMultiply(d *DomainParams, k *big.Int) Point {
	scalar := new(big.Int).Mod(k, d.N)
	if scalar.Sign() == 0 {
		return Identity()
	}

	table := baseTable(d)
	result := Identity()
	for i := 0; i < scalar.BitLen(); i++ {
		if scalar.Bit(i) == 1 {
			result = Add(d, result, table[i])
		}
	}
	return result
}

// baseTable returns the cached doubling table for d, building it on a miss.
// Two goroutines missing at once both build the table; the results are equal.
func baseTable(d *DomainParams) []Point {
	key := d.cacheKey()
	if v, ok := baseTables.Get(key); ok {
		return v.([]Point)
	}

	size := d.N.BitLen()
	table := make([]Point, size)
	table[0] = d.G
	for i := 1; i < size; i++ {
		table[i] = Double(d, table[i-1])
	}

	baseTables.Add(key, table)
	return table
}
