package ecdsa

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mahdiidarabi/textbook-pkc/pkg/curve"
	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// progressInterval is how many candidate relations are tried between calls
// to SearchConfig.Progress.
const progressInterval = 10000

// Pattern is a specific nonce relation k2 = A·k1 + B to test.
type Pattern struct {
	A    *big.Int
	B    *big.Int
	Name string
}

// SearchConfig bounds SearchAffineNonces.
type SearchConfig struct {
	// ARange and BRange are the inclusive ranges of a and b tried in the
	// exhaustive phase.  a = 0 is always skipped.
	ARange [2]int
	BRange [2]int

	// MaxPairs limits the number of signature pairs searched exhaustively.
	MaxPairs int

	// Workers is the number of goroutines in the exhaustive phase; zero
	// means runtime.NumCPU().
	Workers int

	// Patterns are tried on every pair before the exhaustive phase, after
	// the built-in common patterns.
	Patterns []Pattern

	// Progress, when set, is called with the running count of relations
	// tried.  It is called from worker goroutines.
	Progress func(tested int64)
}

// DefaultSearchConfig returns a configuration covering small counters and
// strides.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ARange:   [2]int{-16, 16},
		BRange:   [2]int{-256, 256},
		MaxPairs: 100,
	}
}

// CommonPatterns returns the nonce relations produced by typical broken
// generators: counters, fixed strides and doublings.
func CommonPatterns() []Pattern {
	return []Pattern{
		{A: big.NewInt(1), B: big.NewInt(1), Name: "counter"},
		{A: big.NewInt(1), B: big.NewInt(-1), Name: "reverse_counter"},
		{A: big.NewInt(1), B: big.NewInt(2), Name: "step_2"},
		{A: big.NewInt(1), B: big.NewInt(256), Name: "step_256"},
		{A: big.NewInt(2), B: big.NewInt(0), Name: "doubling"},
		{A: big.NewInt(2), B: big.NewInt(1), Name: "double_plus_one"},
		{A: big.NewInt(-1), B: big.NewInt(0), Name: "negation"},
	}
}

// SearchAffineNonces looks for a pair of signatures whose nonces are related
// by k2 = a·k1 + b and returns the private key behind pub.
//
// The search runs in three phases: identical r values, then CommonPatterns
// and cfg.Patterns on every pair, then every (a, b) in the configured ranges
// on the first cfg.MaxPairs pairs.  Every candidate key is checked against
// pub, so a result is never a false positive.  It returns ctx.Err() when the
// context ends first and ErrNoRecovery when the ranges are exhausted.
func SearchAffineNonces(ctx context.Context, pub *PublicKey, sigs []*SignedDigest, cfg SearchConfig) (*RecoveryResult, error) {
	if pub == nil || pub.Domain == nil {
		return nil, pkcerr.New(pkcerr.ErrInvalidDomain, "public key must not be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := FindNonceReuse(pub, sigs)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, pkcerr.ErrNoRecovery) {
		return nil, err
	}

	patterns := append(CommonPatterns(), cfg.Patterns...)
	var tested int64
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := 0; i < len(sigs); i++ {
			for j := i + 1; j < len(sigs); j++ {
				tested++
				if result := tryRelation(pub, sigs, i, j, pattern.A, pattern.B); result != nil {
					result.Pattern = pattern.Name
					result.Tested = tested
					return result, nil
				}
			}
		}
	}

	result, err = rangeSearch(ctx, pub, sigs, cfg)
	if err != nil {
		return nil, err
	}
	result.Tested += tested
	return result, nil
}

// rangeSearch tries every (a, b) in the configured ranges on each signature
// pair, fanning pairs out to a pool of workers.
func rangeSearch(ctx context.Context, pub *PublicKey, sigs []*SignedDigest, cfg SearchConfig) (*RecoveryResult, error) {
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	maxPairs := cfg.MaxPairs
	if maxPairs <= 0 {
		maxPairs = DefaultSearchConfig().MaxPairs
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var testedCombinations int64
	resultChan := make(chan *RecoveryResult, 1)
	workChan := make(chan [2]int, numWorkers*4)

	go func() {
		defer close(workChan)
		pairCount := 0
		for i := 0; i < len(sigs) && pairCount < maxPairs; i++ {
			for j := i + 1; j < len(sigs) && pairCount < maxPairs; j++ {
				select {
				case <-ctx.Done():
					return
				case workChan <- [2]int{i, j}:
					pairCount++
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range workChan {
				if result := searchPair(ctx, pub, sigs, pair, cfg, &testedCombinations); result != nil {
					select {
					case resultChan <- result:
					default:
					}
					cancel()
					return
				}
			}
		}()
	}

	wg.Wait()

	select {
	case result := <-resultChan:
		result.Tested = atomic.LoadInt64(&testedCombinations)
		return result, nil
	default:
	}

	// The parent context, not our own cancel, ended the search.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	str := fmt.Sprintf("no affine nonce relation found after %d candidates",
		atomic.LoadInt64(&testedCombinations))
	return nil, pkcerr.New(pkcerr.ErrNoRecovery, str)
}

// searchPair tries every relation in range on one signature pair.
//
// For a fixed a the candidate key is affine in b, priv = alpha + b·beta, so
// its public point moves by beta·G from one b to the next.  Walking that line
// costs one point addition per candidate instead of a scalar multiplication.
func searchPair(ctx context.Context, pub *PublicKey, sigs []*SignedDigest, pair [2]int,
	cfg SearchConfig, tested *int64) *RecoveryResult {

	d := pub.Domain
	i, j := pair[0], pair[1]
	for a := cfg.ARange[0]; a <= cfg.ARange[1]; a++ {
		if a == 0 {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		aBig := big.NewInt(int64(a))
		alpha, beta, err := keyLine(d.N, sigs[i], sigs[j], aBig)
		if err != nil {
			continue
		}

		start := new(big.Int).Mul(big.NewInt(int64(cfg.BRange[0])), beta)
		start.Add(start, alpha)
		point := curve.ScalarBaseMultiply(d, start)
		step := curve.ScalarBaseMultiply(d, beta)

		for b := cfg.BRange[0]; b <= cfg.BRange[1]; b++ {
			combs := atomic.AddInt64(tested, 1)
			if cfg.Progress != nil && combs%progressInterval == 0 {
				cfg.Progress(combs)
			}

			if point.Equal(pub.Q) {
				bBig := big.NewInt(int64(b))
				if result := tryRelation(pub, sigs, i, j, aBig, bBig); result != nil {
					result.Pattern = fmt.Sprintf("brute_force_a%d_b%d", a, b)
					return result
				}
			}
			point = curve.Add(d, point, step)
		}
	}
	return nil
}
