package field

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mahdiidarabi/textbook-pkc/pkg/pkcerr"
)

// MillerRabinRounds is the number of random Miller-Rabin bases used by
// IsProbablePrime.  Each round lets a composite through with probability at
// most 1/4, so 64 rounds bound false positives by 2^-128.
const MillerRabinRounds = 64

// IsProbablePrime reports whether n is prime with a false-positive
// probability of at most 2^-128.
func IsProbablePrime(n *big.Int) bool {
	if n == nil || n.Sign() <= 0 {
		return false
	}
	return n.ProbablyPrime(MillerRabinRounds)
}

// GeneratePrime returns a random prime of exactly bitLength bits.  The top bit
// and the low bit of every candidate are forced, so the result is odd (for
// bitLength > 2 it is never 2) and has the requested length.
func GeneratePrime(random io.Reader, bitLength int) (*big.Int, error) {
	if err := checkBitLength(bitLength, 2); err != nil {
		return nil, err
	}

	random = reader(random)
	for {
		candidate, err := nextCandidate(random, bitLength)
		if err != nil {
			return nil, err
		}
		if IsProbablePrime(candidate) {
			return candidate, nil
		}
	}
}

// PrimeResult contains the result of a parallel prime search.
type PrimeResult struct {
	Prime      *big.Int // The prime found
	Candidates int64    // Number of candidates tested across all workers
}

// GeneratePrimeParallel searches for a prime of bitLength bits with several
// workers testing independent candidates.  It returns the first prime found.
//
// A workers value of 0 uses one worker per CPU.  The random reader is shared
// between workers behind a mutex, so any io.Reader may be supplied.  The
// search stops with ctx.Err() when the context is cancelled first.
func GeneratePrimeParallel(ctx context.Context, random io.Reader, bitLength, workers int) (*PrimeResult, error) {
	if err := checkBitLength(bitLength, 2); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shared := &lockedReader{r: reader(random)}
	tested := int64(0)
	resultChan := make(chan *big.Int, 1)
	errChan := make(chan error, 1)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				candidate, err := nextCandidate(shared, bitLength)
				if err != nil {
					select {
					case errChan <- err:
					default:
					}
					cancel()
					return
				}
				atomic.AddInt64(&tested, 1)

				if !IsProbablePrime(candidate) {
					continue
				}

				select {
				case resultChan <- candidate:
				default:
				}
				cancel()
				return
			}
		}()
	}

	wg.Wait()

	select {
	case prime := <-resultChan:
		return &PrimeResult{
			Prime:      prime,
			Candidates: atomic.LoadInt64(&tested),
		}, nil
	default:
	}
	select {
	case err := <-errChan:
		return nil, err
	default:
	}
	return nil, ctx.Err()
}

// GenerateSafePrime returns a prime q of bitLength bits such that (q-1)/2 is
// also prime.  Safe primes are rare, so this checks ctx between candidates.
func GenerateSafePrime(ctx context.Context, random io.Reader, bitLength int) (*big.Int, error) {
	if err := checkBitLength(bitLength, 3); err != nil {
		return nil, err
	}

	random = reader(random)
	q := new(big.Int)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := GeneratePrime(random, bitLength-1)
		if err != nil {
			return nil, err
		}

		// q = 2r + 1 always has exactly bitLength bits since r has its top
		// bit set.
		q.Lsh(r, 1)
		q.Add(q, one)
		if IsProbablePrime(q) {
			return new(big.Int).Set(q), nil
		}
	}
}

// RandomScalar returns an integer drawn uniformly from [1, n-1] using the
// supplied reader (crypto/rand.Reader when nil).
func RandomScalar(random io.Reader, n *big.Int) (*big.Int, error) {
	if n == nil || n.Cmp(two) < 0 {
		str := fmt.Sprintf("scalar bound must be at least 2, got %v", n)
		return nil, pkcerr.New(pkcerr.ErrInvalidScalar, str)
	}

	max := new(big.Int).Sub(n, one)
	k, err := rand.Int(reader(random), max)
	if err != nil {
		return nil, err
	}
	return k.Add(k, one), nil
}

// nextCandidate reads bitLength random bits and forces the top and low bits.
func nextCandidate(random io.Reader, bitLength int) (*big.Int, error) {
	buf := make([]byte, (bitLength+7)/8)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, err
	}

	// Clear the excess high bits of the first byte.
	if excess := uint(len(buf)*8 - bitLength); excess > 0 {
		buf[0] &= byte(0xff >> excess)
	}

	candidate := new(big.Int).SetBytes(buf)
	candidate.SetBit(candidate, bitLength-1, 1)
	candidate.SetBit(candidate, 0, 1)
	return candidate, nil
}

func checkBitLength(bitLength, min int) error {
	if bitLength < min {
		str := fmt.Sprintf("bit length must be at least %d, got %d", min,
			bitLength)
		return pkcerr.New(pkcerr.ErrInvalidBitLength, str)
	}
	return nil
}

func reader(random io.Reader) io.Reader {
	if random == nil {
		return rand.Reader
	}
	return random
}

// lockedReader serializes reads so a single reader can feed several workers.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
