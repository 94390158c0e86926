package ecdsa

import (
	"context"
	"math/big"
	"runtime"
	"sync"
)

// BatchItem is one digest and signature to verify.
type BatchItem struct {
	Digest    *big.Int
	Signature *Signature
}

// VerifyBatch verifies every item against pub using a pool of workers and
// returns one result per item, in input order.  workers <= 0 selects
// runtime.NumCPU().
//
// Malformed items verify as false.  If ctx ends before all items are checked
// VerifyBatch returns ctx.Err() and no results.
func VerifyBatch(ctx context.Context, pub *PublicKey, items []BatchItem, workers int) ([]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]bool, len(items))
	workChan := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workChan {
				// Each index is written by exactly one worker.
				results[i] = Verify(pub, items[i].Digest, items[i].Signature)
			}
		}()
	}

	var err error
feed:
	for i := range items {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case workChan <- i:
		}
	}
	close(workChan)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}
