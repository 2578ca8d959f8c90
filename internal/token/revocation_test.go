package token

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevokeAndCheck(t *testing.T) {
	req := require.New(t)
	reg := NewRevocationRegistry()

	req.False(reg.IsRevoked("tok-1"))

	reg.Revoke("tok-1")
	req.True(reg.IsRevoked("tok-1"))
	req.False(reg.IsRevoked("tok-2"))

	// Idempotent re-revocation; entry stays for the process lifetime.
	reg.Revoke("tok-1")
	req.True(reg.IsRevoked("tok-1"))
}

func TestRevokeConcurrent(t *testing.T) {
	req := require.New(t)
	reg := NewRevocationRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tok := fmt.Sprintf("tok-%d", n)
			reg.Revoke(tok)
			reg.IsRevoked(tok)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		req.True(reg.IsRevoked(fmt.Sprintf("tok-%d", i)))
	}
}
