package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator_Generate(t *testing.T) {
	gen := NewFixedSessionGenerator("test-session-001")

	assert.Equal(t, "test-session-001", gen.Generate())
	assert.Equal(t, "test-session-001", gen.Generate(), "always returns the same id")
}

func TestFixedSessionGenerator_DefaultID(t *testing.T) {
	gen := NewFixedSessionGenerator("")
	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestFixedSessionGenerator_ThreadSafety(t *testing.T) {
	gen := NewFixedSessionGenerator("shared")

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = gen.Generate()
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, "shared", id)
	}
}
