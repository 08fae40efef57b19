package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"localhost:8420": true,
		"127.0.0.1:8420": true,
		"[::1]:8420":     true,
		"0.0.0.0:8420":   false,
		"10.0.0.1:8420":  false,
		"localhost":      false,
	}
	for addr, want := range tests {
		assert.Equal(t, want, IsLoopback(addr), addr)
	}
}

func TestValidHostPort(t *testing.T) {
	assert.NoError(t, ValidHostPort("0.0.0.0:9090"))
	assert.Error(t, ValidHostPort("0.0.0.0"))
}
