package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 20; i++ {
		require.Contains(t, userAgents, RandomUserAgent())
	}
}

func TestStealthOpts(t *testing.T) {
	require.NotEmpty(t, StealthOpts(true, ""))
	require.NotEmpty(t, StealthOpts(false, "custom-agent"))
}

func TestFingerprintScript(t *testing.T) {
	for _, want := range []string{"webdriver", "Intel Inc.", "Intel Iris OpenGL Engine", "Win32"} {
		require.Contains(t, FingerprintScript, want)
	}
}
