package pypi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	cases := map[string]string{
		"api":            "https://pypi.org/search/?q=api",
		"http client":    "https://pypi.org/search/?q=http+client",
		"c++ & friends?": "https://pypi.org/search/?q=c%2B%2B+%26+friends%3F",
	}
	for term, want := range cases {
		got, err := SearchURL("https://pypi.org/search/", term)
		require.NoError(t, err)
		require.Equal(t, want, got, term)
	}
}

func TestOpenSearchConsent(t *testing.T) {
	t.Run("banner present", func(t *testing.T) {
		session := newFakeSession(fakePage{url: "https://pypi.org/search/?q=api"})
		session.consent = true
		require.NoError(t, NewScraper(testConfig(), session).OpenSearch(context.Background()))
		require.True(t, session.consentClicked)
		require.Equal(t, "https://pypi.org/search/?q=api", session.navigatedTo)
	})

	t.Run("banner absent is not an error", func(t *testing.T) {
		session := newFakeSession(fakePage{url: "https://pypi.org/search/?q=api"})
		require.NoError(t, NewScraper(testConfig(), session).OpenSearch(context.Background()))
		require.False(t, session.consentClicked)
	})
}

func TestOpenSearchNavigationFailure(t *testing.T) {
	session := newFakeSession(fakePage{})
	session.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	err := NewScraper(testConfig(), session).OpenSearch(context.Background())
	require.ErrorIs(t, err, ErrNavigation)
	require.ErrorIs(t, err, session.navigateErr)
}
