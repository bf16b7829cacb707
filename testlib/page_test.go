package testlib

import (
	"context"
	"image/png"
	"io/ioutil"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixtureServerPage(t *testing.T) {
	fixture, err := NewFixtureServer(500, 378)
	require.NoError(t, err)
	defer fixture.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitReachable(ctx, fixture.PageURL(), time.Millisecond))

	resp, err := http.Get(fixture.PageURL())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `<img src="/img.png">`))
}

func TestFixtureServerImage(t *testing.T) {
	fixture, err := NewFixtureServer(500, 378)
	require.NoError(t, err)
	defer fixture.Close()

	resp, err := http.Get(fixture.ImageURL())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	require.Equal(t, 500, img.Bounds().Dx())
	require.Equal(t, 378, img.Bounds().Dy())
}
