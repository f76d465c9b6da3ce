package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()

	t.Setenv("ARTISTRY_STORE_BACKEND", "file")
	t.Setenv("ARTISTRY_STORE_DIR", t.TempDir())
	t.Setenv("ARTISTRY_CHECKOUT_DOWNLOAD_DIR", t.TempDir())
	t.Setenv("ARTISTRY_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cliApp := newCLI()
	cliApp.Writer = &out
	cliApp.ErrWriter = &out

	err := cliApp.Run(append([]string{"artistry"}, args...))
	return out.String(), err
}

func TestCartCommands(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "cart", "add", "--id", "a1", "--title", "Dune", "--price", "10.00", "-q", "2")
	require.NoError(t, err)

	_, err = run(t, "cart", "add", "--id", "a2", "--title", "Sea", "--price", "30.00")
	require.NoError(t, err)

	out, err := run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "items: 3, total: 50.00 USD")

	out, err = run(t, "cart", "update", "-q", "0", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 1, total: 30.00 USD")

	out, err = run(t, "cart", "remove", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "missing is not in the cart")

	out, err = run(t, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 0, total: 0.00 USD")
}

func TestCartAddValidation(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "cart", "add", "--id", "a1", "--price", "abc")
	assert.ErrorContains(t, err, "price[abc] is not valid")

	_, err = run(t, "cart", "add", "--id", "a1", "--price", "5", "-q", "0")
	require.Error(t, err)

	_, err = run(t, "cart", "add", "--id", "a1", "--price", "5", "--currency", "EUR")
	require.Error(t, err)

	_, err = run(t, "cart", "remove")
	assert.ErrorContains(t, err, "item-id argument is required")
}

func TestOwnersAreIsolated(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "--owner", "alice", "cart", "add", "--id", "a1", "--price", "10")
	require.NoError(t, err)

	out, err := run(t, "--owner", "bob", "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 0")

	out, err = run(t, "--owner", "alice", "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 1")
}

func TestWishlistCommands(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "wishlist", "add", "--id", "w1", "--title", "Dune", "--price", "10")
	require.NoError(t, err)

	out, err := run(t, "wishlist", "add", "--id", "w1", "--title", "Dune", "--price", "10")
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("w1")))

	out, err = run(t, "wishlist", "toggle", "--id", "w1")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")

	out, err = run(t, "wishlist", "toggle", "--id", "w2", "--title", "Sea")
	require.NoError(t, err)
	assert.Contains(t, out, "Sea")

	out, err = run(t, "wishlist", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "w2")

	out, err = run(t, "wishlist", "clear")
	require.NoError(t, err)
	assert.NotContains(t, out, "w2")
}

func TestCheckoutCommand(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "checkout")
	require.Error(t, err)

	_, err = run(t, "cart", "add", "--id", "a1", "--title", "Dune", "--price", "10", "-q", "2")
	require.NoError(t, err)
	_, err = run(t, "cart", "add", "--id", "a2", "--title", "Sea", "--price", "30")
	require.NoError(t, err)

	out, err := run(t, "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 3, total: 50.00 USD, recorded: false")
	// artworks without an image cannot be downloaded, the purchase still completes
	assert.Contains(t, out, "download failed")

	out, err = run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "items: 0")
}

func TestUnsupportedBackend(t *testing.T) {
	t.Setenv("ARTISTRY_STORE_BACKEND", "sqlite")

	_, err := run(t, "cart", "show")
	require.Error(t, err)
}
