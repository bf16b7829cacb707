package testlib

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestHarnessIs(t *testing.T) {
	h := NewHarness()

	require.True(t, h.Is(500, 500, "image width"))
	require.False(t, h.Is(377, 378, "image height"))

	checks := h.Checks()
	require.Len(t, checks, 2)
	require.Equal(t, Check{Name: "image width", Actual: 500, Expected: 500, Pass: true}, checks[0])
	require.Equal(t, Check{Name: "image height", Actual: 377, Expected: 378, Pass: false}, checks[1])
	require.False(t, h.Passed())
}

func TestHarnessPassed(t *testing.T) {
	h := NewHarness()
	require.False(t, h.Passed())

	h.Is(500, 500, "image width")
	h.Is(378, 378, "image height")
	require.True(t, h.Passed())
}

func TestHarnessFinishOnce(t *testing.T) {
	finished := 0
	h := NewHarness()
	h.FinishFunc = func() { finished++ }

	h.Is(500, 500, "image width")
	require.NoError(t, h.Finish())
	require.NoError(t, h.Finish())
	require.True(t, h.Finished())
	require.Equal(t, 1, finished)
}

func TestHarnessFinishWithoutChecks(t *testing.T) {
	h := NewHarness()
	require.Error(t, h.Finish())
	require.False(t, h.Finished())
}

func TestHarnessSaveResults(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	h := NewHarness()
	h.Is(500, 500, "image width")
	h.Is(377, 378, "image height")
	require.NoError(t, h.SaveResults(db, "ImgloadResults"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ImgloadResults").Scan(&count))
	require.Equal(t, 2, count)

	var name string
	var actual, expected int
	var pass bool
	require.NoError(t, db.QueryRow(
		"SELECT Name, Actual, Expected, Pass FROM ImgloadResults WHERE Name = ?",
		"image height").Scan(&name, &actual, &expected, &pass))
	require.Equal(t, 377, actual)
	require.Equal(t, 378, expected)
	require.False(t, pass)
}
