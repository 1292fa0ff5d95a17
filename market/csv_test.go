package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")

	in := []Candle{
		{Timestamp: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Timestamp: 2000, Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
	}
	require.NoError(t, WriteCSV(path, in))

	out, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	body := "2000,1.5,3,1,2.5,20\n1000,1,2,0.5,1.5,10\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	out, err := LoadCSV(path)
	require.NoError(t, err)

	// Normalized on load.
	require.Len(t, out, 2)
	assert.Equal(t, int64(1000), out[0].Timestamp)
	assert.Equal(t, int64(2000), out[1].Timestamp)
}

func TestLoadCSVBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	body := "timestamp,open,high,low,close,volume\n1000,1,2,0.5,not-a-number,10\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := LoadCSV(path)
	require.Error(t, err)
}

func TestLoadCSVShortRowSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	body := "timestamp,open,high,low,close,volume\n1000,1,2,0.5,1.5,10\n2000,1\n3000,1,2,0.5,1.5,10\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	out, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
}
