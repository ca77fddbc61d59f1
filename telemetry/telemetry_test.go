package telemetry_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpenner/dectnrp-core/telemetry"
)

func TestWriter_WritesOneJSONObjectPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	w, err := telemetry.NewWriter(path)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0).UTC()
	require.NoError(t, w.Write(1, now, map[string]any{"snr_db": 12.5}, nil, nil, nil))
	require.NoError(t, w.Write(2, now, nil, nil, map[string]any{"long_id": 7}, nil))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var rec1 telemetry.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec1))
	assert.Equal(t, uint32(1), rec1.WorkerID)
	assert.Equal(t, now.UnixNano(), rec1.TimeSinceEpoch)
	assert.NotEmpty(t, rec1.Session)
	assert.Equal(t, 12.5, rec1.Sync["snr_db"])

	var rec2 telemetry.Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec2))
	assert.Equal(t, uint32(2), rec2.WorkerID)
	assert.Equal(t, rec1.Session, rec2.Session)
	assert.EqualValues(t, 7, rec2.MAC["long_id"])
}

func TestWriter_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")

	w1, err := telemetry.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w1.Write(1, time.Now(), nil, nil, nil, nil))
	require.NoError(t, w1.Close())

	w2, err := telemetry.NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w2.Write(2, time.Now(), nil, nil, nil, nil))
	require.NoError(t, w2.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := 0
	for _, c := range b {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
}
