// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bufio"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/oraclepool/pool"
)

func TestJSONLSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, err := NewJSONLSink(path)
	require.NoError(t, err)

	sender := common.HexToAddress("0x5000000000000000000000000000000000000001")
	sink.Emit(pool.SyncEvent{Reserve0: big.NewInt(100), Reserve1: big.NewInt(30000)})
	sink.Emit(pool.MintEvent{Sender: sender, Amount0: big.NewInt(100), Amount1: big.NewInt(30000)})
	require.NoError(t, sink.Err())
	require.NoError(t, sink.Close())

	records := readRecords(t, path)
	require.Len(t, records, 2)

	assert.Equal(t, float64(1), records[0]["seq"])
	assert.Equal(t, "Sync", records[0]["event"])
	data := records[0]["data"].(map[string]any)
	assert.Equal(t, float64(100), data["reserve0"])

	assert.Equal(t, float64(2), records[1]["seq"])
	assert.Equal(t, "Mint", records[1]["event"])
	data = records[1]["data"].(map[string]any)
	assert.Equal(t, sender.Hex(), common.HexToAddress(data["sender"].(string)).Hex())
}

func TestJSONLSinkCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.jsonl")
	sink, err := NewJSONLSink(path)
	require.NoError(t, err)
	sink.Emit(pool.SyncEvent{Reserve0: big.NewInt(1), Reserve1: big.NewInt(2)})
	require.NoError(t, sink.Close())

	require.Len(t, readRecords(t, path), 1)
}

func TestJSONLSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := NewJSONLSink(path)
		require.NoError(t, err)
		sink.Emit(pool.SyncEvent{Reserve0: big.NewInt(int64(i)), Reserve1: big.NewInt(0)})
		require.NoError(t, sink.Close())
	}

	// Reopening appends; sequence numbers restart per sink instance.
	records := readRecords(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0]["seq"])
	assert.Equal(t, float64(1), records[1]["seq"])
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}
