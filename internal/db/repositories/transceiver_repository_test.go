package repositories

import (
	"testing"

	"vatwatch/internal/models/entities"
)

func TestChunkTransceivers(t *testing.T) {
	rows := func(n int) []entities.Transceiver {
		out := make([]entities.Transceiver, n)
		for i := range out {
			out[i].TransceiverID = i
		}
		return out
	}

	cases := []struct {
		name string
		n    int
		want []int
	}{
		{"empty batch", 0, nil},
		{"under one chunk", 42, []int{42}},
		{"exact multiple", 10000, []int{5000, 5000}},
		{"large flush", 12500, []int{5000, 5000, 2500}},
	}
	for _, tc := range cases {
		chunks := chunkTransceivers(rows(tc.n), transceiverInsertChunk)
		if len(chunks) != len(tc.want) {
			t.Errorf("%s: expected %d chunks, got %d", tc.name, len(tc.want), len(chunks))
			continue
		}
		seen := 0
		for i, chunk := range chunks {
			if len(chunk) != tc.want[i] {
				t.Errorf("%s: chunk %d expected %d rows, got %d", tc.name, i, tc.want[i], len(chunk))
			}
			for _, row := range chunk {
				if row.TransceiverID != seen {
					t.Fatalf("%s: chunk %d out of order, expected id %d got %d", tc.name, i, seen, row.TransceiverID)
				}
				seen++
			}
		}
		if seen != tc.n {
			t.Errorf("%s: expected %d rows across chunks, got %d", tc.name, tc.n, seen)
		}
	}
}

// Nine bound columns per transceiver row; the chunk size must keep every
// statement under the 65535-parameter statement limit.
func TestChunkSizeUnderBindLimit(t *testing.T) {
	const paramsPerRow = 9
	if transceiverInsertChunk*paramsPerRow >= 65535 {
		t.Fatalf("chunk of %d rows binds %d parameters, over the statement limit",
			transceiverInsertChunk, transceiverInsertChunk*paramsPerRow)
	}
}
