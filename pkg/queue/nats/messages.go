package nats

import (
	"encoding/json"

	"github.com/andeanstats/gdprev/pkg/model"
)

// Subject constants
const (
	SubjectReleaseWrite   = "gdprev.releases.write"
	SubjectBenchmarkWrite = "gdprev.benchmarks.write"
)

// ReleaseBatchMsg represents a batch of release vintages to persist
type ReleaseBatchMsg struct {
	Releases []model.Release `json:"releases"`
}

// BenchmarkBatchMsg represents a batch of benchmark-indicator rows
type BenchmarkBatchMsg struct {
	Flags []model.BenchmarkFlag `json:"flags"`
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeReleaseBatch deserializes a ReleaseBatchMsg from JSON bytes
func DecodeReleaseBatch(data []byte) (*ReleaseBatchMsg, error) {
	var msg ReleaseBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeBenchmarkBatch deserializes a BenchmarkBatchMsg from JSON bytes
func DecodeBenchmarkBatch(data []byte) (*BenchmarkBatchMsg, error) {
	var msg BenchmarkBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
