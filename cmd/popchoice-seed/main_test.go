package main

import (
	"context"
	"strings"
	"testing"

	ingestuc "github.com/kailas-cloud/popchoice/internal/usecase/ingest"
)

func TestRootCmd_Defaults(t *testing.T) {
	cmd := newRootCmd()

	size, err := cmd.Flags().GetInt("chunk-size")
	if err != nil {
		t.Fatalf("chunk-size flag: %v", err)
	}
	overlap, err := cmd.Flags().GetInt("chunk-overlap")
	if err != nil {
		t.Fatalf("chunk-overlap flag: %v", err)
	}
	if size != ingestuc.DefaultChunkSize || overlap != ingestuc.DefaultChunkOverlap {
		t.Errorf("chunking = %d/%d, want %d/%d", size, overlap, ingestuc.DefaultChunkSize, ingestuc.DefaultChunkOverlap)
	}

	file, _ := cmd.Flags().GetString("file")
	if !strings.HasSuffix(file, "movies.txt") {
		t.Errorf("default file = %q", file)
	}
}

func TestRunSeed_RejectsOverlapNotSmallerThanChunk(t *testing.T) {
	err := runSeed(context.Background(), seedOptions{chunkSize: 50, chunkOverlap: 50})
	if err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Fatalf("expected overlap error, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig("local", "/nonexistent/popchoice.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
