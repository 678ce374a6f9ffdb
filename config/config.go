// Package config holds the process-wide tunables a coredbd process
// needs to boot: page size, buffer pool capacity, LRU-K's K,
// header/directory/bucket max depths, and the data directory. Values
// load from an HCL file, with defaults so tests and cmd/coredbd never
// require a config file to exist.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl"
)

// Config is the full set of tunables a coredbd process needs to boot.
type Config struct {
	DataDir             string `hcl:"data_dir"`
	BufferPoolCapacity  int    `hcl:"buffer_pool_capacity"`
	ReplacerK           int    `hcl:"replacer_k"`
	HeaderMaxDepth      int    `hcl:"header_max_depth"`
	DirectoryMaxDepth   int    `hcl:"directory_max_depth"`
	BucketMaxSize       int    `hcl:"bucket_max_size"`
}

// Default returns the configuration used when no file is loaded: a
// small buffer pool and shallow hash-index depths suitable for tests
// and local experimentation.
func Default() *Config {
	return &Config{
		DataDir:            "./data",
		BufferPoolCapacity: 64,
		ReplacerK:          2,
		HeaderMaxDepth:     2,
		DirectoryMaxDepth:  9,
		BucketMaxSize:      0, // page-derived default, see index/hash.bucketPage.init
	}
}

// Load parses an HCL config file at path, filling in Default()'s
// values for any field the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := hcl.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
