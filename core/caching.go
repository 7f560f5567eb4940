package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached extraction schema
const currentCacheVersion = 1

// cachedExtract returns the extraction for path, consulting the cache store when present.
// Entries are keyed by document contents, so an edited export never hits a stale entry.
func cachedExtract(ctx context.Context, path string, store contract.CacheStore, log logrus.FieldLogger) (*schema.ExtractOutput, error) {
	if store == nil {
		return extractFile(ctx, path, log)
	}

	key, err := generateCacheKey(path)
	if err != nil {
		// Unreadable for hashing means unreadable for parsing too
		return nil, err
	}

	if result := checkCacheHit(store, key); result != nil {
		log.WithField("key", key[:12]).Debug("Extraction cache hit")
		log.Infof("Parsed %d health records", len(result.Records))
		log.Infof("Parsed %d workout records", len(result.Workouts))
		return result, nil
	}

	return computeAndStore(ctx, path, store, key, log)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.ExtractOutput {
	data, version, _, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion {
		return nil // Cache miss (version mismatch)
	}

	var result schema.ExtractOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(ctx context.Context, path string, store contract.CacheStore, key string, log logrus.FieldLogger) (*schema.ExtractOutput, error) {
	result, err := extractFile(ctx, path, log)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			log.WithError(err).Warn("Failed to store extraction in cache")
		}
	}

	return result, nil
}

// generateCacheKey hashes the document contents together with the cache version.
func generateCacheKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open export %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := fmt.Fprintf(h, "healthtab:extract:v%d:", currentCacheVersion); err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash export %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
