// Package iocache is for caching extraction results and tracking import history.
package iocache

import (
	"sync"

	"github.com/huangsam/healthtab/internal/contract"
)

// CacheStoreManager manages the extraction cache and the import history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	extract      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetExtractStore returns the extraction CacheStore, or nil when caching is disabled.
func (mgr *CacheStoreManager) GetExtractStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.extract
}

// GetHistoryStore returns the HistoryStore, or nil when tracking is disabled.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
