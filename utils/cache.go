package utils

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"garrison/model"
)

var (
	sessionCache = make(map[string]model.DraftSession)
	cacheMutex   = &sync.RWMutex{}
	cacheTTL     = 15 * time.Minute // 草稿会话15分钟后过期
)

func init() {
	go startCacheJanitor()
}

// AddToCache stores a draft session and returns a unique ID.
func AddToCache(data model.DraftSession) string {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	id := uuid.New().String()
	data.CreatedAt = time.Now()
	sessionCache[id] = data
	return id
}

// GetFromCache retrieves a draft session by ID.
func GetFromCache(id string) (model.DraftSession, bool) {
	cacheMutex.RLock()
	defer cacheMutex.RUnlock()

	data, found := sessionCache[id]
	return data, found
}

// UpdateCache replaces an existing draft session in place.
func UpdateCache(id string, data model.DraftSession) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if existing, found := sessionCache[id]; found {
		data.CreatedAt = existing.CreatedAt
		sessionCache[id] = data
	}
}

// RemoveFromCache removes a draft session by ID.
func RemoveFromCache(id string) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	delete(sessionCache, id)
}

// startCacheJanitor runs a background process to clean up expired cache entries.
func startCacheJanitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cacheMutex.Lock()
		for id, data := range sessionCache {
			if time.Since(data.CreatedAt) > cacheTTL {
				delete(sessionCache, id)
			}
		}
		cacheMutex.Unlock()
	}
}
