package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a live login session (JWT ID).
func (r *CacheKeyStruct) UserSessionKey(userID, jti string) string {
	return fmt.Sprintf("login:%s:%s", userID, jti)
}

// ExamDocumentKey returns the cache key for a serialized exam document.
func (r *CacheKeyStruct) ExamDocumentKey(examID string) string {
	return fmt.Sprintf("exam:%s:document", examID)
}

// IntegrityCounterKey returns the hash key counting integrity signals of one attempt.
// Fields are signal kinds, values are counts.
func (r *CacheKeyStruct) IntegrityCounterKey(examID, userID string) string {
	return fmt.Sprintf("exam:%s:user:%s:integrity", examID, userID)
}

// IntegrityCounterPattern matches every attempt counter of an exam.
func (r *CacheKeyStruct) IntegrityCounterPattern(examID string) string {
	return fmt.Sprintf("exam:%s:user:*:integrity", examID)
}

// ExamMonitorChannel returns the Redis PubSub channel name for an exam monitor
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:monitor", examID)
}

var CacheKey = NewCacheKeyStruct()
