package store

import (
	"crypto/md5"
	"encoding/hex"
	"log"
	"strconv"

	"github.com/nci/csvgrid/processor"
	"github.com/nci/gomemcache/memcache"
)

// SampleCache keeps drilled readings in memcache. Keys are hashed since
// memcache limits key length and characters.
type SampleCache struct {
	mc      *memcache.Client
	Verbose bool
}

// NewSampleCache connects lazily; errors surface as cache misses.
func NewSampleCache(server string) *SampleCache {
	return &SampleCache{mc: memcache.New(server)}
}

func cacheKey(key string) string {
	buff := md5.Sum([]byte(key))
	return hex.EncodeToString(buff[:])
}

func (c *SampleCache) Get(key string) (processor.Reading, bool) {
	item, err := c.mc.Get(cacheKey(key))
	if err != nil {
		if err != memcache.ErrCacheMiss && c.Verbose {
			log.Printf("memcache get: %v", err)
		}
		return processor.Reading{}, false
	}
	return decodeReading(item.Value)
}

func (c *SampleCache) Set(key string, r processor.Reading) {
	// memcache may not necessarily retain this anyway
	err := c.mc.Set(&memcache.Item{Key: cacheKey(key), Value: encodeReading(r)})
	if err != nil && c.Verbose {
		log.Printf("memcache set: %v", err)
	}
}

// A missing reading is stored as an empty value.
func encodeReading(r processor.Reading) []byte {
	if r.Missing {
		return []byte{}
	}
	return []byte(strconv.FormatFloat(r.Value, 'g', -1, 64))
}

func decodeReading(b []byte) (processor.Reading, bool) {
	if len(b) == 0 {
		return processor.Reading{Missing: true}, true
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return processor.Reading{}, false
	}
	return processor.Reading{Value: v}, true
}
