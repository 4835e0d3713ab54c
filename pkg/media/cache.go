package media

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path"
)

const cacheFileSuffix = ".go-playback-cache"

func (p *ProberCtx) globalCachePath(mediaPath string) string {
	h := sha1.New()
	h.Write([]byte(mediaPath))
	hash := h.Sum(nil)

	fileName := fmt.Sprintf("%x%s", hash, cacheFileSuffix)
	return path.Join(p.config.CacheDir, fileName)
}

func (p *ProberCtx) getCacheData(mediaPath string) ([]byte, error) {
	// check for local cache
	localCachePath := mediaPath + cacheFileSuffix
	if _, err := os.Stat(localCachePath); err == nil {
		p.logger.Debug().Str("path", localCachePath).Msg("media local cache hit")
		return os.ReadFile(localCachePath)
	}

	// check for global cache
	if p.config.CacheDir == "" {
		return nil, os.ErrNotExist
	}

	globalCachePath := p.globalCachePath(mediaPath)
	if _, err := os.Stat(globalCachePath); err == nil {
		p.logger.Debug().Str("path", globalCachePath).Msg("media global cache hit")
		return os.ReadFile(globalCachePath)
	}

	return nil, os.ErrNotExist
}

func (p *ProberCtx) saveLocalCacheData(mediaPath string, data []byte) error {
	return os.WriteFile(mediaPath+cacheFileSuffix, data, 0644)
}

func (p *ProberCtx) saveGlobalCacheData(mediaPath string, data []byte) error {
	if err := os.MkdirAll(p.config.CacheDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(p.globalCachePath(mediaPath), data, 0644)
}
