package configwatcher

import (
	"path/filepath"
	"sync"
	"time"

	"elearn_backend/internal/config"
	"elearn_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 配置重载回调，收到的是重新解析后的完整配置
type Reloader func(cfg *config.Config)

// WatchConfig 监听配置文件变更，写入事件去抖一秒后重新加载并回调。
// 编辑器常以 rename+create 方式保存，所以 Create 也触发。
// 监听建立失败只记错误，不影响主流程
func WatchConfig(configPath string, reloader Reloader) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log.Error("failed to create config watcher", zap.Error(err))
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		logger.Log.Error("failed to resolve config path", zap.String("path", configPath), zap.Error(err))
		return
	}
	if err := watcher.Add(absPath); err != nil {
		logger.Log.Error("failed to watch config file", zap.String("path", absPath), zap.Error(err))
		return
	}

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	reload := func() {
		newCfg, err := config.LoadConfig(filepath.Dir(absPath))
		if err != nil {
			logger.Log.Error("failed to reload config", zap.String("path", absPath), zap.Error(err))
			return
		}
		logger.Log.Info("config file reloaded", zap.String("path", absPath))
		reloader(newCfg)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(time.Second, reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("config watcher error", zap.Error(err))
		}
	}
}
