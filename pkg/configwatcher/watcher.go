package configwatcher

import (
	"exam_reviewer_backend/internal/config"
	"exam_reviewer_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounce = time.Second

type ConfigReloader func(cfg *config.Config)

// WatchConfig 监听配置文件所在目录，文件被写入或替换后防抖重载并回调；阻塞直到 stop 关闭。
// 监听目录而不是文件本身，编辑器以 rename 方式保存时也能收到事件。
func WatchConfig(configPath string, stop <-chan struct{}, reloader ConfigReloader) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		logger.Log.Error("resolve config path failed", zap.String("path", configPath), zap.Error(err))
		return
	}
	dir := filepath.Dir(absPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log.Error("create config watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		logger.Log.Error("watch config dir failed", zap.String("dir", dir), zap.Error(err))
		return
	}

	var pending <-chan time.Time
	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(debounce)
			}
		case <-pending:
			pending = nil
			newCfg, err := config.LoadConfig(dir)
			if err != nil {
				logger.Log.Error("reload config failed, keeping previous", zap.Error(err))
				continue
			}
			logger.Log.Info("config reloaded", zap.String("path", absPath))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("config watcher error", zap.Error(err))
		}
	}
}
