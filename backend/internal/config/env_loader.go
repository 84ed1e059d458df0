/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 17:58:06
 * @FilePath: \isizulu-corpus\backend\internal\config\env_loader.go
 * @LastEditTime: 2025-10-15 11:12:40
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	// EnvFileOverride 指定唯一的配置文件路径，设置后不再向上查找 .env 文件。
	EnvFileOverride = "CORPUS_ENV_FILE"
	envSkipLoad     = "CONFIG_SKIP_ENV_LOAD"
)

// envFileNames 按优先级排列：.env.local 中的键先生效，.env 只补充缺失的键。
var envFileNames = []string{".env.local", ".env"}

type envFileLoader struct {
	mu      sync.Mutex
	done    bool
	enabled bool
	loaded  []string
	err     error
}

var dotenv = &envFileLoader{enabled: true}

// LoadEnvFiles 只加载一次 .env.local 与 .env，返回实际读取的文件。
// 进程环境变量优先，文件中的值只填补未设置的键。
func LoadEnvFiles() []string {
	files, _ := dotenv.load()
	return files
}

// EnvFileError 返回加载 .env 文件时遇到的第一个错误，供启动日志输出。
func EnvFileError() error {
	_, err := dotenv.load()
	return err
}

// SetEnvFileLoadingForTest 开关 .env 自动加载，并清除已加载状态。
func SetEnvFileLoadingForTest(enabled bool) {
	dotenv.mu.Lock()
	defer dotenv.mu.Unlock()

	dotenv.enabled = enabled
	dotenv.done = false
	dotenv.loaded = nil
	dotenv.err = nil
}

func (l *envFileLoader) load() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || os.Getenv(envSkipLoad) == "1" {
		return nil, nil
	}
	if l.done {
		return l.loaded, l.err
	}
	l.done = true

	for _, path := range envFileCandidates() {
		values, err := godotenv.Read(path)
		if err != nil {
			l.err = fmt.Errorf("read env file %s: %w", path, err)
			return l.loaded, l.err
		}
		for key, value := range values {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				l.err = fmt.Errorf("apply %s from %s: %w", key, path, err)
				return l.loaded, l.err
			}
		}
		l.loaded = append(l.loaded, path)
	}
	return l.loaded, nil
}

func envFileCandidates() []string {
	if explicit := strings.TrimSpace(os.Getenv(EnvFileOverride)); explicit != "" {
		return []string{explicit}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}

	var paths []string
	for _, name := range envFileNames {
		if path, ok := findUpwards(cwd, name); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// findUpwards 从 dir 开始逐级向上查找 name，命中最近的一份。
func findUpwards(dir, name string) (string, bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
