package meter

// This file contains the configuration file handling, loading a YAML file
// over the defaults and watching it for edits while the meter runs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	"gopkg.in/yaml.v2"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	// Editors often write a file in several steps, wait for them to settle
	configSettle = 250 * time.Millisecond
)

// LoadConfig reads a YAML configuration, keys absent from the file keep
// their defaults and a missing file yields the defaults
func LoadConfig(path string) (cfg *model.Config, err errors.Error) {
	cfg = model.DefaultConfig()
	if len(path) == 0 {
		return cfg, nil
	}

	body, errGo := ioutil.ReadFile(path)
	if errGo != nil {
		if os.IsNotExist(errGo) {
			return cfg, nil
		}
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	if errGo = yaml.Unmarshal(body, cfg); errGo != nil {
		return nil, errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	if err = cfg.Validate(); err != nil {
		return nil, err.With("path", path)
	}
	cfg.Normalize()
	return cfg, nil
}

// WatchConfig delivers a freshly loaded configuration whenever the file at
// path is changed.  The containing directory is watched so that files
// replaced by a rename are still seen.
func WatchConfig(path string, configC chan<- *model.Config, errorC chan<- errors.Error, quitC <-chan struct{}) (err errors.Error) {
	watcher, errGo := fsnotify.NewWatcher()
	if errGo != nil {
		return errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	target := filepath.Clean(path)
	if errGo = watcher.Add(filepath.Dir(target)); errGo != nil {
		watcher.Close()
		return errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}

	go func() {
		defer watcher.Close()

		settle := time.NewTimer(configSettle)
		settle.Stop()
		defer settle.Stop()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				settle.Reset(configSettle)

			case <-settle.C:
				cfg, err := LoadConfig(target)
				if err != nil {
					select {
					case errorC <- err:
					case <-time.After(500 * time.Millisecond):
						logger.Warn("could not send error for config reload", "error", err.Error())
					}
					continue
				}
				logger.Info("configuration reloaded", "path", target)
				select {
				case configC <- cfg:
				case <-quitC:
					return
				}

			case errGo, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errorC <- errors.Wrap(errGo).With("path", target).With("stack", stack.Trace().TrimRuntime()):
				case <-time.After(500 * time.Millisecond):
				}

			case <-quitC:
				return
			}
		}
	}()

	return nil
}
