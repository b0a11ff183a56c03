package extractor

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tiktok-stats/pkg/log"
)

const labelsPollInterval = 10 * time.Second

// labelsFile is the YAML layout:
//
//	rules:
//	  - field: followers
//	    labels: [Followers, 粉丝]
type labelsFile struct {
	Rules []Rule `yaml:"rules"`
}

// LabelsWatcher keeps an Extractor's rules in sync with a YAML file.
type LabelsWatcher struct {
	extractor   *Extractor
	filePath    string
	interval    time.Duration
	lastModTime time.Time
}

// LoadLabels reads rules from filePath into e and returns a watcher that
// reloads them when the file changes. The initial load must succeed.
func LoadLabels(e *Extractor, filePath string) (*LabelsWatcher, error) {
	w := &LabelsWatcher{extractor: e, filePath: filePath, interval: labelsPollInterval}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if err := w.reload(); err != nil {
		return nil, err
	}
	w.lastModTime = info.ModTime()

	return w, nil
}

func (w *LabelsWatcher) reload() error {
	data, err := os.ReadFile(w.filePath)
	if err != nil {
		return err
	}

	var file labelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	return w.extractor.SetRules(file.Rules)
}

// Watch polls the file's modification time until ctx is done. A file that
// fails to load is logged and the previous rules stay active.
func (w *LabelsWatcher) Watch(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *LabelsWatcher) poll() {
	info, err := os.Stat(w.filePath)
	if err != nil {
		return
	}
	if !info.ModTime().After(w.lastModTime) {
		return
	}
	w.lastModTime = info.ModTime()

	if err := w.reload(); err != nil {
		log.GlobalWarn("labels reload failed, keeping previous rules", "file", w.filePath, "error", err.Error())
		return
	}
	log.GlobalInfo("labels reloaded", "file", w.filePath)
}
