// Package syncq stores picks made while the API was unreachable so `nmo sync`
// can replay them. Only ever one pending pick per day matters; the server's
// one-per-day constraint rejects stale duplicates on replay.
package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type PendingPick struct {
	ID       string `json:"id"`
	Number   int    `json:"number"`
	PickedAt string `json:"picked_at"` // local civil date when queued, informational only
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".nmo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]PendingPick, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []PendingPick{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []PendingPick{}, nil
	}
	var out []PendingPick
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(picks []PendingPick) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(picks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(pick PendingPick) error {
	picks, err := Load()
	if err != nil {
		return err
	}
	picks = append(picks, pick)
	return Save(picks)
}

func Clear() error {
	return Save([]PendingPick{})
}
