package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"numonce/internal/auth"
)

// Session state for the nmo command, persisted under ~/.nmo.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

var ErrNotLoggedIn = errors.New("not logged in, run `nmo login` first")

func sessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".nmo")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func SaveSession(s auth.Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID,
		Email:        s.User.Email,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func LoadSession() (Session, error) {
	var s Session
	path, err := sessionPath()
	if err != nil {
		return s, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, ErrNotLoggedIn
		}
		return s, err
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, err
	}
	if s.AccessToken == "" {
		return s, ErrNotLoggedIn
	}
	return s, nil
}

func ClearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
