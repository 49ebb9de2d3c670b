package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// defaultYAML seeds the user config when no default file ships next to the
// binary. Secrets never live here; they come from the environment.
const defaultYAML = `app:
  port: 38471
  data_dir: .

search:
  host: jsearch.p.rapidapi.com
  region: in UAE
  num_pages: 1
  queries:
    - Frontend Developer
    - Software Developer
    - HTML Developer
    - React Developer
    - Next.js Developer

dispatch:
  cap: 50
  send_interval_seconds: 3
  resend: pending
  attachment_path: ""

smtp:
  host: smtp.gmail.com
  port: 587
  username: ""
  from_name: ""

imap:
  enabled: false
  host: imap.gmail.com
  port: 993
  username: ""
  mailbox: INBOX

schedule:
  enabled: false
  hours: [8, 12, 14, 18]

enrich:
  enabled: false
  max_per_run: 25
`

func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		// No packaged default: seed from the built-in one.
		if errors.Is(err, os.ErrNotExist) {
			if werr := os.WriteFile(userPath, []byte(defaultYAML), 0o644); werr != nil {
				return "", werr
			}
			return userPath, nil
		}
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
