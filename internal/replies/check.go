package replies

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"outreach-engine/internal/store"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
}

type Summary struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
}

// Check logs into the configured mailbox, scans recent unseen messages, and
// flips interview status to Replied for every record whose contact address
// wrote back. Read-only select; nothing is flagged or deleted.
func Check(ctx context.Context, db *sql.DB, cfg Config) (Summary, error) {
	var sum Summary

	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return sum, errors.New("imap host/username/password are required")
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}

	contacted, err := store.ContactedEmails(ctx, db)
	if err != nil {
		return sum, err
	}
	if len(contacted) == 0 {
		return sum, nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host},
	})
	if err != nil {
		return sum, fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() {
		if err := c.Logout().Wait(); err != nil {
			log.Printf("[replies] imap logout: %v", err)
		}
		_ = c.Close()
	}()

	if err := c.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		return sum, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(cfg.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return sum, fmt.Errorf("imap select %s: %w", cfg.Mailbox, err)
	}

	// only look back a week; dispatch runs daily and re-checks often
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().AddDate(0, 0, -7),
	}

	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return sum, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return sum, nil
	}

	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:      true,
		Envelope: true,
	})
	defer func() { _ = fetchCmd.Close() }()

	for {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return sum, fmt.Errorf("imap fetch collect: %w", err)
		}
		sum.Scanned++

		if buf.Envelope == nil {
			continue
		}
		for i := range buf.Envelope.From {
			from := strings.ToLower(strings.TrimSpace(buf.Envelope.From[i].Addr()))
			if from == "" || !contacted[from] {
				continue
			}
			n, err := store.MarkReplied(ctx, db, from)
			if err != nil {
				log.Printf("[replies] mark replied failed from=%q err=%v", from, err)
				continue
			}
			if n > 0 {
				sum.Matched += int(n)
				log.Printf("[replies] reply detected from=%q records=%d", from, n)
			}
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return sum, fmt.Errorf("imap fetch close: %w", err)
	}

	log.Printf("[replies] done scanned=%d matched=%d", sum.Scanned, sum.Matched)
	return sum, nil
}
