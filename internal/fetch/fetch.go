package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/gadomski/atlas/internal/config"
	"github.com/gadomski/atlas/internal/sbd"
)

// dialTimeout bounds connection establishment to the receiving server.
const dialTimeout = 30 * time.Second

// Mirror copies message files from the receiving server into a local store
// directory, preserving the one-subdirectory-per-modem layout.
type Mirror struct {
	cfg      config.FetchConfig
	localDir string
}

// NewMirror creates a mirror that syncs into localDir.
func NewMirror(cfg config.FetchConfig, localDir string) *Mirror {
	return &Mirror{cfg: cfg, localDir: localDir}
}

// Run syncs immediately and then on every interval tick until ctx is
// cancelled. Sync failures are logged and retried on the next tick.
func (m *Mirror) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		if n, err := m.Sync(ctx); err != nil {
			slog.Error("fetch: sync failed", "addr", m.cfg.Addr, "err", err)
		} else if n > 0 {
			slog.Info("fetch: synced", "addr", m.cfg.Addr, "new", n)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sync connects, lists the remote store, and downloads every message file
// that is not present locally. It returns the number of files downloaded.
func (m *Mirror) Sync(ctx context.Context) (int, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	listing, err := output(client, fmt.Sprintf("find %s -type f -name '*%s'",
		m.cfg.RemoteDir, sbd.Extension))
	if err != nil {
		return 0, fmt.Errorf("fetch: list remote store: %w", err)
	}
	paths := ParseListing(m.cfg.RemoteDir, listing)

	var downloaded int
	for _, relative := range paths {
		local := filepath.Join(m.localDir, filepath.FromSlash(relative))
		if _, err := os.Stat(local); err == nil {
			continue
		}
		payload, err := output(client, fmt.Sprintf("cat %s",
			path.Join(m.cfg.RemoteDir, relative)))
		if err != nil {
			return downloaded, fmt.Errorf("fetch: download %s: %w", relative, err)
		}
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return downloaded, fmt.Errorf("fetch: %w", err)
		}
		if err := os.WriteFile(local, payload, 0o644); err != nil {
			return downloaded, fmt.Errorf("fetch: %w", err)
		}
		downloaded++
	}
	return downloaded, nil
}

// connect dials the receiving server and authenticates with the configured
// key, falling back to a password.
func (m *Mirror) connect(ctx context.Context) (*ssh.Client, error) {
	sshConfig, err := m.clientConfig()
	if err != nil {
		return nil, err
	}
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("fetch: dial %s: %w", m.cfg.Addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, m.cfg.Addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: handshake with %s: %w", m.cfg.Addr, err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (m *Mirror) clientConfig() (*ssh.ClientConfig, error) {
	sshConfig := &ssh.ClientConfig{
		User: m.cfg.User,
		// The receiving server is on a private network; host keys rotate
		// whenever the box is reimaged.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}
	if m.cfg.KeyFile != "" {
		key, err := os.ReadFile(m.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("fetch: read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("fetch: parse key file: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}
	if password := m.cfg.Password(); password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(password))
	}
	if len(sshConfig.Auth) == 0 {
		return nil, fmt.Errorf("fetch: no authentication configured: need a key file or a password")
	}
	return sshConfig, nil
}

// output runs one command in a fresh session and returns its stdout.
func output(client *ssh.Client, command string) ([]byte, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	defer session.Close()
	return session.Output(command)
}

// ParseListing turns find output into store-relative slash paths. Lines
// outside root or without the modem-subdirectory layout are skipped.
func ParseListing(root string, listing []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(listing), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		relative, found := strings.CutPrefix(line, strings.TrimSuffix(root, "/")+"/")
		if !found {
			continue
		}
		parts := strings.Split(relative, "/")
		if len(parts) != 2 {
			continue
		}
		if _, ok := sbd.SessionTimeFromPath(parts[1]); !ok {
			continue
		}
		paths = append(paths, relative)
	}
	return paths
}
