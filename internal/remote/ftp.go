package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/keithbphillips/PinballUX/internal/catalog"
	"github.com/keithbphillips/PinballUX/internal/config"
	"github.com/keithbphillips/PinballUX/internal/fileutil"
	"github.com/keithbphillips/PinballUX/internal/logging"
	"github.com/keithbphillips/PinballUX/internal/media"
	"github.com/keithbphillips/PinballUX/internal/services"
)

// FTPSource serves listings and downloads from the configured FTP archive.
// The control connection is established lazily and reused; calls are
// serialized by the FTP protocol itself, so close each fetched stream
// before the next call.
type FTPSource struct {
	remote config.Remote
	logger *slog.Logger

	mu   sync.Mutex
	conn *ftp.ServerConn
}

var _ Source = (*FTPSource)(nil)

// NewFTPSource wires a source from the remote configuration section. A nil
// logger disables logging.
func NewFTPSource(remote config.Remote, logger *slog.Logger) *FTPSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FTPSource{remote: remote, logger: logging.NewComponentLogger(logger, "remote")}
}

func (s *FTPSource) connect(ctx context.Context) (*ftp.ServerConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn, nil
	}
	if s.remote.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "remote", "dial", "remote.host is not configured", nil)
	}

	addr := net.JoinHostPort(s.remote.Host, strconv.Itoa(s.remote.Port))
	conn, err := ftp.Dial(addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(time.Duration(s.remote.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "remote", "dial", fmt.Sprintf("connect to %s", addr), err)
	}

	password := s.remote.Password
	if password == "" && s.remote.User == "anonymous" {
		password = "anonymous"
	}
	if err := conn.Login(s.remote.User, password); err != nil {
		_ = conn.Quit()
		return nil, services.Wrap(services.ErrRemote, "remote", "login", fmt.Sprintf("login as %s", s.remote.User), err)
	}

	s.logger.Debug("ftp session established", logging.String("host", s.remote.Host))
	s.conn = conn
	return conn, nil
}

func (s *FTPSource) categoryDirs(category catalog.MediaCategory) ([]string, error) {
	dirs := s.remote.Categories[string(category)]
	if len(dirs) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "remote", "list", fmt.Sprintf("no remote directories configured for %s", category), nil)
	}
	out := make([]string, len(dirs))
	for i, dir := range dirs {
		out[i] = path.Join(s.remote.BasePath, dir)
	}
	return out, nil
}

// List merges the category's configured directories into one sorted,
// de-duplicated name list, keeping only recognizable media files.
// Directories missing on the server are skipped; the listing fails only
// when every directory is unreachable.
func (s *FTPSource) List(ctx context.Context, category catalog.MediaCategory) ([]string, error) {
	dirs, err := s.categoryDirs(category)
	if err != nil {
		return nil, err
	}
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	var lastErr error
	listed := 0
	for _, dir := range dirs {
		entries, err := conn.List(dir)
		if err != nil {
			lastErr = err
			s.logger.Warn("remote directory unavailable",
				logging.String(logging.FieldPath, dir),
				logging.Error(err),
			)
			continue
		}
		listed++
		for _, entry := range entries {
			if entry.Type != ftp.EntryTypeFile {
				continue
			}
			if _, ok := media.KindForExtension(path.Ext(entry.Name)); !ok {
				continue
			}
			if !seen[entry.Name] {
				seen[entry.Name] = true
				names = append(names, entry.Name)
			}
		}
	}
	if listed == 0 {
		return nil, services.Wrap(services.ErrRemote, "remote", "list", fmt.Sprintf("list %s directories", category), lastErr)
	}

	sort.Strings(names)
	s.logger.Debug("remote listing fetched",
		logging.String(logging.FieldCategory, string(category)),
		logging.Int(logging.FieldCount, len(names)),
	)
	return names, nil
}

// Fetch opens the named file, trying the category's directories in their
// configured priority order.
func (s *FTPSource) Fetch(ctx context.Context, category catalog.MediaCategory, name string) (io.ReadCloser, int64, error) {
	dirs, err := s.categoryDirs(category)
	if err != nil {
		return nil, 0, err
	}
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, 0, err
	}

	var lastErr error
	for _, dir := range dirs {
		remotePath := path.Join(dir, name)
		size := fileutil.UnknownSize
		if reported, err := conn.FileSize(remotePath); err == nil {
			size = reported
		}
		resp, err := conn.Retr(remotePath)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, size, nil
	}
	return nil, 0, services.Wrap(services.ErrRemote, "remote", "fetch", fmt.Sprintf("%s not found in any %s directory", name, category), lastErr)
}

// Close ends the FTP session.
func (s *FTPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Quit()
	s.conn = nil
	return err
}
