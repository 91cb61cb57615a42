package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures FTP downloads. Credentials default to anonymous,
// which is what public statistics mirrors expect.
type FTPOptions struct {
	Timeout  time.Duration
	User     string
	Password string
}

// FTPFetcher retrieves dataset files from ftp:// locations. A session is
// dialed per download and torn down when the returned reader is closed.
type FTPFetcher struct {
	opts FTPOptions
}

func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	return &FTPFetcher{opts: opts}
}

// splitFTPLocation breaks an ftp:// URL into a dialable host:port and the
// remote file path. A missing port means the standard FTP port 21.
func splitFTPLocation(location string) (hostPort, remotePath string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", eris.Wrapf(err, "ftp: parse %s", location)
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: %s is not an ftp location", location)
	}
	if u.Path == "" {
		return "", "", eris.Errorf("ftp: %s has no file path", location)
	}

	hostPort = u.Host
	if _, _, splitErr := net.SplitHostPort(hostPort); splitErr != nil {
		hostPort = net.JoinHostPort(hostPort, "21")
	}
	return hostPort, u.Path, nil
}

// connect dials and authenticates a session. URL userinfo, when present,
// overrides the configured credentials.
func (f *FTPFetcher) connect(ctx context.Context, hostPort string, userinfo *url.Userinfo) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(hostPort, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.opts.Timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", hostPort)
	}

	user, pass := f.opts.User, f.opts.Password
	if userinfo != nil {
		user = userinfo.Username()
		pass, _ = userinfo.Password()
	}
	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, eris.Wrapf(err, "ftp: login %s", hostPort)
	}
	return conn, nil
}

// ftpFile keeps the session alive for the lifetime of the data transfer;
// Close finishes the transfer and quits the session.
type ftpFile struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (f *ftpFile) Read(p []byte) (int, error) {
	return f.resp.Read(p)
}

func (f *ftpFile) Close() error {
	err := f.resp.Close()
	if quitErr := f.conn.Quit(); err == nil {
		err = quitErr
	}
	if err != nil {
		return eris.Wrap(err, "ftp: close transfer")
	}
	return nil
}

// Download opens the remote file for reading. The session stays open until
// the returned reader is closed.
func (f *FTPFetcher) Download(ctx context.Context, location string) (io.ReadCloser, error) {
	hostPort, remotePath, err := splitFTPLocation(location)
	if err != nil {
		return nil, err
	}

	var userinfo *url.Userinfo
	if u, parseErr := url.Parse(location); parseErr == nil {
		userinfo = u.User
	}

	zap.L().Debug("fetching over ftp", zap.String("host", hostPort), zap.String("path", remotePath))

	conn, err := f.connect(ctx, hostPort, userinfo)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		conn.Quit()
		return nil, eris.Wrapf(err, "ftp: retrieve %s", remotePath)
	}

	return &ftpFile{resp: resp, conn: conn}, nil
}

// DownloadToFile stages the remote file at path. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, location string, path string) (int64, error) {
	rc, err := f.Download(ctx, location)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ftp: create %s", path)
	}

	n, copyErr := io.Copy(out, rc)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return n, eris.Wrapf(copyErr, "ftp: stage %s", path)
	}
	return n, nil
}
