// Package fetcher loads tabular crime-statistics sources from local paths,
// HTTP(S) URLs, and FTP URLs, in CSV or XLSX format.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for retrieving a dataset location.
type Fetcher interface {
	// Download retrieves the location and returns its contents.
	Download(ctx context.Context, location string) (io.ReadCloser, error)

	// DownloadToFile retrieves the location into a local file. Returns bytes written.
	DownloadToFile(ctx context.Context, location string, path string) (int64, error)
}

// Table is a parsed tabular source: a header row plus data rows.
// Rows may be ragged; callers index through the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Resolver routes a location to the right Fetcher by URL scheme.
// Locations without a scheme are treated as local file paths.
type Resolver struct {
	HTTP Fetcher
	FTP  Fetcher
}

// fetcherFor picks the Fetcher for a location, or nil for local paths.
func (r *Resolver) fetcherFor(location string) (Fetcher, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return nil, nil
	}
	switch u.Scheme {
	case "http", "https":
		if r.HTTP == nil {
			return nil, eris.New("fetcher: no http fetcher configured")
		}
		return r.HTTP, nil
	case "ftp":
		if r.FTP == nil {
			return nil, eris.New("fetcher: no ftp fetcher configured")
		}
		return r.FTP, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

// ReadTable fetches and parses a dataset location into a Table.
// Format is chosen by extension: .xlsx uses the XLSX parser, everything
// else is read as CSV.
func (r *Resolver) ReadTable(ctx context.Context, location string) (*Table, error) {
	f, err := r.fetcherFor(location)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(path.Ext(location), ".xlsx") {
		return r.readXLSX(ctx, f, location)
	}
	return r.readCSV(ctx, f, location)
}

func (r *Resolver) readCSV(ctx context.Context, f Fetcher, location string) (*Table, error) {
	var rc io.ReadCloser
	var err error
	if f == nil {
		rc, err = os.Open(location)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", location)
		}
	} else {
		rc, err = f.Download(ctx, location)
		if err != nil {
			return nil, err
		}
	}
	defer rc.Close()

	return ParseCSV(ctx, rc)
}

// readXLSX stages remote workbooks in a temp file; the XLSX parser needs a path.
func (r *Resolver) readXLSX(ctx context.Context, f Fetcher, location string) (*Table, error) {
	local := location
	if f != nil {
		tmp, err := os.CreateTemp("", "risk-engine-*.xlsx")
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create temp file")
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if _, err := f.DownloadToFile(ctx, location, tmp.Name()); err != nil {
			return nil, err
		}
		local = tmp.Name()
	}

	return ParseXLSX(local, XLSXOptions{})
}
