// Package fetcher implements the HTTP transport used for quote lookups and
// the readers for URL list files.
package fetcher

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadURLsFile reads a URL list from path. The format is picked by extension:
// .csv takes the first column (an optional "url" header row is skipped),
// .json expects an array of strings, .xml is read as a sitemap, anything else
// is one URL per line with blank lines and #-comments ignored.
func ReadURLsFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "urls: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVURLs(ctx, f)
	case ".json":
		return ReadJSONURLs(ctx, f)
	case ".xml":
		return ReadSitemapURLs(ctx, f)
	default:
		return ReadLineURLs(ctx, f)
	}
}

// ReadCSVURLs reads the first column of each CSV record.
func ReadCSVURLs(ctx context.Context, r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var urls []string
	first := true
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "urls: csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return urls, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "urls: csv: read row")
		}
		if len(record) == 0 {
			continue
		}

		u := strings.TrimSpace(record[0])
		if first {
			first = false
			if strings.EqualFold(u, "url") {
				continue
			}
		}
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
}

// ReadJSONURLs decodes a JSON array of strings element by element.
func ReadJSONURLs(ctx context.Context, r io.Reader) ([]string, error) {
	decoder := json.NewDecoder(r)

	tok, err := decoder.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "urls: json: read opening token")
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		return nil, eris.Errorf("urls: json: expected '[', got %v", tok)
	}

	var urls []string
	for decoder.More() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "urls: json: context cancelled")
		}
		var u string
		if err := decoder.Decode(&u); err != nil {
			return nil, eris.Wrap(err, "urls: json: decode element")
		}
		urls = append(urls, u)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, eris.Wrap(err, "urls: json: read closing token")
	}
	return urls, nil
}

// ReadLineURLs reads one URL per line.
func ReadLineURLs(ctx context.Context, r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "urls: lines: context cancelled")
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "urls: lines: scan")
	}
	return urls, nil
}
