package fetcher

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// ReadSitemapURLs collects the <loc> values of a sitemap (urlset or
// sitemapindex). Documents declaring a non-UTF-8 encoding are transcoded.
func ReadSitemapURLs(ctx context.Context, r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "urls: xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var urls []string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "urls: xml: context cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			return urls, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "urls: xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "loc" {
			continue
		}

		var loc string
		if err := decoder.DecodeElement(&loc, &se); err != nil {
			return nil, eris.Wrap(err, "urls: xml: decode loc")
		}
		if loc = strings.TrimSpace(loc); loc != "" {
			urls = append(urls, loc)
		}
	}
}
