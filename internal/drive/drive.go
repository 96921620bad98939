// Package drive downloads files shared via Google Drive links. Drive
// answers large-file downloads with an interstitial HTML page carrying
// a confirmation token; this client follows that handshake and rejects
// anything that still comes back as HTML (typically a permissions
// error page) instead of writing it to disk as a deck.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/loadshare/brain/pkg/brain/internalerr"
)

const downloadEndpoint = "https://drive.google.com/uc"

var (
	pathIDPattern  = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	queryIDPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

// FileID extracts the file id from a Drive share link. Both common
// formats are supported:
//
//	https://drive.google.com/file/d/FILE_ID/view?usp=sharing
//	https://drive.google.com/open?id=FILE_ID
func FileID(shareURL string) (string, error) {
	if m := pathIDPattern.FindStringSubmatch(shareURL); m != nil {
		return m[1], nil
	}
	if m := queryIDPattern.FindStringSubmatch(shareURL); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %s", internalerr.ErrInvalidLink, shareURL)
}

// Downloader fetches shared Drive files over HTTP.
type Downloader struct {
	client  *http.Client
	baseURL string
}

// NewDownloader creates a Downloader. A nil client gets a cookie-jar
// equipped default; the jar is required for the confirmation handshake.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{Jar: jar}
	} else if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	return &Downloader{client: client, baseURL: downloadEndpoint}
}

// Download resolves a share link and writes the file to destPath.
// The destination is created before the body is known to be valid, so
// callers must remove it when Download returns an error.
func (d *Downloader) Download(ctx context.Context, shareURL, destPath string) error {
	fileID, err := FileID(shareURL)
	if err != nil {
		return err
	}

	first := fmt.Sprintf("%s?export=download&id=%s", d.baseURL, url.QueryEscape(fileID))
	body, err := d.fetch(ctx, first)
	if err != nil {
		return err
	}

	head, rest, isHTML, err := sniff(body)
	if err != nil {
		body.Close()
		return err
	}

	if isHTML {
		// Large files come back as a confirmation page; follow it once.
		confirmURL, ok := confirmLink(head, rest, fileID, d.baseURL)
		body.Close()
		if !ok {
			return internalerr.ErrHTMLResponse
		}

		body, err = d.fetch(ctx, confirmURL)
		if err != nil {
			return err
		}

		head, rest, isHTML, err = sniff(body)
		if err != nil {
			body.Close()
			return err
		}
		if isHTML {
			body.Close()
			return internalerr.ErrHTMLResponse
		}
	}
	defer body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	if _, err := out.Write(head); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, rest); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return out.Close()
}

// fetch issues one GET and validates the status code.
func (d *Downloader) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	return resp.Body, nil
}

// sniff reads the first bytes of the body and reports whether they
// look like an HTML page rather than a binary document.
func sniff(body io.Reader) (head []byte, rest io.Reader, isHTML bool, err error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(body, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, false, fmt.Errorf("read response: %w", err)
	}
	head = buf[:n]

	probe := strings.ToLower(string(head))
	isHTML = strings.Contains(probe, "<!doctype") || strings.Contains(probe, "<html")

	return head, body, isHTML, nil
}

// confirmLink parses the interstitial confirmation page and rebuilds
// the follow-up download URL from the embedded form. Returns false
// when the page carries no confirmation form (a plain error page).
func confirmLink(head []byte, rest io.Reader, fileID, baseURL string) (string, bool) {
	doc, err := html.Parse(io.MultiReader(strings.NewReader(string(head)), rest))
	if err != nil {
		return "", false
	}

	action := ""
	params := url.Values{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				if a := attr(n, "action"); a != "" {
					action = a
				}
			case "input":
				if name := attr(n, "name"); name != "" {
					params.Set(name, attr(n, "value"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if params.Get("confirm") == "" {
		return "", false
	}
	if params.Get("id") == "" {
		params.Set("id", fileID)
	}
	if params.Get("export") == "" {
		params.Set("export", "download")
	}
	if action == "" {
		action = baseURL
	}

	sep := "?"
	if strings.Contains(action, "?") {
		sep = "&"
	}
	return action + sep + params.Encode(), true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
