// Package scholar talks to the Spark chat service about poems.
package scholar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SignURL builds the authenticated websocket URL for the chat endpoint: an
// HMAC-SHA256 signature over the canonical host/date/request-line, wrapped
// base64 into the authorization query parameter.
func SignURL(endpoint, apiKey, apiSecret string, now time.Time) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid chat endpoint: %w", err)
	}

	date := now.UTC().Format(http.TimeFormat)
	canonical := canonicalString(u.Host, date, u.Path)

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(canonical))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	origin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		apiKey, signature)

	q := url.Values{}
	q.Set("authorization", base64.StdEncoding.EncodeToString([]byte(origin)))
	q.Set("date", date)
	q.Set("host", u.Host)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func canonicalString(host, date, path string) string {
	return fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", host, date, path)
}
