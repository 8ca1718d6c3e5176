package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
)

const (
	bearerPrefix       = "Bearer "
	base64ValuePrefix  = "base64-"
	chunkSeparator     = "."
	accessTokenJSONKey = "access_token"
)

// Extractor locates a bearer credential on an inbound request.
type Extractor struct {
	cookiePatterns []string
}

// NewExtractor returns an Extractor probing the given cookie-name patterns in
// order. Patterns use path.Match syntax, e.g. "sb-*-auth-token".
func NewExtractor(cookiePatterns []string) *Extractor {
	patterns := make([]string, 0, len(cookiePatterns))
	for _, p := range cookiePatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Extractor{cookiePatterns: patterns}
}

// Extract returns the raw token carried by r. The Authorization header takes
// precedence over cookies. It never fails: malformed cookie values degrade to
// the raw string.
func (e *Extractor) Extract(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		if token := strings.TrimSpace(header[len(bearerPrefix):]); token != "" {
			return token, true
		}
	}

	cookies := parseCookieHeader(strings.Join(r.Header.Values("Cookie"), "; "))
	if len(cookies) == 0 {
		return "", false
	}

	for _, pattern := range e.cookiePatterns {
		for _, name := range matchingCookieNames(cookies, pattern) {
			value := cookieValue(cookies, name)
			if value == "" {
				continue
			}
			if token := tokenFromCookieValue(value); token != "" {
				return token, true
			}
		}
	}
	return "", false
}

type cookiePair struct {
	name  string
	value string
}

// parseCookieHeader splits a raw Cookie header on ';' and each pair on the
// first '='. Values are URL-decoded; undecodable values are kept verbatim.
func parseCookieHeader(header string) []cookiePair {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ";")
	pairs := make([]cookiePair, 0, len(parts))
	for _, part := range parts {
		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		pairs = append(pairs, cookiePair{name: name, value: value})
	}
	return pairs
}

// matchingCookieNames returns the base names matching pattern in header
// order. Chunked cookies ("name.0", "name.1") contribute their base name once.
func matchingCookieNames(cookies []cookiePair, pattern string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range cookies {
		name := c.name
		if base, _, ok := splitChunkName(name); ok {
			name = base
		}
		if seen[name] {
			continue
		}
		if ok, err := path.Match(pattern, name); err != nil || !ok {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// cookieValue returns the value of the cookie called name, reassembling
// numbered chunks when the unchunked cookie is absent.
func cookieValue(cookies []cookiePair, name string) string {
	type chunk struct {
		index int
		value string
	}
	var chunks []chunk
	for _, c := range cookies {
		if c.name == name {
			return c.value
		}
		if base, index, ok := splitChunkName(c.name); ok && base == name {
			chunks = append(chunks, chunk{index: index, value: c.value})
		}
	}
	if len(chunks) == 0 {
		return ""
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })
	var b strings.Builder
	for i, c := range chunks {
		if c.index != i {
			break
		}
		b.WriteString(c.value)
	}
	return b.String()
}

func splitChunkName(name string) (string, int, bool) {
	idx := strings.LastIndex(name, chunkSeparator)
	if idx <= 0 || idx == len(name)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return name[:idx], n, true
}

// tokenFromCookieValue decodes a session cookie value. JSON objects yield
// their access_token; anything that fails to decode is used verbatim. An
// empty result means the cookie carries no token.
func tokenFromCookieValue(value string) string {
	if strings.HasPrefix(value, base64ValuePrefix) {
		raw := strings.TrimPrefix(value, base64ValuePrefix)
		if decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "=")); err == nil {
			value = string(decoded)
		}
	}

	if !strings.HasPrefix(value, "{") {
		return value
	}

	var session map[string]any
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return value
	}
	token, _ := session[accessTokenJSONKey].(string)
	return strings.TrimSpace(token)
}
