package cookies

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Sync mirrors every Set-Cookie directive of a backend response into store,
// attributes unchanged. It returns the access token value when the response
// carried one.
//
// A response without Set-Cookie lines writes nothing; auth endpoints are
// expected to always send cookies so this is logged as a warning.
func Sync(header http.Header, store Store) (string, bool) {
	lines := header.Values("Set-Cookie")
	if len(lines) == 0 {
		log.Warn().Msg("Backend response carried no Set-Cookie headers")
		return "", false
	}

	var accessToken string
	var found bool
	for _, line := range lines {
		parsed, err := http.ParseSetCookie(line)
		if err != nil {
			log.Err(err).Msg("Skipping malformed Set-Cookie header")
			continue
		}

		if parsed.Name == AccessTokenName {
			accessToken = parsed.Value
			found = true
		}
		store.Set(FromHTTP(parsed))
	}
	return accessToken, found
}
