// Package telegram verifies Telegram Mini App init data.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WebAppUser is the "user" JSON field inside init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// maxInitDataAge bounds how old an init data payload may be before it
// is treated as a replay. maxClockSkew tolerates clients slightly
// ahead of the server.
const (
	maxInitDataAge = time.Hour
	maxClockSkew   = 5 * time.Minute
)

// ValidateInitData checks the init data HMAC against the bot token and
// requires a recent auth_date. The secret key is HMAC-SHA256 of the bot
// token keyed with the literal string "WebAppData", per the Mini App
// protocol. Returns the parsed values (hash removed) on success.
func ValidateInitData(initData, botToken string) (url.Values, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	var pairs []string
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	provided, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(mac.Sum(nil), provided) {
		return nil, false
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, false
	}
	now := time.Now().Unix()
	if now-authDate > int64(maxInitDataAge.Seconds()) || authDate-now > int64(maxClockSkew.Seconds()) {
		return nil, false
	}

	return values, true
}

// ParseUser decodes the user field out of validated init data values.
func ParseUser(values url.Values) (*WebAppUser, error) {
	var user WebAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, err
	}
	return &user, nil
}
