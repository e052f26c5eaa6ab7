package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// buildInitData signs a fake init data payload with the WebAppData
// derivation Telegram uses for mini apps.
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(parts, "\n")))

	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hex.EncodeToString(mac.Sum(nil)))
	return vals.Encode()
}

func TestValidateInitDataValid(t *testing.T) {
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	})

	vals, ok := ValidateInitData(initData, "test-bot-token")
	if !ok {
		t.Fatalf("expected valid init data")
	}

	user, err := ParseUser(vals)
	if err != nil {
		t.Fatalf("ParseUser: %v", err)
	}
	if user.ID != 1 || user.Username != "u" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestValidateInitDataTampered(t *testing.T) {
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	})

	if _, ok := ValidateInitData(initData+"&x=1", "test-bot-token"); ok {
		t.Fatalf("expected tampered init data to be invalid")
	}
}

func TestValidateInitDataStale(t *testing.T) {
	initData := buildInitData(t, "test-bot-token", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":1}`,
	})

	if _, ok := ValidateInitData(initData, "test-bot-token"); ok {
		t.Fatalf("expected stale init data to be invalid")
	}
}

func TestValidateInitDataWrongToken(t *testing.T) {
	initData := buildInitData(t, "another-token", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1}`,
	})

	if _, ok := ValidateInitData(initData, "test-bot-token"); ok {
		t.Fatalf("expected init data signed with another token to be invalid")
	}
}

func TestValidateInitDataMissingHash(t *testing.T) {
	if _, ok := ValidateInitData("auth_date=123&user=%7B%22id%22%3A1%7D", "test-bot-token"); ok {
		t.Fatalf("expected init data without hash to be invalid")
	}
}
