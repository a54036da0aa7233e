package player

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSalt = "test-salt"

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func TestSignMatchesReferenceDigest(t *testing.T) {
	c := NewLookupClient("http://unused", testSalt, time.Second, fixedClock)

	got := c.Sign("12345", "1700000000000")
	sum := md5.Sum([]byte("fid=12345&time=1700000000000" + testSalt))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("Sign = %s, want %s", got, want)
	}
}

func TestFetchSignsAndDecodes(t *testing.T) {
	var gotFID, gotTime, gotSign, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotFID = r.PostFormValue("fid")
		gotTime = r.PostFormValue("time")
		gotSign = r.PostFormValue("sign")

		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"fid":"12345","nickname":"ColdWolf","kid":245,"stove_lv":30,"avatar_image":"https://cdn.example/avatar.png"}}`)
	}))
	defer srv.Close()

	c := NewLookupClient(srv.URL, testSalt, time.Second, fixedClock)
	p, err := c.Fetch(context.Background(), "12345")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotFID != "12345" || gotTime != "1700000000000" {
		t.Errorf("form fid=%q time=%q", gotFID, gotTime)
	}
	if gotSign != c.Sign("12345", "1700000000000") {
		t.Errorf("sign = %q, want reference digest", gotSign)
	}

	if p.Nickname != "ColdWolf" || p.KID != 245 || p.StoveLv != 30 {
		t.Errorf("player = %+v", p)
	}
	if p.LastUpdated != 1700000000000 {
		t.Errorf("lastUpdated = %d", p.LastUpdated)
	}
}

func TestFetchRejectsNonZeroCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":40004,"msg":"role not exists","data":null}`)
	}))
	defer srv.Close()

	c := NewLookupClient(srv.URL, testSalt, time.Second, fixedClock)
	if _, err := c.Fetch(context.Background(), "99999"); err == nil {
		t.Fatal("expected error for non-zero code")
	}
}

func TestFetchRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewLookupClient(srv.URL, testSalt, time.Second, fixedClock)
	if _, err := c.Fetch(context.Background(), "12345"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}
