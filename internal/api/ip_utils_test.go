package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestResolveClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    *string
		remote *string
		want   *string
	}{
		{"first of list", strp("a, b, c"), strp("10.0.0.1"), strp("a")},
		{"trimmed", strp("  203.0.113.7  ,10.0.0.1"), nil, strp("203.0.113.7")},
		{"single", strp("198.51.100.4"), strp("10.0.0.1"), strp("198.51.100.4")},
		{"absent header", nil, strp("192.168.1.5"), strp("192.168.1.5")},
		{"empty header", strp(""), strp("192.168.1.5"), strp("192.168.1.5")},
		{"leading comma", strp(",10.0.0.1"), strp("192.168.1.5"), strp("192.168.1.5")},
		{"no syntax check", strp("not-an-ip, 1.2.3.4"), nil, strp("not-an-ip")},
		{"nothing", nil, nil, nil},
		{"empty header no remote", strp(" "), nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, resolveClientIP(c.xff, c.remote))
		})
	}
}

func TestRemoteHost(t *testing.T) {
	assert.Equal(t, strp("192.168.1.5"), remoteHost("192.168.1.5:51234"))
	assert.Equal(t, strp("::1"), remoteHost("[::1]:8080"))
	assert.Equal(t, strp("192.168.1.5"), remoteHost("192.168.1.5"))
	assert.Equal(t, strp("@"), remoteHost("@"))
	assert.Nil(t, remoteHost(""))
	assert.Nil(t, remoteHost(":8080"))
}

func TestFirstHeader(t *testing.T) {
	h := http.Header{}
	assert.Nil(t, firstHeader(h, "X-Forwarded-Host"))

	h.Add("x-forwarded-host", "one.example")
	h.Add("X-Forwarded-Host", "two.example")
	assert.Equal(t, strp("one.example"), firstHeader(h, "X-FORWARDED-HOST"))

	h.Set("X-Forwarded-Port", "")
	assert.Equal(t, strp(""), firstHeader(h, "X-Forwarded-Port"))
}

func TestFormatLogLine(t *testing.T) {
	s := headerSnapshot{host: strp("example.com"), userAgent: strp("curl/8.0")}
	assert.Equal(t,
		"2024-05-01 12:30:45 | IP: 203.0.113.7 | Host: example.com | XFH:  | UA: curl/8.0",
		formatLogLine(fixedTime, strp("203.0.113.7"), s))
}
