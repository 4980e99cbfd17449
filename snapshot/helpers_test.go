package snapshot

import (
	"net"
	"os"
	"strconv"
	"testing"
)

func splitHostPort(t *testing.T, addr string) (string, int64) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("net.SplitHostPort(%s) %+v", addr, err)
	}

	port, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		t.Fatalf("strconv.ParseInt(%s) %+v", p, err)
	}

	return host, port
}

func envOr(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
