package main

import "testing"

func TestHealthURL(t *testing.T) {
	cases := map[string]string{
		":8080":          "http://localhost:8080/healthz",
		"127.0.0.1:9000": "http://127.0.0.1:9000/healthz",
	}
	for addr, want := range cases {
		if got := healthURL(addr); got != want {
			t.Errorf("healthURL(%q) = %q, want %q", addr, got, want)
		}
	}
}
