package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/onnwee/chat-thief/docstore"
	"github.com/onnwee/chat-thief/oauth"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestRunSealsPlaintextTokens(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "thief.sqlite")
	key := testKey(t)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("ENCRYPTION_KEY", key)

	store, closeStore, err := docstore.Open(ctx, docstore.OpenOptions{Backend: docstore.BackendSQLite, DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()
	plain := oauth.NewTokenStore(store, nil)
	if err := plain.Save(ctx, oauth.Token{Provider: oauth.ProviderTwitch, AccessToken: "at", RefreshToken: "rt"}); err != nil {
		t.Fatal(err)
	}

	if err := run(ctx, true); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if _, err := plain.Load(ctx, oauth.ProviderTwitch); err != nil {
		t.Fatalf("dry run changed the token: %v", err)
	}

	if err := run(ctx, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := plain.Load(ctx, oauth.ProviderTwitch); err == nil {
		t.Fatal("token still readable without a key")
	}
	sealer, err := oauth.NewSealer(key)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := oauth.NewTokenStore(store, sealer).Load(ctx, oauth.ProviderTwitch)
	if err != nil || tok.AccessToken != "at" || tok.RefreshToken != "rt" {
		t.Errorf("sealed token = %+v, %v", tok, err)
	}
}

func TestRunRequiresKey(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "thief.sqlite"))
	t.Setenv("ENCRYPTION_KEY", "")
	if err := run(context.Background(), false); err == nil {
		t.Fatal("expected error without ENCRYPTION_KEY")
	}
}
