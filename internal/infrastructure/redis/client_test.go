package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewClientConnects(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+srv.Addr())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("expected working client, got %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "not-a-url"); err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := NewClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatalf("expected ping failure against closed server")
	}
}
