package main

import (
	"context"
	"testing"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/config"
)

func TestConnectRedis_UnreachableRunsWithoutClaims(t *testing.T) {
	client, err := connectRedis(context.Background(), &config.RedisConfig{Addr: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("expected unreachable redis to be tolerated, got %v", err)
	}
	if client != nil {
		t.Fatal("expected no client for unreachable redis")
	}

	if store := newClaimStore(client); store != nil {
		t.Errorf("expected nil claim store, got %T", store)
	}
}
