package config

import (
	"os"
	"testing"
)

func TestLoad_LocalDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvLocal {
		t.Errorf("Expected AppEnv=local, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Expected Store=memory, got %s", cfg.Store)
	}
	if cfg.Gateway.BaseURL != "http://localhost:9090" {
		t.Errorf("Expected Gateway.BaseURL=http://localhost:9090, got %s", cfg.Gateway.BaseURL)
	}
}

func TestLoad_DockerDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvDocker {
		t.Errorf("Expected AppEnv=docker, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Expected HTTPAddr=0.0.0.0:8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Store != StorePostgres {
		t.Errorf("Expected Store=postgres, got %s", cfg.Store)
	}
	if cfg.Gateway.BaseURL != "http://gateway:9090" {
		t.Errorf("Expected Gateway.BaseURL=http://gateway:9090, got %s", cfg.Gateway.BaseURL)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "staging")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid APP_ENV, got nil")
	}
}

func TestLoad_InvalidStore(t *testing.T) {
	os.Clearenv()
	os.Setenv("STORE", "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid STORE, got nil")
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	os.Clearenv()
	os.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid SHUTDOWN_TIMEOUT, got nil")
	}
}
