package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "POSTS_DEFAULT_LIMIT", "AUTH_ENABLED", "VIEW_CACHE_TTL", "ELASTICSEARCH_ADDRS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, DriverPostgres, c.StorageDriver)
	assert.Equal(t, 5, c.PostsDefaultLimit)
	assert.False(t, c.AuthEnabled)
	assert.Equal(t, 5*time.Minute, c.ViewCacheTTL)
	assert.Empty(t, c.ESAddrs())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("POSTS_DEFAULT_LIMIT", "12")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("VIEW_CACHE_TTL", "30s")
	t.Setenv("ELASTICSEARCH_ADDRS", "http://a:9200, ,http://b:9200")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "n")
	t.Setenv("DB_SSLMODE", "require")

	c := Load()
	assert.Equal(t, DriverMemory, c.StorageDriver)
	assert.Equal(t, 12, c.PostsDefaultLimit)
	assert.True(t, c.AuthEnabled)
	assert.Equal(t, 30*time.Second, c.ViewCacheTTL)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, c.ESAddrs())
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", c.PostgresDSN())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("POSTS_DEFAULT_LIMIT", "many")
	t.Setenv("AUTH_ENABLED", "yes please")

	c := Load()
	assert.Equal(t, DriverPostgres, c.StorageDriver)
	assert.Equal(t, 5, c.PostsDefaultLimit)
	assert.False(t, c.AuthEnabled)
}
