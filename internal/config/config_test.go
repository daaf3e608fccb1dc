package config

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable FromEnv reads so the host environment
// can't leak into a test. t.Setenv restores the old values afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HOST", "PORT", "DB_DRIVER", "DB_DSN", "DATABASE_URL", "DB_HOST", "DB_PORT",
		"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PATH", "DB_POOL_SIZE", "SCHEMA_STRICT",
		"MYSQL_ADDON_HOST", "MYSQL_ADDON_USER", "MYSQL_ADDON_PASSWORD", "MYSQL_ADDON_DB",
		"MYSQL_ADDON_PORT", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "IMAGE_STORE",
		"UPLOAD_DIR", "MAX_UPLOAD_BYTES", "S3_BUCKET_NAME", "S3_PREFIX", "AWS_REGION",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_COMPONENT", "LOG_SOURCE", "STATIC_DIR",
		"LIST_MODE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 10, cfg.DB.PoolSize)
	assert.False(t, cfg.DB.Strict)
	assert.Equal(t, ListOpposite, cfg.ListMode)
	assert.Equal(t, ImageStoreLocal, cfg.Images.Store)
	assert.Equal(t, "public/uploads", cfg.Images.UploadDir)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.Redis.Addr)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_MySQLAddonFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_ADDON_HOST", "db.internal")
	t.Setenv("MYSQL_ADDON_USER", "lyon")
	t.Setenv("MYSQL_ADDON_PASSWORD", "secret")
	t.Setenv("MYSQL_ADDON_DB", "profiles")
	t.Setenv("MYSQL_ADDON_PORT", "3307")

	cfg := FromEnv()

	assert.Equal(t,
		"lyon:secret@tcp(db.internal:3307)/profiles?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.DataSourceName())
}

func TestFromEnv_DBVarsBeatAddonVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_ADDON_HOST", "addon-host")
	t.Setenv("DB_HOST", "primary-host")

	cfg := FromEnv()

	assert.Equal(t, "primary-host", cfg.DB.Host)
}

func TestDataSourceName(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit DSN wins",
			env:  map[string]string{"DB_DRIVER": "postgres", "DATABASE_URL": "postgres://u@h/db"},
			want: "postgres://u@h/db",
		},
		{
			name: "postgres from parts",
			env: map[string]string{
				"DB_DRIVER": "postgres", "DB_HOST": "pg", "DB_USER": "app",
				"DB_PASSWORD": "pw", "DB_NAME": "match",
			},
			want: "postgres://app:pw@pg:5432/match?sslmode=disable",
		},
		{
			name: "postgres without password",
			env: map[string]string{
				"DB_DRIVER": "postgres", "DB_HOST": "pg", "DB_USER": "app", "DB_NAME": "lyon_db",
			},
			want: "postgres://app@pg:5432/lyon_db?sslmode=disable",
		},
		{
			name: "sqlite uses the path",
			env:  map[string]string{"DB_DRIVER": "sqlite", "DB_PATH": "/tmp/m.db"},
			want: "/tmp/m.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, FromEnv().DataSourceName())
		})
	}
}

// TestDataSourceName_PostgresFieldsSurviveParsing checks the DSN the way
// lib/pq reads it, so an empty password cannot swallow dbname and a
// password with spaces or quotes stays one value.
func TestDataSourceName_PostgresFieldsSurviveParsing(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
		absent   []string
	}{
		{
			name:   "empty password",
			want:   []string{"dbname='lyon_db'", "user='app'", "host='127.0.0.1'", "port='5432'"},
			absent: []string{"password="},
		},
		{
			name:     "password with spaces",
			password: "p w",
			want:     []string{"password='p w'", "dbname='lyon_db'"},
		},
		{
			name:     "password with reserved characters",
			password: `a@b/c'd e`,
			want:     []string{`password='a@b/c\'d e'`, "dbname='lyon_db'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_DRIVER", "postgres")
			t.Setenv("DB_HOST", "127.0.0.1")
			t.Setenv("DB_USER", "app")
			t.Setenv("DB_PASSWORD", tt.password)

			conn, err := pq.ParseURL(FromEnv().DataSourceName())
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, conn, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, conn, a)
			}
		})
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("LIST_MODE", "random")
	t.Setenv("IMAGE_STORE", "s3")

	err := FromEnv().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "LIST_MODE")
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME")
}

func TestFromEnv_Flags(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEMA_STRICT", "yes")
	t.Setenv("LOG_SOURCE", "1")
	t.Setenv("LIST_MODE", "ALL")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := FromEnv()

	assert.True(t, cfg.DB.Strict)
	assert.True(t, cfg.Log.Source)
	assert.Equal(t, ListAll, cfg.ListMode)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}
