package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountabro/backend/internal/app"
	"github.com/accountabro/backend/internal/config"
	"github.com/accountabro/backend/internal/middleware"
	"github.com/accountabro/backend/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppEnv:            "development",
		DBDriver:          "sqlite",
		DBConnection:      "file:" + filepath.Join(t.TempDir(), "ctl.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite",
		MatchInterval:     time.Minute,
		MatchMaxGroupSize: 2,
	}
}

func TestTokenCmd(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthJWTSecret = "ctl-secret"

	var out bytes.Buffer
	cmd := TokenCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"p1", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	subject, err := middleware.VerifyProfileToken("ctl-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "p1", subject)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	cmd := TokenCmd(testConfig(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"p1"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateCmd(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	cmd := MigrateCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"up"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "schema version 1")

	out.Reset()
	cmd = MigrateCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"down"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "schema version 0")
}

func TestPassAndQueueCmd(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	require.NoError(t, err)
	category, err := a.CategoryService.Create(ctx, "gym", "Gym", false)
	require.NoError(t, err)
	for _, name := range []string{"Ana", "Ben"} {
		p, err := a.ProfileService.Create(ctx, service.CreateProfileInput{DisplayName: name, Timezone: "UTC"})
		require.NoError(t, err)
		_, err = a.QueueService.Enqueue(ctx, p.ID, category.ID)
		require.NoError(t, err)
	}
	require.NoError(t, a.Close())

	var out bytes.Buffer
	cmd := QueueCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gym"})
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.JSONEq(t, `{"category":"gym","pending":2}`, out.String())

	out.Reset()
	cmd = PassCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gym"})
	require.NoError(t, cmd.ExecuteContext(ctx))

	var result service.PassResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Len(t, result.Matches, 1)
}
