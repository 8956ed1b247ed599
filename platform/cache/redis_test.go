package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisCfg struct {
	url      string
	insecure bool
}

func (c redisCfg) GetRedisURL() string       { return c.url }
func (c redisCfg) GetRedisTLSInsecure() bool { return c.insecure }

func TestNewClient_PingsMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewClient(redisCfg{url: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer rdb.Close()

	assert.NoError(t, NewHealth(rdb).Ping(context.Background()))

	mr.Close()
	assert.Error(t, NewHealth(rdb).Ping(context.Background()))
}

func TestNewClient_Config(t *testing.T) {
	_, err := NewClient(redisCfg{})
	assert.Error(t, err)

	rdb, err := NewClient(redisCfg{url: "rediss://cache.internal:6380", insecure: true})
	require.NoError(t, err)
	defer rdb.Close()
	assert.True(t, rdb.Options().TLSConfig.InsecureSkipVerify)
}
