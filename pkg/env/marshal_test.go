package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Addr     string        `env:"ADDR"`
	Key      string        `env:"KEY" secret:"true"`
	Short    string        `env:"SHORT" secret:"true"`
	Turns    int           `env:"TURNS"`
	Rate     float64       `env:"RATE"`
	Debug    bool          `env:"DEBUG"`
	Timeout  time.Duration `env:"TIMEOUT"`
	Origins  []string      `env:"ORIGINS"`
	Empty    string        `env:"EMPTY"`
	Untagged string
}

func TestMarshalEnv(t *testing.T) {
	out, err := MarshalEnv(&sample{
		Addr:     ":8000",
		Key:      "sk-ant-1234567890",
		Short:    "abc",
		Turns:    5,
		Rate:     2.5,
		Debug:    true,
		Timeout:  30 * time.Second,
		Origins:  []string{"http://a", "http://b"},
		Untagged: "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "ADDR=:8000\n"+
		"KEY=****7890\n"+
		"SHORT=****\n"+
		"TURNS=5\n"+
		"RATE=2.5\n"+
		"DEBUG=true\n"+
		"TIMEOUT=30s\n"+
		"ORIGINS=http://a,http://b\n", out)
}

func TestMarshalEnv_RequiresStructPointer(t *testing.T) {
	_, err := MarshalEnv(sample{})
	assert.Error(t, err)
}
