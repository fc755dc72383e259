package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *Profile {
	return &Profile{
		World: WorldConfig{Seed: "test-seed"},
		RPC:   RPCConfig{URL: "http://localhost:5050"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validProfile().Validate())

	// An explicit address works without a seed.
	p := validProfile()
	p.World.Seed = ""
	p.World.Address = "0x1234"
	require.NoError(t, p.Validate())

	p = validProfile()
	p.World.Seed = ""
	assert.Error(t, p.Validate())

	p = validProfile()
	p.RPC.URL = ""
	assert.Error(t, p.Validate())

	p = validProfile()
	p.InitCallArgs = map[string][]string{" ": {"0x1"}}
	assert.Error(t, p.Validate())
}

func TestValidateAccount(t *testing.T) {
	p := validProfile()
	assert.Error(t, p.ValidateAccount())

	p.Account = AccountConfig{
		Address:    "0x1",
		PublicKey:  "0x2",
		PrivateKey: "0x3",
	}
	require.NoError(t, p.ValidateAccount())

	p.Account.PrivateKey = ""
	assert.Error(t, p.ValidateAccount())
}
