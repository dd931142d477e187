package firefox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistryLocator(t *testing.T) {
	loc, err := ParseRegistryLocator(`HKEY_CURRENT_USER\Software\mozilla\firefox\extensions\some-id`)
	require.NoError(t, err)
	assert.Equal(t, HiveCurrentUser, loc.Hive)
	assert.Equal(t, `Software\mozilla\firefox\extensions`, loc.Path)
	assert.Equal(t, "some-id", loc.Value)
}

func TestParseRegistryLocatorRoundTrip(t *testing.T) {
	loc := RegistryLocator{Hive: HiveLocalMachine, Path: WOWExtensionsKey, Value: "{guid}"}
	parsed, err := ParseRegistryLocator(loc.String())
	require.NoError(t, err)
	assert.Equal(t, loc, parsed)
}

func TestParseRegistryLocatorErrors(t *testing.T) {
	tests := []struct {
		locator string
		want    error
	}{
		{`HKEY_BOGUS\Software\mozilla\firefox\extensions\some-id`, ErrUnknownHive},
		{`hkey_current_user\Software\x\id`, ErrUnknownHive},
		{`HKEY_CURRENT_USER`, ErrMalformedLocator},
		{`HKEY_CURRENT_USER\some-id`, ErrMalformedLocator},
		{`HKEY_CURRENT_USER\Software\`, ErrMalformedLocator},
		{`HKEY_CURRENT_USER\\some-id`, ErrMalformedLocator},
	}
	for _, tt := range tests {
		t.Run(tt.locator, func(t *testing.T) {
			_, err := ParseRegistryLocator(tt.locator)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseHive(t *testing.T) {
	hive, err := ParseHive("HKEY_LOCAL_MACHINE")
	require.NoError(t, err)
	assert.Equal(t, HiveLocalMachine, hive)

	_, err = ParseHive("HKEY_USERS")
	assert.ErrorIs(t, err, ErrUnknownHive)
}
