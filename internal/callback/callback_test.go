package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParseRoundTrip(t *testing.T) {
	data := Format(Unban, 42)
	assert.Equal(t, "antispam_unban:42", data)

	cmd, arg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Unban, cmd)
	assert.Equal(t, int64(42), arg)
}

func TestParseForeignData(t *testing.T) {
	for _, data := range []string{"", "whatever", "poll_vote:7", "antispam_unban"} {
		cmd, arg, err := Parse(data)
		require.NoError(t, err, data)
		assert.Equal(t, Unknown, cmd, data)
		assert.Zero(t, arg, data)
	}
}

func TestParseBadArgument(t *testing.T) {
	cmd, _, err := Parse("antispam_unban:not-a-number")
	assert.Error(t, err)
	assert.Equal(t, Unknown, cmd)
}
