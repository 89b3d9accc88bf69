package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := TokenCodec{Secret: []byte("test-secret"), TTL: time.Hour}

	signed, err := codec.Sign("64f000000000000000000001")
	require.NoError(t, err)

	id, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "64f000000000000000000001", id)
}

func TestTokenCodecRejects(t *testing.T) {
	codec := TokenCodec{Secret: []byte("test-secret"), TTL: time.Hour}

	_, err := codec.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := TokenCodec{Secret: []byte("other-secret"), TTL: time.Hour}
	signed, err := other.Sign("64f000000000000000000001")
	require.NoError(t, err)
	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := TokenCodec{Secret: []byte("test-secret"), TTL: -time.Minute}
	signed, err = expired.Sign("64f000000000000000000001")
	require.NoError(t, err)
	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
