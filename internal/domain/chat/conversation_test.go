package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainuser "homeseek/internal/domain/user"
)

func TestCanonicalPair(t *testing.T) {
	a := domainuser.ID("64f000000000000000000001")
	b := domainuser.ID("64f000000000000000000002")

	assert.Equal(t, CanonicalPair(a, b), CanonicalPair(b, a))
	assert.Equal(t, [2]domainuser.ID{a, b}, CanonicalPair(b, a))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("64f0a1b2c3d4e5f678901234"))
	assert.True(t, ValidID("64F0A1B2C3D4E5F678901234"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("too-short"))
	assert.False(t, ValidID("64f0a1b2c3d4e5f67890123"))    // 23 chars
	assert.False(t, ValidID("64f0a1b2c3d4e5f6789012345"))  // 25 chars
	assert.False(t, ValidID("zzf0a1b2c3d4e5f678901234"))   // non-hex
	assert.False(t, ValidID("64f0a1b2-3d4e5f6789012 4"))   // punctuation
}

func TestConversationMembership(t *testing.T) {
	a := domainuser.ID("64f000000000000000000001")
	b := domainuser.ID("64f000000000000000000002")
	c := &Conversation{Participants: CanonicalPair(b, a)}

	assert.True(t, c.Participant(a))
	assert.True(t, c.Participant(b))
	assert.False(t, c.Participant(domainuser.ID("64f000000000000000000003")))
	assert.Equal(t, b, c.Peer(a))
	assert.Equal(t, a, c.Peer(b))
}
