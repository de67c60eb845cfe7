package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	f1, s1 := PairKey(a, b)
	f2, s2 := PairKey(b, a)

	assert.Equal(t, f1, f2)
	assert.Equal(t, s1, s2)
}

func TestNewPrivateConversationNormalizesPair(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	c1 := NewPrivateConversation(a, b)
	c2 := NewPrivateConversation(b, a)

	assert.Equal(t, c1.FirstParticipantID.UUID, c2.FirstParticipantID.UUID, "pair should be stored in canonical order")
	assert.Equal(t, c1.SecondParticipantID.UUID, c2.SecondParticipantID.UUID)
	assert.Equal(t, KindPrivate, c1.Kind)
	assert.True(t, c1.HasParticipant(a))
	assert.True(t, c1.HasParticipant(b))
	assert.False(t, c1.HasParticipant(uuid.New()))
}

func TestOtherParticipant(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := NewPrivateConversation(a, b)

	assert.Equal(t, b, c.OtherParticipant(a))
	assert.Equal(t, a, c.OtherParticipant(b))
	assert.Equal(t, uuid.Nil, c.OtherParticipant(uuid.New()))
}

func TestNewGroupConversation(t *testing.T) {
	groupID := uuid.New()
	c := NewGroupConversation(groupID)

	assert.Equal(t, KindGroup, c.Kind)
	require.True(t, c.GroupID.Valid)
	assert.Equal(t, groupID, c.GroupID.UUID)
	assert.False(t, c.FirstParticipantID.Valid, "group conversation should carry no participant pair")
	assert.False(t, c.SecondParticipantID.Valid)
}
