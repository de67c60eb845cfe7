package services

import (
	"context"
	"testing"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/user"
	roomatch_errors "roomatch/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrivateChatFixture() (*PrivateChatService, *fakeUserRepo, *fakeConversationRepo) {
	users := newFakeUserRepo()
	convs := newFakeConversationRepo()
	return NewPrivateChatService(nil, users, convs), users, convs
}

func TestPrivateCreateMessageCreatesConversation(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)

	msg, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: "Hello Bob"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.AuthorID)
	assert.Equal(t, "Hello Bob", msg.Content)

	conv, err := svc.FindOne(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ConversationID, conv.ID)
	assert.True(t, conv.HasParticipant(alice.ID))
	assert.True(t, conv.HasParticipant(bob.ID))
}

func TestPrivateFindOneOrderIndependent(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)

	_, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: "hi"})
	require.NoError(t, err)

	ab, err := svc.FindOne(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := svc.FindOne(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, ab.ID, ba.ID, "FindOne should be order independent")
}

func TestPrivateBothDirectionsShareConversation(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	first, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "Hello Bob"})
	require.NoError(t, err)
	second, err := svc.CreateMessage(ctx, bob.ID, alice.ID, MessageInput{Content: "Hi Alice"})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	count, err := svc.CountMessages(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPrivateSelfMessageFails(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice := enabledUser()
	users.add(alice)

	_, err := svc.CreateMessage(context.Background(), alice.ID, alice.ID, MessageInput{Content: "me"})
	var recipErr *roomatch_errors.InvalidRecipientError
	require.ErrorAs(t, err, &recipErr)
	assert.ErrorIs(t, err, roomatch_errors.ErrInvalidInput)
}

func TestPrivateIneligibleRecipientFails(t *testing.T) {
	statuses := []string{user.StatusBanned, user.StatusDisabled}
	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			svc, users, _ := newPrivateChatFixture()
			alice, bob := enabledUser(), enabledUser()
			bob.Status = status
			users.add(alice)
			users.add(bob)

			_, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: "hi"})
			var recipErr *roomatch_errors.InvalidRecipientError
			require.ErrorAs(t, err, &recipErr)
		})
	}
}

func TestPrivateIneligibleAuthorFails(t *testing.T) {
	statuses := []string{user.StatusBanned, user.StatusDisabled}
	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			svc, users, convs := newPrivateChatFixture()
			alice, bob := enabledUser(), enabledUser()
			alice.Status = status
			users.add(alice)
			users.add(bob)

			_, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: "hi"})
			require.ErrorIs(t, err, roomatch_errors.ErrForbidden)
			assert.Empty(t, convs.messages, "no message should be stored")
		})
	}
}

func TestPrivateUnknownAuthorFails(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	bob := enabledUser()
	users.add(bob)

	_, err := svc.CreateMessage(context.Background(), uuid.New(), bob.ID, MessageInput{Content: "hi"})
	require.ErrorIs(t, err, roomatch_errors.ErrForbidden)
}

func TestPrivateVacationRecipientAccepted(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	bob.Status = user.StatusVacation
	users.add(alice)
	users.add(bob)

	_, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: "hi"})
	require.NoError(t, err)
}

func TestPrivateUnknownRecipientFails(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice := enabledUser()
	users.add(alice)

	_, err := svc.CreateMessage(context.Background(), alice.ID, uuid.New(), MessageInput{Content: "hi"})
	var recipErr *roomatch_errors.InvalidRecipientError
	require.ErrorAs(t, err, &recipErr)
}

func TestPrivateBlankContentFails(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.CreateMessage(context.Background(), alice.ID, bob.ID, MessageInput{Content: content})
		var valErr *roomatch_errors.ValidationError
		require.ErrorAs(t, err, &valErr, "content %q", content)
		assert.Equal(t, "content", valErr.Field)
	}
}

func TestPrivateListMessagesEmptyPair(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)

	msgs, total, err := svc.ListMessages(context.Background(), alice.ID, bob.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Zero(t, total)

	count, err := svc.CountMessages(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPrivateRoundTrip(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	created, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "exact content"})
	require.NoError(t, err)

	msgs, total, err := svc.ListMessages(ctx, bob.ID, alice.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, msgs, 1)

	got := msgs[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.AuthorID, got.AuthorID)
	assert.Equal(t, created.Content, got.Content)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestPrivateReplyParent(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	parent, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "question"})
	require.NoError(t, err)

	reply, err := svc.CreateMessage(ctx, bob.ID, alice.ID, MessageInput{
		Content:  "answer",
		ParentID: uuid.NullUUID{UUID: parent.ID, Valid: true},
	})
	require.NoError(t, err)
	require.True(t, reply.ParentID.Valid)
	assert.Equal(t, parent.ID, reply.ParentID.UUID)

	_, err = svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{
		Content:  "dangling",
		ParentID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
	})
	var valErr *roomatch_errors.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestPrivateReplyParentOtherConversationFails(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob, carol := enabledUser(), enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	users.add(carol)
	ctx := context.Background()

	other, err := svc.CreateMessage(ctx, alice.ID, carol.ID, MessageInput{Content: "elsewhere"})
	require.NoError(t, err)

	_, err = svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{
		Content:  "cross reply",
		ParentID: uuid.NullUUID{UUID: other.ID, Valid: true},
	})
	var valErr *roomatch_errors.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestPrivateDeleteCascades(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	msg, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "bye"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, msg.ConversationID))

	_, err = svc.FindOne(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, roomatch_errors.ErrNotFound)

	msgs, total, err := svc.ListMessages(ctx, alice.ID, bob.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, msgs, "messages should not survive the cascade")
	assert.Zero(t, total)
}

func TestPrivateDeleteIdempotent(t *testing.T) {
	svc, _, _ := newPrivateChatFixture()
	assert.NoError(t, svc.Delete(context.Background(), uuid.New()))
}

func TestPrivateDeleteAll(t *testing.T) {
	svc, users, convs := newPrivateChatFixture()
	alice, bob, carol := enabledUser(), enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	users.add(carol)
	ctx := context.Background()

	_, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "one"})
	require.NoError(t, err)
	_, err = svc.CreateMessage(ctx, alice.ID, carol.ID, MessageInput{Content: "two"})
	require.NoError(t, err)

	groupConv := chat.NewGroupConversation(uuid.New())
	require.NoError(t, convs.Create(ctx, &groupConv))

	require.NoError(t, svc.DeleteAll(ctx))

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	groupCount, err := convs.CountByKind(ctx, chat.KindGroup)
	require.NoError(t, err)
	assert.EqualValues(t, 1, groupCount, "DeleteAll must not touch group conversations")
}

func TestPrivateDuplicateKeyRetryAppendsToWinner(t *testing.T) {
	svc, users, convs := newPrivateChatFixture()
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	// The concurrent writer's row already exists; the first lookup misses
	// it, the insert hits the unique index, the re-fetch must find it.
	winner := chat.NewPrivateConversation(alice.ID, bob.ID)
	require.NoError(t, convs.Create(ctx, &winner))
	convs.missNextFind = true

	msg, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, msg.ConversationID, "message should append to the existing conversation")
}

func TestPrivateFindAllOrdersByActivity(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	alice, bob, carol := enabledUser(), enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	users.add(carol)
	ctx := context.Background()

	first, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "older"})
	require.NoError(t, err)
	second, err := svc.CreateMessage(ctx, alice.ID, carol.ID, MessageInput{Content: "newer"})
	require.NoError(t, err)

	convos, total, err := svc.FindAll(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, convos, 2)
	assert.Equal(t, second.ConversationID, convos[0].ID)
	assert.Equal(t, first.ConversationID, convos[1].ID)
}

func TestPrivateCreateMessageDropsCachedConversation(t *testing.T) {
	svc, users, _ := newPrivateChatFixture()
	cache := newFakeCache()
	svc.SetCache(cache)
	alice, bob := enabledUser(), enabledUser()
	users.add(alice)
	users.add(bob)
	ctx := context.Background()

	first, err := svc.CreateMessage(ctx, alice.ID, bob.ID, MessageInput{Content: "hi"})
	require.NoError(t, err)

	// Warm the metadata and count entries.
	_, err = svc.Get(ctx, first.ConversationID)
	require.NoError(t, err)
	count, err := svc.CountMessages(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Contains(t, cache.conversations, first.ConversationID)
	require.Contains(t, cache.counts, first.ConversationID)

	second, err := svc.CreateMessage(ctx, bob.ID, alice.ID, MessageInput{Content: "hello"})
	require.NoError(t, err)
	assert.NotContains(t, cache.conversations, second.ConversationID, "metadata must not outlive the activity bump")
	assert.NotContains(t, cache.counts, second.ConversationID)

	conv, err := svc.Get(ctx, second.ConversationID)
	require.NoError(t, err)
	assert.True(t, conv.UpdatedAt.Equal(second.CreatedAt), "Get should see the bumped updated_at")
}
