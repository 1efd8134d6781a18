package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/loader"
	"github.com/tripnest/backend/internal/repo"
)

// MaxMessageLength caps a chat message, in characters.
const MaxMessageLength = 4000

// loaderWait is how long conversation aggregate loads wait to be batched.
const loaderWait = time.Millisecond

// ChatService implements the creator chat: the creator directory, a user's
// inbox and the message threads inside it.
type ChatService struct {
	repos repo.Repos
	tx    repo.TxRunner
}

// NewChatService constructs a ChatService.
func NewChatService(repos repo.Repos, tx repo.TxRunner) *ChatService {
	return &ChatService{repos: repos, tx: tx}
}

// ListCreators returns every creator, online first.
func (s *ChatService) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	creators, err := s.repos.Creators.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.ListCreators: %w", err)
	}
	if creators == nil {
		creators = []domain.Creator{}
	}
	return creators, nil
}

// ListConversations returns the user's inbox, most recent first, with each
// conversation's last message and unread count. The aggregates for all
// conversations are fetched in one batch each.
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	sums, err := s.repos.Conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.ListConversations: %w", err)
	}
	if err := s.summarize(ctx, sums); err != nil {
		return nil, fmt.Errorf("service.ChatService.ListConversations: %w", err)
	}
	if sums == nil {
		sums = []domain.ConversationSummary{}
	}
	return sums, nil
}

// StartConversation returns the user's conversation with a creator,
// opening one on first contact.
func (s *ChatService) StartConversation(ctx context.Context, userID, creatorID uuid.UUID) (domain.ConversationSummary, error) {
	creator, err := s.repos.Creators.GetByID(ctx, creatorID)
	if err != nil {
		return domain.ConversationSummary{}, fmt.Errorf("service.ChatService.StartConversation: %w", err)
	}
	conv, err := s.repos.Conversations.GetOrCreate(ctx, userID, creator.ID)
	if err != nil {
		return domain.ConversationSummary{}, fmt.Errorf("service.ChatService.StartConversation: %w", err)
	}

	sums := []domain.ConversationSummary{{Conversation: conv, Creator: creator}}
	if err := s.summarize(ctx, sums); err != nil {
		return domain.ConversationSummary{}, fmt.Errorf("service.ChatService.StartConversation: %w", err)
	}
	return sums[0], nil
}

// Messages returns a thread oldest first.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.repos.Conversations.GetByID(ctx, userID, conversationID); err != nil {
		return nil, fmt.Errorf("service.ChatService.Messages: %w", err)
	}
	msgs, err := s.repos.Messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.Messages: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// SendMessage appends a user message and bumps the conversation's last
// activity in one transaction, then returns the refreshed thread and inbox.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (domain.Thread, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Thread{}, fmt.Errorf("%w: message content is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return domain.Thread{}, fmt.Errorf("%w: message exceeds %d characters", domain.ErrValidation, MaxMessageLength)
	}

	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		conv, err := r.Conversations.GetByID(ctx, userID, conversationID)
		if err != nil {
			return err
		}
		m, err := r.Messages.Create(ctx, domain.Message{
			ConversationID: conv.ID,
			Sender:         domain.SenderUser,
			Content:        content,
			IsRead:         true,
		})
		if err != nil {
			return err
		}
		return r.Conversations.Touch(ctx, conv.ID, m.CreatedAt)
	})
	if err != nil {
		return domain.Thread{}, fmt.Errorf("service.ChatService.SendMessage: %w", err)
	}

	msgs, err := s.Messages(ctx, userID, conversationID)
	if err != nil {
		return domain.Thread{}, err
	}
	convs, err := s.ListConversations(ctx, userID)
	if err != nil {
		return domain.Thread{}, err
	}
	return domain.Thread{Messages: msgs, Conversations: convs}, nil
}

// MarkRead marks the creator's messages in a conversation as read and
// returns how many changed.
func (s *ChatService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	if _, err := s.repos.Conversations.GetByID(ctx, userID, conversationID); err != nil {
		return 0, fmt.Errorf("service.ChatService.MarkRead: %w", err)
	}
	n, err := s.repos.Messages.MarkRead(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("service.ChatService.MarkRead: %w", err)
	}
	return n, nil
}

// summarize fills LastMessage and UnreadCount in place.
func (s *ChatService) summarize(ctx context.Context, sums []domain.ConversationSummary) error {
	if len(sums) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(sums))
	for i, c := range sums {
		ids[i] = c.Conversation.ID
	}

	l := loader.NewConversationLoaders(s.repos.Conversations, loaderWait)
	last, unread, err := l.Aggregates(ctx, ids)
	if err != nil {
		return err
	}
	for i := range sums {
		sums[i].LastMessage = last[i]
		sums[i].UnreadCount = unread[i]
	}
	return nil
}
