package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripnest/backend/internal/domain"
)

// ---- creators --------------------------------------------------------------

// CreatorRepo reads the creator directory.
type CreatorRepo interface {
	// List returns all creators, online first, then by name.
	List(ctx context.Context) ([]domain.Creator, error)
	// GetByID returns one creator or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Creator, error)
}

type pgCreatorRepo struct {
	db db
}

// NewCreatorRepo constructs a CreatorRepo backed by the provided db connection.
func NewCreatorRepo(db db) CreatorRepo {
	return &pgCreatorRepo{db: db}
}

const creatorColumns = `c.id, c.name, c.handle, c.avatar_url, c.bio, c.specialties,
	c.is_online, c.response_time, c.created_at`

func (r *pgCreatorRepo) List(ctx context.Context) ([]domain.Creator, error) {
	const q = `SELECT ` + creatorColumns + ` FROM chat_creators c ORDER BY c.is_online DESC, c.name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CreatorRepo.List: %w", err)
	}
	return collect(rows, "repo.CreatorRepo.List", scanCreator)
}

func (r *pgCreatorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Creator, error) {
	const q = `SELECT ` + creatorColumns + ` FROM chat_creators c WHERE c.id = @id`

	c, err := scanCreator(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Creator{}, fmt.Errorf("repo.CreatorRepo.GetByID: %w", err)
	}
	return c, nil
}

func scanCreator(s scanner) (domain.Creator, error) {
	var (
		c  domain.Creator
		id pgtype.UUID
	)
	err := s.Scan(&id, &c.Name, &c.Handle, &c.AvatarURL, &c.Bio, &c.Specialties,
		&c.IsOnline, &c.ResponseTime, &c.CreatedAt)
	if err != nil {
		return domain.Creator{}, noRows(err)
	}
	c.ID = toUUID(id)
	return c, nil
}

// ---- conversations ---------------------------------------------------------

// ConversationRepo persists conversations and computes their per-item
// aggregates in batches.
type ConversationRepo interface {
	// ListByUser returns the user's conversations joined with their creator,
	// most recent activity first. LastMessage and UnreadCount are not filled.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error)

	// GetByID returns one of the user's conversations or domain.ErrNotFound.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Conversation, error)

	// GetOrCreate returns the user's conversation with a creator, creating
	// it on first contact.
	GetOrCreate(ctx context.Context, userID, creatorID uuid.UUID) (domain.Conversation, error)

	// Touch sets the conversation's last activity time.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	// LastMessages returns the newest message of each conversation in ids.
	// Conversations without messages are absent from the map.
	LastMessages(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error)

	// UnreadCounts returns the number of unread creator messages per
	// conversation. Conversations with none are absent from the map.
	UnreadCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

type pgConversationRepo struct {
	db db
}

// NewConversationRepo constructs a ConversationRepo backed by the provided db connection.
func NewConversationRepo(db db) ConversationRepo {
	return &pgConversationRepo{db: db}
}

const conversationColumns = `v.id, v.user_id, v.creator_id, v.last_message_at, v.created_at`

func (r *pgConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	const q = `
		SELECT ` + conversationColumns + `, ` + creatorColumns + `
		FROM chat_conversations v
		JOIN chat_creators c ON c.id = v.creator_id
		WHERE v.user_id = @user_id
		ORDER BY v.last_message_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ConversationRepo.ListByUser: %w", err)
	}
	return collect(rows, "repo.ConversationRepo.ListByUser", func(s scanner) (domain.ConversationSummary, error) {
		var (
			sum                       domain.ConversationSummary
			vID, vUser, vCreator, cID pgtype.UUID
		)
		c := &sum.Creator
		err := s.Scan(&vID, &vUser, &vCreator, &sum.Conversation.LastMessageAt, &sum.Conversation.CreatedAt,
			&cID, &c.Name, &c.Handle, &c.AvatarURL, &c.Bio, &c.Specialties, &c.IsOnline, &c.ResponseTime, &c.CreatedAt)
		if err != nil {
			return domain.ConversationSummary{}, err
		}
		sum.Conversation.ID = toUUID(vID)
		sum.Conversation.UserID = toUUID(vUser)
		sum.Conversation.CreatorID = toUUID(vCreator)
		c.ID = toUUID(cID)
		return sum, nil
	})
}

func (r *pgConversationRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Conversation, error) {
	const q = `SELECT ` + conversationColumns + ` FROM chat_conversations v WHERE v.id = @id AND v.user_id = @user_id`

	c, err := scanConversation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repo.ConversationRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r *pgConversationRepo) GetOrCreate(ctx context.Context, userID, creatorID uuid.UUID) (domain.Conversation, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	const q = `
		INSERT INTO chat_conversations AS v (user_id, creator_id)
		VALUES (@user_id, @creator_id)
		ON CONFLICT (user_id, creator_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + conversationColumns

	c, err := scanConversation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "creator_id": creatorID}))
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repo.ConversationRepo.GetOrCreate: %w", err)
	}
	return c, nil
}

func (r *pgConversationRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE chat_conversations SET last_message_at = @at WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.ConversationRepo.Touch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ConversationRepo.Touch: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgConversationRepo) LastMessages(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Message, error) {
	const q = `
		SELECT DISTINCT ON (m.conversation_id) ` + messageColumns + `
		FROM chat_conversation_messages m
		WHERE m.conversation_id = ANY(@ids)
		ORDER BY m.conversation_id, m.created_at DESC, m.id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.ConversationRepo.LastMessages: %w", err)
	}
	msgs, err := collect(rows, "repo.ConversationRepo.LastMessages", scanMessage)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.Message, len(msgs))
	for _, m := range msgs {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *pgConversationRepo) UnreadCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	const q = `
		SELECT m.conversation_id, count(*)
		FROM chat_conversation_messages m
		WHERE m.conversation_id = ANY(@ids) AND m.sender = 'creator' AND NOT m.is_read
		GROUP BY m.conversation_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.ConversationRepo.UnreadCounts: %w", err)
	}
	type count struct {
		id uuid.UUID
		n  int
	}
	counts, err := collect(rows, "repo.ConversationRepo.UnreadCounts", func(s scanner) (count, error) {
		var (
			id pgtype.UUID
			n  int
		)
		if err := s.Scan(&id, &n); err != nil {
			return count{}, err
		}
		return count{id: toUUID(id), n: n}, nil
	})
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		out[c.id] = c.n
	}
	return out, nil
}

func scanConversation(s scanner) (domain.Conversation, error) {
	var (
		c                     domain.Conversation
		id, userID, creatorID pgtype.UUID
	)
	if err := s.Scan(&id, &userID, &creatorID, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return domain.Conversation{}, noRows(err)
	}
	c.ID = toUUID(id)
	c.UserID = toUUID(userID)
	c.CreatorID = toUUID(creatorID)
	return c, nil
}

// ---- messages --------------------------------------------------------------

// MessageRepo persists the messages of a conversation.
type MessageRepo interface {
	// ListByConversation returns a thread oldest first.
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
	// Create inserts a message and returns it with id and created_at set.
	Create(ctx context.Context, m domain.Message) (domain.Message, error)
	// MarkRead flags every unread creator message in the thread as read and
	// returns how many changed.
	MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

type pgMessageRepo struct {
	db db
}

// NewMessageRepo constructs a MessageRepo backed by the provided db connection.
func NewMessageRepo(db db) MessageRepo {
	return &pgMessageRepo{db: db}
}

const messageColumns = `m.id, m.conversation_id, m.sender, m.content, m.is_read, m.created_at`

func (r *pgMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	const q = `
		SELECT ` + messageColumns + `
		FROM chat_conversation_messages m
		WHERE m.conversation_id = @conversation_id
		ORDER BY m.created_at, m.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"conversation_id": conversationID})
	if err != nil {
		return nil, fmt.Errorf("repo.MessageRepo.ListByConversation: %w", err)
	}
	return collect(rows, "repo.MessageRepo.ListByConversation", scanMessage)
}

func (r *pgMessageRepo) Create(ctx context.Context, m domain.Message) (domain.Message, error) {
	const q = `
		INSERT INTO chat_conversation_messages AS m (conversation_id, sender, content, is_read)
		VALUES (@conversation_id, @sender, @content, @is_read)
		RETURNING ` + messageColumns

	result, err := scanMessage(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"conversation_id": m.ConversationID,
		"sender":          string(m.Sender),
		"content":         m.Content,
		"is_read":         m.IsRead,
	}))
	if err != nil {
		return domain.Message{}, fmt.Errorf("repo.MessageRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMessageRepo) MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	const q = `
		UPDATE chat_conversation_messages
		SET is_read = true
		WHERE conversation_id = @conversation_id AND sender = 'creator' AND NOT is_read`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"conversation_id": conversationID})
	if err != nil {
		return 0, fmt.Errorf("repo.MessageRepo.MarkRead: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanMessage(s scanner) (domain.Message, error) {
	var (
		m          domain.Message
		id, convID pgtype.UUID
		sender     string
	)
	if err := s.Scan(&id, &convID, &sender, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
		return domain.Message{}, noRows(err)
	}
	m.ID = toUUID(id)
	m.ConversationID = toUUID(convID)
	m.Sender = domain.SenderKind(sender)
	return m, nil
}
