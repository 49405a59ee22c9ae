package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Thread identifies a conversation and its two parties.
type Thread struct {
	RequestID  string
	ProviderID uint64
	UserID     uint64
}

// ChatStore persists conversation lines per contact request.
type ChatStore interface {
	Append(ctx context.Context, t Thread, m Message) error
	Read(ctx context.Context, t Thread) ([]Message, error)
}

// BlobStore is a flat key/value store of opaque blobs. Get returns nil, nil for a
// missing key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	ProviderChatsKey = "providerChats"
	UserChatsKey     = "userChats"
)

// ProviderBlobKey is the blob holding every conversation of one provider.
func ProviderBlobKey(providerID uint64) string {
	return ProviderChatsKey + ":" + strconv.FormatUint(providerID, 10)
}

// UserBlobKey is the blob holding every conversation of one customer.
func UserBlobKey(userID uint64) string {
	return UserChatsKey + ":" + strconv.FormatUint(userID, 10)
}

// LocalStore keeps each party's conversations in one blob per party and mirrors every
// message into both the provider's and the customer's blob. Writes are read-modify-write
// of a whole blob with no locking, so two sends touching the same party at the same
// moment can lose a message: the last Set wins. Unrelated parties never share a blob.
type LocalStore struct {
	blobs BlobStore
}

func NewLocalStore(blobs BlobStore) *LocalStore {
	return &LocalStore{blobs: blobs}
}

func blobKeys(t Thread) []string {
	return []string{ProviderBlobKey(t.ProviderID), UserBlobKey(t.UserID)}
}

func (s *LocalStore) Append(ctx context.Context, t Thread, m Message) error {
	for _, key := range blobKeys(t) {
		chats, err := s.load(ctx, key)
		if err != nil {
			return err
		}
		chats[t.RequestID] = append(chats[t.RequestID], m)
		raw, err := json.Marshal(chats)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := s.blobs.Set(ctx, key, raw); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}

// Read returns the lines from both parties' blobs. The mirrored copies overlap; Merge
// removes them.
func (s *LocalStore) Read(ctx context.Context, t Thread) ([]Message, error) {
	var out []Message
	for _, key := range blobKeys(t) {
		chats, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, chats[t.RequestID]...)
	}
	return out, nil
}

func (s *LocalStore) load(ctx context.Context, key string) (map[string][]Message, error) {
	raw, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	chats := map[string][]Message{}
	if len(raw) == 0 {
		return chats, nil
	}
	if err := json.Unmarshal(raw, &chats); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return chats, nil
}

// MemoryBlobStore is an in-process BlobStore.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: map[string][]byte{}}
}

func (m *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlobStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}
