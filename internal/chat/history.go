package chat

import (
	"slices"

	"github.com/MegaGrindStone/ollamachat/internal/models"
)

// historyStore is an append-only ordered sequence of conversation messages,
// cleared only explicitly. It carries no locking of its own; the owning Context
// guards every access with its single mutex.
type historyStore struct {
	msgs []models.Message
}

func (h *historyStore) append(msg models.Message) {
	h.msgs = append(h.msgs, msg)
}

func (h *historyStore) clear() {
	h.msgs = nil
}

func (h *historyStore) count() int {
	return len(h.msgs)
}

func (h *historyStore) at(i int) (models.Message, bool) {
	if i < 0 || i >= len(h.msgs) {
		return models.Message{}, false
	}
	return h.msgs[i], true
}

// snapshot returns a copy safe to read outside the lock.
func (h *historyStore) snapshot() []models.Message {
	return slices.Clone(h.msgs)
}
