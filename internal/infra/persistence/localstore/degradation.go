package localstore

import "dispatch/internal/domain/entity"

// Degradation tier parameters. When the serialized document no longer fits,
// each tier sheds progressively more history: first completed requests and
// old chat messages, then everything except registered identities.
const (
	keepCompletedRequests = 10
	keepMessagesPerChat   = 5
)

type shedTier struct {
	name  string
	apply func(snap *entity.Snapshot)
}

// ladder is tried in order on every capacity failure. The first entry is the
// unmodified document; a nil apply marks it.
var ladder = []shedTier{
	{name: "full"},
	{
		name: "shed-history",
		apply: func(snap *entity.Snapshot) {
			snap.ShedHistory(keepCompletedRequests, keepMessagesPerChat)
		},
	},
	{
		name: "identities-only",
		apply: func(snap *entity.Snapshot) {
			snap.ShedAllButIdentities()
		},
	},
}
