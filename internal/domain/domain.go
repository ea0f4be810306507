package domain

import (
	"github.com/yungbote/forum-backend/internal/domain/forum"
)

type Topic = forum.Topic
type TopicRelation = forum.TopicRelation

// Models lists every persisted type, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Topic{},
		&TopicRelation{},
	}
}
