package forum

import "time"

// TopicRelation is one row of the transitive closure over the topic tree:
// ParentID is an ancestor of ChildID, Depth generations up. Every topic has a
// depth-0 row pointing at itself.
type TopicRelation struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ParentID int64 `gorm:"column:parent_id;not null;uniqueIndex:idx_topic_relation_pair,priority:1;index:idx_topic_relation_parent_depth,priority:1" json:"parentId"`
	ChildID  int64 `gorm:"column:child_id;not null;uniqueIndex:idx_topic_relation_pair,priority:2;index:idx_topic_relation_child" json:"childId"`
	Depth    int   `gorm:"column:depth;not null;default:0;index:idx_topic_relation_parent_depth,priority:2" json:"depth"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Both ends must be existing topics; topics are never deleted.
	Parent *Topic `gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Child  *Topic `gorm:"foreignKey:ChildID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
}

func (TopicRelation) TableName() string { return "topic_relation" }

// IsSelf reports whether the row is a node's reflexive edge.
func (r TopicRelation) IsSelf() bool {
	return r.Depth == 0 && r.ParentID == r.ChildID
}
