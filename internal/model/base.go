package model

import "time"

// BaseModel carries identity, audit and soft-delete columns shared by every entity.
type BaseModel struct {
	ID        string     `db:"id" json:"id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string    `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func NewBaseModel(id, actorID string, now time.Time) BaseModel {
	actor := ActorRef(actorID)
	return BaseModel{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
}

func (b *BaseModel) Touch(actorID string, now time.Time) {
	b.UpdatedAt = now
	b.UpdatedBy = ActorRef(actorID)
}

func (b *BaseModel) MarkDeleted(actorID string, now time.Time) {
	b.Touch(actorID, now)
	b.IsDeleted = true
	b.DeletedAt = &now
}

// ActorRef maps the anonymous actor to a NULL audit column.
func ActorRef(actorID string) *string {
	if actorID == "" || actorID == "unknown" {
		return nil
	}
	return &actorID
}
