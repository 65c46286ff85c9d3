package gormstore

import (
	"time"

	"gorm.io/gorm"
)

// Model is what a gorm entity must expose to serve as a replica target: a
// string primary key holding the wire-form identity and a soft-delete
// discriminator. Embedding Replica provides all of it.
type Model interface {
	ReplicaID() string
	SetReplicaID(id string)
	ReplicaDeleted() bool
}

// Replica is the base model for replicated entities. The DeletedAt column
// is the idempotency discriminator for Deleted envelopes: rows are soft
// deleted, never physically removed, so a redelivery finds the marker.
type Replica struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (r *Replica) ReplicaID() string      { return r.ID }
func (r *Replica) SetReplicaID(id string) { r.ID = id }
func (r *Replica) ReplicaDeleted() bool   { return r.DeletedAt.Valid }
