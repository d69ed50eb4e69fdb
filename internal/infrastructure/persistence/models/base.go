package models

import (
	"time"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) toDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) fromDomain(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the aggregate version and creator.
// Tenant columns are declared per model so each table can index them with
// its own natural key.
type AggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m *AggregateModel) tenantRoot(tenantID uuid.UUID) shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.toDomain(),
			Version:    m.Version,
		},
		TenantID:  tenantID,
		CreatedBy: m.CreatedBy,
	}
}

func (m *AggregateModel) fromTenantRoot(t shared.TenantAggregateRoot) {
	m.BaseModel.fromDomain(t.BaseEntity)
	m.Version = t.Version
	m.CreatedBy = t.CreatedBy
}
