package model

import "time"

type Technician struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID  string    `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
