// Package repository holds the role-partitioned data access layer. Each
// role (admin, employee, partner) owns an independent PostgreSQL store with
// identical structure; there is no cross-partition locking or transaction.
package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/crm-backend/internal/domain"
)

// Partition bundles one role's repositories over that role's pool.
type Partition struct {
	Role          domain.Role
	Identities    IdentityRepository
	Quotations    QuotationRepository
	Taxis         TaxiRepository
	Notifications NotificationRepository
}

func NewPartition(role domain.Role, pool *pgxpool.Pool) *Partition {
	return &Partition{
		Role:          role,
		Identities:    NewIdentityRepository(pool),
		Quotations:    NewQuotationRepository(pool),
		Taxis:         NewTaxiRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}
}

type Partitions struct {
	Admin    *Partition
	Employee *Partition
	Partner  *Partition
}

func NewPartitions(admin, employee, partner *pgxpool.Pool) *Partitions {
	return &Partitions{
		Admin:    NewPartition(domain.RoleAdmin, admin),
		Employee: NewPartition(domain.RoleEmployee, employee),
		Partner:  NewPartition(domain.RolePartner, partner),
	}
}

func (p *Partitions) ByRole(role domain.Role) (*Partition, bool) {
	switch role {
	case domain.RoleAdmin:
		return p.Admin, true
	case domain.RoleEmployee:
		return p.Employee, true
	case domain.RolePartner:
		return p.Partner, true
	}
	return nil, false
}

// All returns every partition, for fan-out reads.
func (p *Partitions) All() []*Partition {
	return []*Partition{p.Admin, p.Employee, p.Partner}
}

// ProbeOrder is the fixed fallback order used when resolving a record by id
// without a known owning partition: admin first, then partner, then employee.
func (p *Partitions) ProbeOrder() []*Partition {
	return []*Partition{p.Admin, p.Partner, p.Employee}
}
