package mapping

import (
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	"github.com/SscSPs/spa_ledger/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:       d.MemberID,
		Name:           d.Name,
		EnrollmentDate: d.EnrollmentDate,
		Balance:        d.Balance,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:       m.MemberID,
		Name:           m.Name,
		EnrollmentDate: domain.TruncateDate(m.EnrollmentDate),
		Balance:        m.Balance,
		CreatedAt:      m.CreatedAt,
	}
}
