package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/spa_ledger/internal/apperrors"
	"github.com/SscSPs/spa_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spa_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spa_ledger/internal/utils/mapping"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/shopspring/decimal"
)

// MemberRepository stores members in the members table keyed by card_id.
type MemberRepository struct {
	BaseRepository
}

var _ portsrepo.MemberRepositoryFacade = (*MemberRepository)(nil)

func (r *MemberRepository) key(memberID string) item {
	return item{attrCardID: stringValue(memberID)}
}

// FindMemberByID uses a consistent read so a balance just written is visible.
func (r *MemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	out, err := r.Client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.Tables.Members),
		Key:            r.key(memberID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, apperrors.StoreError(fmt.Sprintf("get member %s", memberID), err)
	}
	if len(out.Item) == 0 {
		return nil, apperrors.ErrNotFound
	}

	m, err := itemToMember(out.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode member %s: %w", memberID, err)
	}
	member := mapping.ToDomainMember(m)
	return &member, nil
}

func (r *MemberRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	members := []domain.Member{}
	err := r.scanAll(ctx, &dynamodb.ScanInput{TableName: aws.String(r.Tables.Members)}, func(out *dynamodb.ScanOutput) error {
		for _, it := range out.Items {
			m, err := itemToMember(it)
			if err != nil {
				return fmt.Errorf("failed to decode member: %w", err)
			}
			members = append(members, mapping.ToDomainMember(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CreateMemberIfAbsent is a conditional put, so two concurrent creations of the same
// card ID cannot both succeed.
func (r *MemberRepository) CreateMemberIfAbsent(ctx context.Context, member domain.Member) error {
	_, err := r.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.Tables.Members),
		Item:                memberToItem(mapping.ToModelMember(member)),
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]*string{
			"#id": aws.String(attrCardID),
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateMember, member.MemberID)
		}
		return apperrors.StoreError(fmt.Sprintf("put member %s", member.MemberID), err)
	}
	return nil
}

func (r *MemberRepository) UpdateMemberProfile(ctx context.Context, memberID string, name string, enrollmentDate time.Time) error {
	_, err := r.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.Tables.Members),
		Key:                 r.key(memberID),
		UpdateExpression:    aws.String("SET #n = :name, #d = :date"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]*string{
			"#n":  aws.String(attrName),
			"#d":  aws.String(attrTopUpDate),
			"#id": aws.String(attrCardID),
		},
		ExpressionAttributeValues: item{
			":name": stringValue(name),
			":date": dateValue(enrollmentDate),
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.StoreError(fmt.Sprintf("update member %s", memberID), err)
	}
	return nil
}

func (r *MemberRepository) DeleteMember(ctx context.Context, memberID string) error {
	_, err := r.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.Tables.Members),
		Key:       r.key(memberID),
	})
	if err != nil {
		return apperrors.StoreError(fmt.Sprintf("delete member %s", memberID), err)
	}
	return nil
}

// AddToMemberBalance uses the ADD update action, which DynamoDB applies atomically on the
// server. The existence condition stops ADD from creating a member that was just deleted.
func (r *MemberRepository) AddToMemberBalance(ctx context.Context, memberID string, delta decimal.Decimal) (decimal.Decimal, error) {
	out, err := r.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.Tables.Members),
		Key:                 r.key(memberID),
		UpdateExpression:    aws.String("ADD #b :delta"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]*string{
			"#b":  aws.String(attrBalance),
			"#id": aws.String(attrCardID),
		},
		ExpressionAttributeValues: item{":delta": numberValue(delta)},
		ReturnValues:              aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		if isConditionFailed(err) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, apperrors.StoreError(fmt.Sprintf("add to balance of member %s", memberID), err)
	}

	balance, err := decimalAttr(out.Attributes, attrBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode updated balance of member %s: %w", memberID, err)
	}
	return balance, nil
}

func (r *MemberRepository) SetMemberBalance(ctx context.Context, memberID string, balance decimal.Decimal) error {
	_, err := r.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.Tables.Members),
		Key:                 r.key(memberID),
		UpdateExpression:    aws.String("SET #b = :balance"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]*string{
			"#b":  aws.String(attrBalance),
			"#id": aws.String(attrCardID),
		},
		ExpressionAttributeValues: item{":balance": numberValue(balance)},
	})
	if err != nil {
		if isConditionFailed(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.StoreError(fmt.Sprintf("set balance of member %s", memberID), err)
	}
	return nil
}
